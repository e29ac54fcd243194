package cli

import (
	"io"
	"time"

	"github.com/nebulaai/nebula/internal/output"
	"github.com/nebulaai/nebula/internal/session"
)

// renderSession writes a session snapshot in the active output format.
func renderSession(w io.Writer, format output.Format, s session.Session) error {
	if format == output.FormatJSON {
		return writeJSON(w, s)
	}
	renderSessionText(w, s)
	return nil
}

func renderSessionText(w io.Writer, s session.Session) {
	out(w, "Status:   %s\n", s.Status)

	if s.Account != "" {
		out(w, "Account:  %s\n", s.Account)
	}
	if s.ChainID != "" {
		out(w, "Network:  %s (%s)\n", s.Network.Name, s.ChainID)
	}
	if s.Balance != "" {
		if s.BalanceAge > 0 {
			out(w, "Balance:  %s %s (cached %s ago)\n",
				s.Balance, s.Network.CurrencySymbol, s.BalanceAge.Round(time.Second))
		} else {
			out(w, "Balance:  %s %s\n", s.Balance, s.Network.CurrencySymbol)
		}
	}
	if s.PendingTxHash != "" {
		out(w, "Pending:  %s\n", s.PendingTxHash)
	}
	if s.LastError != "" {
		out(w, "Warning:  %s\n", s.LastError)
	}
}
