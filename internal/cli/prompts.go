package cli

import (
	"fmt"
	"os"
	"strings"
)

// promptConfirmFn is swapped in tests to avoid interactive prompts.
//
//nolint:gochecknoglobals // Test seam for interactive confirmation
var promptConfirmFn = promptConfirmation

// promptConfirmation asks the user to approve a payment before it is sent
// to the wallet.
func promptConfirmation() bool {
	out(os.Stderr, "\nProceed with this transaction? [y/N]: ")

	var response string
	_, err := fmt.Scanln(&response)
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
