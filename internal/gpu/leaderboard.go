package gpu

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nebulaai/nebula/internal/config"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

// LeaderboardEntry is one provider row on the lender leaderboard.
// Addresses are stored in the shortened display form.
type LeaderboardEntry struct {
	Rank            int     `json:"rank"`
	Address         string  `json:"address"`
	GPUs            int     `json:"gpus"`
	EarningsCredits float64 `json:"earnings_credits"`
	Location        string  `json:"location"`
}

// ShortenAddress renders an address in the 0x1234...abcd display form used
// on the leaderboard.
func ShortenAddress(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// seedEntries is the launch-network leaderboard.
func seedEntries() []LeaderboardEntry {
	return []LeaderboardEntry{
		{Rank: 1, Address: "0x8a42...7e9b", GPUs: 32, EarningsCredits: 4521.8, Location: "Frankfurt, DE"},
		{Rank: 2, Address: "0xf9d5...2c4a", GPUs: 28, EarningsCredits: 3892.5, Location: "Singapore, SG"},
		{Rank: 3, Address: "0x3e1c...9d85", GPUs: 24, EarningsCredits: 3547.6, Location: "Virginia, US"},
		{Rank: 4, Address: "0xb68f...12d3", GPUs: 18, EarningsCredits: 2835.2, Location: "Tokyo, JP"},
		{Rank: 5, Address: "0x7f42...6a0e", GPUs: 14, EarningsCredits: 2103.7, Location: "London, UK"},
	}
}

// Leaderboard ranks lending providers by fleet size.
type Leaderboard struct {
	mu      sync.Mutex
	entries []LeaderboardEntry
}

// NewLeaderboard creates a leaderboard seeded with the launch providers.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{entries: seedEntries()}
}

// Top returns up to n entries in rank order.
func (l *Leaderboard) Top(n int) []LeaderboardEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n > len(l.entries) {
		n = len(l.entries)
	}
	return append([]LeaderboardEntry(nil), l.entries[:n]...)
}

// RankOf returns the rank of an address, matching either the full or the
// shortened form.
func (l *Leaderboard) RankOf(address string) (int, bool) {
	short := strings.ToLower(ShortenAddress(address))

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if strings.ToLower(e.Address) == short {
			return e.Rank, true
		}
	}
	return 0, false
}

// add inserts or grows an address's entry and re-ranks by GPU count.
func (l *Leaderboard) add(address, location string, quantity int) int {
	short := ShortenAddress(address)

	l.mu.Lock()
	defer l.mu.Unlock()

	found := false
	for i := range l.entries {
		if strings.EqualFold(l.entries[i].Address, short) {
			l.entries[i].GPUs += quantity
			found = true
			break
		}
	}
	if !found {
		l.entries = append(l.entries, LeaderboardEntry{
			Address:  short,
			GPUs:     quantity,
			Location: location,
		})
	}

	// Stable sort keeps earlier providers ahead on ties.
	sort.SliceStable(l.entries, func(i, j int) bool {
		return l.entries[i].GPUs > l.entries[j].GPUs
	})
	rank := 0
	for i := range l.entries {
		l.entries[i].Rank = i + 1
		if strings.EqualFold(l.entries[i].Address, short) {
			rank = i + 1
		}
	}
	return rank
}

// LendingService registers lender hardware on the network and maintains
// the leaderboard. Registration completes asynchronously, mirroring the
// settlement delay of an on-chain registration.
type LendingService struct {
	board  *Leaderboard
	delay  time.Duration
	logger *config.Logger
}

// LendingOptions configures a LendingService. Zero values select defaults.
type LendingOptions struct {
	// Delay is how long registration settlement takes.
	Delay time.Duration

	Logger *config.Logger
}

// DefaultRegistrationDelay mirrors the settlement simulation of the
// marketplace checkout.
const DefaultRegistrationDelay = 2 * time.Second

// NewLendingService creates a lending service with a seeded leaderboard.
func NewLendingService(opts LendingOptions) *LendingService {
	if opts.Delay <= 0 {
		opts.Delay = DefaultRegistrationDelay
	}
	if opts.Logger == nil {
		opts.Logger = config.NullLogger()
	}
	return &LendingService{
		board:  NewLeaderboard(),
		delay:  opts.Delay,
		logger: opts.Logger,
	}
}

// Board exposes the leaderboard.
func (s *LendingService) Board() *Leaderboard {
	return s.board
}

// RegisterRequest describes the hardware a lender is adding.
type RegisterRequest struct {
	Address    string
	ModelID    string
	Quantity   int
	Location   string
	DailyHours int
}

// Registration is an in-flight lender registration. Wait blocks until
// settlement and returns the resulting leaderboard rank.
type Registration struct {
	Model    LendModel
	Quantity int
	Location string
	Estimate *EarningsEstimate

	done chan struct{}
	rank int
}

// Wait blocks until the registration settles or ctx expires.
func (r *Registration) Wait(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-r.done:
		return r.rank, nil
	}
}

// Register validates the request and starts its settlement. The returned
// Registration settles after the service delay, updating the leaderboard
// deterministically.
func (s *LendingService) Register(req RegisterRequest) (*Registration, error) {
	if req.Address == "" {
		return nil, nebulaerr.Wrap(nebulaerr.ErrNotConnected, "registration requires a connected wallet")
	}

	model, err := LendModelByID(req.ModelID)
	if err != nil {
		return nil, err
	}
	location, ok := ValidLocation(req.Location)
	if !ok {
		return nil, nebulaerr.WithSuggestion(
			nebulaerr.Wrap(nebulaerr.ErrInvalidInput, "unknown location %q", req.Location),
			"Choose one of: "+strings.Join(Locations, ", "),
		)
	}

	dailyHours := req.DailyHours
	if dailyHours == 0 {
		dailyHours = 24
	}
	estimate, err := EstimateEarnings(req.ModelID, req.Quantity, dailyHours)
	if err != nil {
		return nil, err
	}

	reg := &Registration{
		Model:    model,
		Quantity: req.Quantity,
		Location: location,
		Estimate: estimate,
		done:     make(chan struct{}),
	}

	go func() {
		time.Sleep(s.delay)
		reg.rank = s.board.add(req.Address, location, req.Quantity)
		s.logger.Debug("lending: %s registered %d x %s, rank %d",
			ShortenAddress(req.Address), req.Quantity, model.ID, reg.rank)
		close(reg.done)
	}()

	return reg, nil
}
