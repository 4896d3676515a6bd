// ABOUTME: In-memory score ledger keyed by display name, surviving reconnects
// ABOUTME: Records terminal results and serves ranked leaderboard views

package ledger

import (
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/cyberdreadx/the-crucible/internal/game"
)

// Participant identifies one side of a finished match. Scores accrue to
// the display name so a reconnecting player under a fresh connection ID
// keeps their record.
type Participant struct {
	ID   string
	Name string
}

// Entry is one player's cumulative record.
type Entry struct {
	Name   string `json:"name"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Games  int    `json:"games"`
}

// WinRate returns the win percentage rounded to one decimal place.
// A player with no games has a rate of zero.
func (e Entry) WinRate() float64 {
	if e.Games == 0 {
		return 0
	}
	return math.Round(float64(e.Wins)/float64(e.Games)*1000) / 10
}

// Ledger accumulates match outcomes. Safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*Entry // display name -> record
	order   []string          // names in first-seen order, for stable ranking
	logger  *slog.Logger
}

// New creates an empty ledger. Pass nil logger for default.
func New(logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		entries: make(map[string]*Entry),
		logger:  logger.With("component", "ledger"),
	}
}

// Record applies one terminal result to both participants. A draw bumps
// the game count on each side without a win or loss.
func (l *Ledger) Record(res *game.Result, p1, p2 Participant) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e1 := l.entryLocked(p1.Name)
	e2 := l.entryLocked(p2.Name)
	e1.Games++
	e2.Games++

	if res.IsDraw {
		l.logger.Debug("draw recorded", "p1", p1.Name, "p2", p2.Name)
		return
	}

	winner, loser := e1, e2
	if res.WinnerID == p2.ID {
		winner, loser = e2, e1
	}
	winner.Wins++
	loser.Losses++

	l.logger.Debug("result recorded",
		"winner", winner.Name,
		"loser", loser.Name)
}

// Lookup returns the record for a display name. The zero Entry is
// returned for names the ledger has never seen.
func (l *Ledger) Lookup(name string) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[name]; ok {
		return *e
	}
	return Entry{Name: name}
}

// TopN returns the best n entries, ranked by wins then win rate. Ties
// keep first-seen order: the sort is stable over the order players
// entered the ledger, so repeated calls agree.
func (l *Ledger) TopN(n int) []Entry {
	l.mu.Lock()
	all := make([]Entry, 0, len(l.entries))
	for _, name := range l.order {
		all = append(all, *l.entries[name])
	}
	l.mu.Unlock()

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Wins != all[j].Wins {
			return all[i].Wins > all[j].Wins
		}
		return all[i].WinRate() > all[j].WinRate()
	})

	if n > 0 && n < len(all) {
		all = all[:n]
	}
	return all
}

// Size returns the number of distinct players with records.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Ledger) entryLocked(name string) *Entry {
	e, ok := l.entries[name]
	if !ok {
		e = &Entry{Name: name}
		l.entries[name] = e
		l.order = append(l.order, name)
	}
	return e
}
