// ABOUTME: Battle-royale narrative simulator: tributes, phases, a combat ticker
// ABOUTME: Pure flavor layer; consumes damage from real matches, emits spectacle

package royale

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cyberdreadx/the-crucible/internal/hub"
)

// ErrAlreadyRunning is returned when Start is called on a live simulation.
var ErrAlreadyRunning = errors.New("a royale is already running")

// ErrNotEnoughTributes is returned when Start is given fewer than two names.
var ErrNotEnoughTributes = errors.New("a royale needs at least two tributes")

// Status is a tribute's life state.
type Status string

const (
	StatusAlive      Status = "alive"
	StatusEliminated Status = "eliminated"
)

// Phase is where the narrative currently stands. Phases only advance.
type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseBloodbath Phase = "bloodbath"
	PhaseHunt      Phase = "hunt"
	PhaseEvent     Phase = "event"
	PhaseShowdown  Phase = "showdown"
	PhaseComplete  Phase = "complete"
)

var phaseOrder = []Phase{PhaseBloodbath, PhaseHunt, PhaseEvent, PhaseShowdown}

// Tribute is one participant in the narrative.
type Tribute struct {
	Name   string `json:"name"`
	HP     int    `json:"hp"`
	Kills  int    `json:"kills"`
	Status Status `json:"status"`
}

const (
	maxHP        = 100
	tickInterval = 2 * time.Second
)

// Simulator drives one royale at a time. The ticker runs as a cancellable
// background task; every observable change goes to the hub.
type Simulator struct {
	mu       sync.Mutex
	tributes []*Tribute
	phase    Phase
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}

	hub      *hub.Hub
	logger   *slog.Logger
	interval time.Duration
}

// New creates an idle simulator. Pass nil logger for default.
func New(h *hub.Hub, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		phase:    PhaseLobby,
		hub:      h,
		logger:   logger.With("component", "royale"),
		interval: tickInterval,
	}
}

// Start seeds the tributes and launches the combat ticker.
func (s *Simulator) Start(names []string) error {
	if len(names) < 2 {
		return ErrNotEnoughTributes
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.tributes = make([]*Tribute, 0, len(names))
	for _, name := range names {
		s.tributes = append(s.tributes, &Tribute{Name: name, HP: maxHP, Status: StatusAlive})
	}
	s.phase = PhaseBloodbath
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.publish("phase_change", map[string]any{"phase": string(PhaseBloodbath), "tributes": len(names)})
	s.logger.Info("royale started", "tributes", len(names))

	go s.run(ctx)
	return nil
}

// Stop cancels the ticker and waits for it to exit.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("royale stopped")
}

// Active reports whether a royale is in progress.
func (s *Simulator) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot returns the spectator view of the current royale.
func (s *Simulator) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	tributes := make([]Tribute, 0, len(s.tributes))
	alive := 0
	for _, tr := range s.tributes {
		tributes = append(tributes, *tr)
		if tr.Status == StatusAlive {
			alive++
		}
	}
	return map[string]any{
		"phase":    string(s.phase),
		"running":  s.running,
		"alive":    alive,
		"tributes": tributes,
	}
}

// ApplyDamageByName routes real match damage into the narrative. Unknown
// and eliminated names are ignored; lethal damage eliminates.
func (s *Simulator) ApplyDamageByName(name string, amount int) {
	if amount <= 0 {
		return
	}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	tr := s.tributeLocked(name)
	if tr == nil || tr.Status != StatusAlive {
		s.mu.Unlock()
		return
	}
	tr.HP -= amount
	eliminated := tr.HP <= 0
	if eliminated {
		tr.HP = 0
		tr.Status = StatusEliminated
	}
	hp := tr.HP
	s.mu.Unlock()

	s.publish("combat", map[string]any{
		"target": name,
		"damage": amount,
		"hp":     hp,
		"source": "arena",
	})
	if eliminated {
		s.publish("elimination", map[string]any{"name": name})
		s.checkVictory()
	}
}

// run is the combat ticker. Each iteration is one narrative beat.
func (s *Simulator) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C:
			if !s.tick() {
				s.mu.Lock()
				s.running = false
				s.cancel() // release the context on natural completion
				s.mu.Unlock()
				return
			}
		}
	}
}

// tick performs one random narrative action. Returns false once the
// royale is over. Weights: attack 80%, heal 15%, phase advance 5%.
func (s *Simulator) tick() bool {
	roll := rand.IntN(100)
	switch {
	case roll < 80:
		s.randomAttack()
	case roll < 95:
		s.randomHeal()
	default:
		s.advancePhase()
	}
	return !s.checkVictory()
}

func (s *Simulator) randomAttack() {
	s.mu.Lock()
	alive := s.aliveLocked()
	if len(alive) < 2 {
		s.mu.Unlock()
		return
	}
	attacker := alive[rand.IntN(len(alive))]
	target := attacker
	for target == attacker {
		target = alive[rand.IntN(len(alive))]
	}
	damage := 8 + rand.IntN(18)
	target.HP -= damage
	eliminated := target.HP <= 0
	if eliminated {
		target.HP = 0
		target.Status = StatusEliminated
		attacker.Kills++
	}
	// Snapshot everything published before releasing the lock; the ticker
	// and ApplyDamageByName mutate tributes concurrently.
	attackerName, targetName, hp := attacker.Name, target.Name, target.HP
	s.mu.Unlock()

	s.publish("combat", map[string]any{
		"attacker": attackerName,
		"target":   targetName,
		"damage":   damage,
		"hp":       hp,
		"source":   "royale",
	})
	if eliminated {
		s.publish("elimination", map[string]any{
			"name":   targetName,
			"killer": attackerName,
		})
	}
}

func (s *Simulator) randomHeal() {
	s.mu.Lock()
	alive := s.aliveLocked()
	if len(alive) == 0 {
		s.mu.Unlock()
		return
	}
	tr := alive[rand.IntN(len(alive))]
	amount := 5 + rand.IntN(11)
	tr.HP += amount
	if tr.HP > maxHP {
		tr.HP = maxHP
	}
	name, hp := tr.Name, tr.HP
	s.mu.Unlock()

	s.publish("heal", map[string]any{"name": name, "amount": amount, "hp": hp})
}

func (s *Simulator) advancePhase() {
	s.mu.Lock()
	next := s.phase
	for i, p := range phaseOrder {
		if p == s.phase && i+1 < len(phaseOrder) {
			next = phaseOrder[i+1]
			break
		}
	}
	changed := next != s.phase
	s.phase = next
	s.mu.Unlock()

	if changed {
		s.publish("phase_change", map[string]any{"phase": string(next)})
	}
}

// checkVictory ends the royale when at most one tribute stands. The
// victory event is published exactly once; later calls just report the
// finished state.
func (s *Simulator) checkVictory() bool {
	s.mu.Lock()
	if s.phase == PhaseComplete {
		s.mu.Unlock()
		return true
	}
	alive := s.aliveLocked()
	if len(alive) > 1 || len(s.tributes) == 0 {
		s.mu.Unlock()
		return false
	}
	s.phase = PhaseComplete
	var winner string
	if len(alive) == 1 {
		winner = alive[0].Name
	}
	s.mu.Unlock()

	s.publish("victory", map[string]any{"winner": winner})
	s.logger.Info("royale complete", "winner", winner)
	return true
}

func (s *Simulator) aliveLocked() []*Tribute {
	out := make([]*Tribute, 0, len(s.tributes))
	for _, tr := range s.tributes {
		if tr.Status == StatusAlive {
			out = append(out, tr)
		}
	}
	return out
}

func (s *Simulator) tributeLocked(name string) *Tribute {
	for _, tr := range s.tributes {
		if tr.Name == name {
			return tr
		}
	}
	return nil
}

func (s *Simulator) publish(eventType string, data map[string]any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(hub.Event{Type: eventType, Data: data})
}
