package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/transpolabs/transpo/internal/gps"
	ratedomain "github.com/transpolabs/transpo/internal/ratecard/domain"
)

type Status string

const (
	// StatusRunning is the initial state; there is no idle meter, a
	// session exists only once started.
	StatusRunning Status = "running"
	StatusStopped Status = "stopped"
	// StatusCompleted is terminal, entered only by Complete.
	StatusCompleted Status = "completed"
)

// Session is the per-trip meter state machine. It owns its accumulators and
// its last fix exclusively; a single writer applies fixes in timestamp order
// while concurrent readers may take breakdowns without blocking each other.
// Sessions never share state with one another.
type Session struct {
	mu sync.RWMutex

	id       uuid.UUID
	driverID string
	rates    ratedomain.RateTable

	status    Status
	startedAt time.Time
	stoppedAt time.Time
	lastFix   gps.Fix

	totalDistanceKm     float64
	totalWaitingMinutes float64

	staleDropped int

	frozen ratedomain.FareBreakdown
}

// StartSession creates a Running session with the tariff locked for the
// trip's entire duration. The initial fix seeds the interval chain.
func StartSession(id uuid.UUID, driverID string, rates ratedomain.RateTable, initial gps.Fix, startedAt time.Time) (*Session, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if initial.Timestamp.IsZero() {
		initial.Timestamp = startedAt
	}
	return &Session{
		id:        id,
		driverID:  driverID,
		rates:     rates,
		status:    StatusRunning,
		startedAt: startedAt,
		lastFix:   initial,
	}, nil
}

// Update routes a new fix through interval classification and advances the
// accumulators. Returns the resulting breakdown and how the interval was
// charged. A stale interval (non-positive elapsed) returns
// gps.ErrStaleInterval with the breakdown unchanged; malformed fixes return
// gps.ErrMalformedFix without touching any accumulator.
func (s *Session) Update(fix gps.Fix) (ratedomain.FareBreakdown, gps.Classification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning {
		return s.frozen, "", ErrInvalidState
	}

	iv, class, err := gps.Classify(s.lastFix, fix, s.rates.SpeedThresholdKmh)
	if err == gps.ErrStaleInterval {
		s.staleDropped++
		return s.breakdownLocked(s.lastFix.Timestamp), "", err
	}
	if err != nil {
		return s.breakdownLocked(s.lastFix.Timestamp), "", err
	}

	switch class {
	case gps.Stationary:
		s.totalWaitingMinutes += iv.ElapsedSeconds / 60
	case gps.Moving:
		s.totalDistanceKm += iv.DistanceMeters / 1000
	case gps.WaitingWhileMoving:
		s.totalDistanceKm += iv.DistanceMeters / 1000
		s.totalWaitingMinutes += iv.ElapsedSeconds / 60
	}

	s.lastFix = fix
	return s.breakdownLocked(fix.Timestamp), class, nil
}

// Stop closes the open interval since the last fix as Stationary: the dead
// time bills as waiting, never as phantom movement. Freezes the breakdown.
func (s *Session) Stop(now time.Time) (ratedomain.FareBreakdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning {
		return s.frozen, ErrInvalidState
	}

	if dead := now.Sub(s.lastFix.Timestamp).Seconds(); dead > 0 {
		s.totalWaitingMinutes += dead / 60
	}

	s.status = StatusStopped
	s.stoppedAt = now
	s.frozen = ratedomain.NewBreakdown(s.rates, s.totalDistanceKm, s.totalWaitingMinutes)
	return s.frozen, nil
}

// Breakdown is a pure read, callable in any state. While Running it projects
// the waiting charge forward to now so the fare ticks between GPS pings;
// nothing is mutated. Once stopped the frozen values are returned.
func (s *Session) Breakdown(now time.Time) ratedomain.FareBreakdown {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status != StatusRunning {
		return s.frozen
	}
	return s.breakdownLocked(now)
}

func (s *Session) breakdownLocked(now time.Time) ratedomain.FareBreakdown {
	waiting := s.totalWaitingMinutes
	if s.status == StatusRunning {
		if dead := now.Sub(s.lastFix.Timestamp).Seconds(); dead > 0 {
			waiting += dead / 60
		}
	}
	return ratedomain.NewBreakdown(s.rates, s.totalDistanceKm, waiting)
}

// Finalize builds the receipt for a stopped session from its frozen
// breakdown. It is a pure read: the session stays Stopped until Complete is
// called, so a caller whose persistence step fails can finalize again.
func (s *Session) Finalize(tipPercent, customTip, commissionRate float64) (Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.status {
	case StatusCompleted:
		return Receipt{}, ErrAlreadyFinalized
	case StatusStopped:
	default:
		return Receipt{}, ErrInvalidState
	}
	if tipPercent < 0 || customTip < 0 {
		return Receipt{}, ErrInvalidTip
	}

	return buildReceipt(s.frozen, tipPercent, customTip, commissionRate), nil
}

// Complete moves a stopped session to its terminal state, once the receipt
// has been durably recorded. Reprocessing a completed trip must be an
// explicit new operation, never a silent recompute.
func (s *Session) Complete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusStopped {
		return ErrInvalidState
	}
	s.status = StatusCompleted
	return nil
}

func (s *Session) ID() uuid.UUID        { return s.id }
func (s *Session) DriverID() string     { return s.driverID }
func (s *Session) StartedAt() time.Time { return s.startedAt }

func (s *Session) Rates() ratedomain.RateTable { return s.rates }

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// LastFix exposes the newest applied fix so an external reaper can detect
// staleness. The returned value is a copy.
func (s *Session) LastFix() gps.Fix {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastFix
}

// StaleDropped reports how many out-of-order or duplicate fixes were
// discarded over the session's lifetime.
func (s *Session) StaleDropped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleDropped
}

// Totals returns the raw, unrounded accumulators.
func (s *Session) Totals() (distanceKm, waitingMinutes float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalDistanceKm, s.totalWaitingMinutes
}
