package controller

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domain "github.com/oshokin/auv-alarm/internal/domain/alarm"
	"github.com/oshokin/auv-alarm/internal/logger"
	"github.com/oshokin/auv-alarm/internal/packet"
	repo "github.com/oshokin/auv-alarm/internal/repository/cases"
)

// Disposition codes sent back to the vehicle.
const (
	codeWatch     = 0
	codeConfirmed = 1
	codeResolved  = domain.ResolvedWithVerdict
)

// Policy decides how long cases stay open.
type Policy struct {
	// WatchReports is how many gray-zone reports are answered with "keep
	// watching" before the case is resolved.
	WatchReports int
	// InspectionTime is how long a confirmed case is held before resolution.
	InspectionTime time.Duration
	// ResolvedHold is how long a resolved anchor answers late reports with
	// the resolution code instead of opening a new case. Zero disables it.
	ResolvedHold time.Duration
}

// Clock returns the controller's notion of the current time.
type Clock func() time.Time

// Service is the controller business logic.
type Service struct {
	// repo persists the ledger after every change, may be nil.
	repo repo.Repository
	// policy controls case lifetimes.
	policy Policy
	// clock stamps case events.
	clock Clock
	// ledger holds open cases keyed by anchor bits.
	ledger map[uint64]*domain.Case
	// resolved maps recently resolved anchors to their resolution time.
	// It is not persisted.
	resolved map[uint64]time.Time
	// mu protects the ledger.
	mu sync.Mutex
}

// NewService creates a controller backed by the provided repository and
// restores any persisted cases.
func NewService(ctx context.Context, repository repo.Repository, policy Policy, clock Clock) (*Service, error) {
	if clock == nil {
		clock = time.Now
	}

	s := &Service{
		repo:     repository,
		policy:   policy,
		clock:    clock,
		ledger:   make(map[uint64]*domain.Case),
		resolved: make(map[uint64]time.Time),
	}

	if repository == nil {
		return s, nil
	}

	ledger, err := repository.Load(ctx)
	switch {
	case err == nil:
		for _, c := range ledger {
			s.ledger[c.Anchor.Key()] = c
		}

		logger.InfoKV(ctx, "Case ledger restored", "open_cases", len(s.ledger))
	case errors.Is(err, repo.ErrNotFound):
		// Start with an empty ledger.
	default:
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	return s, nil
}

// Report handles one status packet. The reply has no acknowledgment when the
// packet reports nothing and no case exists for its anchor.
func (s *Service) Report(ctx context.Context, status *packet.Packet) (*packet.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		now    = s.clock()
		anchor = status.Position()
		key    = anchor.Key()
	)

	s.expireResolved(now)

	c, exists := s.ledger[key]
	if !exists {
		// NaN and non-positive magnitudes open nothing.
		if !(status.Error > 0) {
			return &packet.Reply{}, nil
		}

		// A report sent before the resolution reached the vehicle.
		if resolvedAt, held := s.resolved[key]; held {
			logger.DebugKV(ctx, "Late report for resolved anchor",
				"sequence", status.Sequence,
				"x", anchor.X,
				"y", anchor.Y,
				"resolved_ago", now.Sub(resolvedAt))

			return &packet.Reply{Ack: ack(status, codeResolved)}, nil
		}

		c = domain.NewCase(anchor, now)
		s.ledger[key] = c

		logger.InfoKV(ctx, "Case opened",
			"case_id", c.ID,
			"x", anchor.X,
			"y", anchor.Y,
			"magnitude", status.Error)
	}

	c.Reports++
	if status.Error > 0 {
		c.Magnitude = status.Error
	}

	code := s.decide(now, c, status.Error)
	if code == codeResolved {
		delete(s.ledger, key)

		if s.policy.ResolvedHold > 0 {
			s.resolved[key] = now
		}

		logger.InfoKV(ctx, "Case resolved",
			"case_id", c.ID,
			"reports", c.Reports,
			"open_for", now.Sub(c.OpenedAt))
	}

	if err := s.persist(ctx); err != nil {
		return nil, err
	}

	return &packet.Reply{Ack: ack(status, code)}, nil
}

// ack echoes the status sequence, anchor and send time with a disposition code.
func ack(status *packet.Packet, code float64) *packet.Packet {
	return &packet.Packet{
		Sequence: status.Sequence,
		X:        status.X,
		Y:        status.Y,
		Error:    code,
		SentAt:   status.SentAt,
	}
}

// expireResolved forgets anchors resolved longer than the hold ago.
func (s *Service) expireResolved(now time.Time) {
	for key, resolvedAt := range s.resolved {
		if now.Sub(resolvedAt) >= s.policy.ResolvedHold {
			delete(s.resolved, key)
		}
	}
}

// decide returns the disposition code for the case after a report.
func (s *Service) decide(now time.Time, c *domain.Case, magnitude float64) float64 {
	switch {
	case c.Confirmed():
		if now.Sub(c.ConfirmedAt) >= s.policy.InspectionTime {
			return codeResolved
		}

		return codeConfirmed
	case magnitude >= 1:
		c.ConfirmedAt = now

		return codeConfirmed
	case c.Reports > s.policy.WatchReports:
		return codeResolved
	default:
		return codeWatch
	}
}

// Cases returns copies of the open cases.
func (s *Service) Cases() []*domain.Case {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot()
}

func (s *Service) snapshot() []*domain.Case {
	ledger := make([]*domain.Case, 0, len(s.ledger))
	for _, c := range s.ledger {
		ledger = append(ledger, c.Clone())
	}

	slices.SortFunc(ledger, func(a, b *domain.Case) int {
		return a.OpenedAt.Compare(b.OpenedAt)
	})

	return ledger
}

func (s *Service) persist(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, s.snapshot()); err != nil {
		logger.Errorf(ctx, "Failed to persist case ledger: %v", err)

		return fmt.Errorf("persist ledger: %w", err)
	}

	return nil
}
