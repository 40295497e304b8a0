package scheduler

import (
	"context"
	"time"

	"claim_contact_backend/internal/claims/transport"
	"claim_contact_backend/platform/logger"
)

const (
	defaultPendingSweepInterval = 15 * time.Minute
	defaultPendingSweepLimit    = 500
)

// PendingQueuer hands pending claims to the job queue.
type PendingQueuer interface {
	EnqueuePending(ctx context.Context, limit int) (transport.ExtractPendingResponse, error)
}

// PendingSweep periodically queues claims that are still pending, so claims
// imported without an explicit extraction request are picked up.
type PendingSweep struct {
	claims   PendingQueuer
	log      *logger.Logger
	interval time.Duration
	limit    int
}

func NewPendingSweep(claims PendingQueuer, log *logger.Logger, interval time.Duration, limit int) *PendingSweep {
	if interval <= 0 {
		interval = defaultPendingSweepInterval
	}
	if limit <= 0 {
		limit = defaultPendingSweepLimit
	}

	return &PendingSweep{
		claims:   claims,
		log:      log,
		interval: interval,
		limit:    limit,
	}
}

func (s *PendingSweep) Run(ctx context.Context) {
	if s == nil || s.claims == nil {
		return
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *PendingSweep) sweep(ctx context.Context) {
	result, err := s.claims.EnqueuePending(ctx, s.limit)
	if err != nil {
		s.log.Warn("pending claim sweep failed", "error", err)
		return
	}

	if result.Enqueued > 0 {
		s.log.Info("pending claim sweep queued claims", "enqueued", result.Enqueued)
	}
}
