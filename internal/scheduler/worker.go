package scheduler

import (
	"context"
	"fmt"

	"claim_contact_backend/internal/claims/transport"
	"claim_contact_backend/platform/apperr"
	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ClaimExtractor runs extraction for one stored claim.
type ClaimExtractor interface {
	ExtractClaim(ctx context.Context, id uuid.UUID) (transport.ClaimResponse, error)
	CanFetchText() bool
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	claims ClaimExtractor
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, claims ClaimExtractor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(claims, log)
	w.server = server
	return w, nil
}

func newWorker(claims ClaimExtractor, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:    mux,
		claims: claims,
		log:    log,
	}
	mux.HandleFunc(TaskExtractClaimPhone, w.handleExtractClaimPhone)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleExtractClaimPhone returns an error for error outcomes so the task is
// retried; a claim that no longer exists is dropped. A claim without text
// and no source to fetch it from is not retried.
func (w *Worker) handleExtractClaimPhone(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseExtractClaimPhonePayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	claimID, err := uuid.Parse(payload.ClaimID)
	if err != nil {
		return fmt.Errorf("invalid claim id %q: %w", payload.ClaimID, asynq.SkipRetry)
	}

	result, err := w.claims.ExtractClaim(ctx, claimID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			w.log.Warn("claim vanished before extraction", "claim_id", claimID.String())
			return nil
		}
		return err
	}

	if result.Status == "error" {
		msg := ""
		if result.LastError != nil {
			msg = *result.LastError
		}
		if !result.HasText && !w.claims.CanFetchText() {
			return fmt.Errorf("claim %s: %s: %w", result.ClaimNumber, msg, asynq.SkipRetry)
		}
		return fmt.Errorf("claim %s: %s", result.ClaimNumber, msg)
	}
	return nil
}
