package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"claim_contact_backend/internal/claims/repository"
	"claim_contact_backend/internal/claims/transport"
	"claim_contact_backend/platform/apperr"
)

const exportPageSize = 500

// ExtractPending extracts up to limit pending claims concurrently.
func (s *Service) ExtractPending(ctx context.Context, limit int) (transport.ExtractPendingResponse, error) {
	pending, err := s.repo.ListPending(ctx, clampLimit(limit))
	if err != nil {
		return transport.ExtractPendingResponse{}, err
	}

	var (
		mu   sync.Mutex
		resp transport.ExtractPendingResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, claim := range pending {
		g.Go(func() error {
			saved, err := s.extractClaim(gctx, claim)
			if err != nil {
				return fmt.Errorf("claim %s: %w", claim.ClaimNumber, err)
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Processed++
			switch saved.Status {
			case repository.StatusOK:
				resp.OK++
			case repository.StatusNotFound:
				resp.NotFound++
			default:
				resp.Errors++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return resp, err
	}

	s.log.Info("pending claims extracted",
		"processed", resp.Processed, "ok", resp.OK, "notFound", resp.NotFound, "errors", resp.Errors)
	return resp, nil
}

// EnqueuePending hands up to limit pending claims to the job queue.
func (s *Service) EnqueuePending(ctx context.Context, limit int) (transport.ExtractPendingResponse, error) {
	if s.queue == nil {
		return transport.ExtractPendingResponse{}, apperr.Unavailable("job queue not configured")
	}

	pending, err := s.repo.ListPending(ctx, clampLimit(limit))
	if err != nil {
		return transport.ExtractPendingResponse{}, err
	}

	var resp transport.ExtractPendingResponse
	for _, claim := range pending {
		if err := s.queue.EnqueueClaimExtraction(ctx, claim.ID); err != nil {
			return resp, fmt.Errorf("enqueue claim %s: %w", claim.ClaimNumber, err)
		}
		resp.Enqueued++
	}

	s.log.Info("pending claims enqueued", "enqueued", resp.Enqueued)
	return resp, nil
}

// ExportJSONL writes every claim matching status as one JSON object per line.
func (s *Service) ExportJSONL(ctx context.Context, w io.Writer, status repository.Status) (int, error) {
	enc := json.NewEncoder(w)
	written := 0

	for offset := 0; ; offset += exportPageSize {
		items, total, err := s.repo.List(ctx, repository.ListClaimsParams{
			Status: status,
			Offset: offset,
			Limit:  exportPageSize,
		})
		if err != nil {
			return written, err
		}

		for _, claim := range items {
			if err := enc.Encode(toExportRecord(claim)); err != nil {
				return written, fmt.Errorf("write export record: %w", err)
			}
			written++
		}

		if len(items) < exportPageSize || offset+len(items) >= total {
			return written, nil
		}
	}
}

func clampLimit(limit int) int {
	if limit < 1 {
		return defaultPendingLimit
	}
	return min(limit, maxPendingLimit)
}
