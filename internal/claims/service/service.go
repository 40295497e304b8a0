package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"claim_contact_backend/internal/claims/repository"
	"claim_contact_backend/internal/claims/transport"
	"claim_contact_backend/internal/events"
	"claim_contact_backend/internal/phoneextract"
	"claim_contact_backend/internal/textsource"
	"claim_contact_backend/platform/apperr"
	"claim_contact_backend/platform/logger"
	"claim_contact_backend/platform/phone"
	"claim_contact_backend/platform/sanitize"
	"claim_contact_backend/platform/validator"
)

const (
	defaultPendingLimit = 100
	maxPendingLimit     = 1000

	msgNoDocumentText = "document text unavailable"
)

// PhoneExtractor runs phone extraction over document text.
type PhoneExtractor interface {
	Extract(ctx context.Context, text string) (phoneextract.Match, bool)
	Inspect(text string) phoneextract.Report
	Variant() string
}

// JobQueue hands claims to the background worker.
type JobQueue interface {
	EnqueueClaimExtraction(ctx context.Context, claimID uuid.UUID) error
}

// Service provides business logic for claims.
type Service struct {
	repo        repository.Repository
	extractor   PhoneExtractor
	texts       textsource.Source
	queue       JobQueue
	bus         events.Bus
	concurrency int
	log         *logger.Logger
}

// New creates a new claims service.
func New(repo repository.Repository, extractor PhoneExtractor, concurrency int, log *logger.Logger) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{repo: repo, extractor: extractor, concurrency: concurrency, log: log}
}

// SetTextSource configures where document text is fetched for claims that
// were imported without it.
func (s *Service) SetTextSource(src textsource.Source) {
	s.texts = src
}

// CanFetchText reports whether claims without stored text can still get it.
func (s *Service) CanFetchText() bool {
	return s.texts != nil
}

// SetJobQueue enables asynchronous extraction.
func (s *Service) SetJobQueue(queue JobQueue) {
	s.queue = queue
}

// SetEventBus enables publication of extraction events.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// NormalizeClaimNumber keeps only the digits of a claim number.
func NormalizeClaimNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractText extracts a phone number from ad-hoc document text.
func (s *Service) ExtractText(ctx context.Context, text string) transport.ExtractTextResponse {
	match, found := s.extractor.Extract(ctx, sanitize.DocumentText(text))
	return toExtractTextResponse(match, found)
}

// InspectText explains how each label and candidate was judged.
func (s *Service) InspectText(ctx context.Context, text string) transport.InspectTextResponse {
	doc := sanitize.DocumentText(text)
	report := s.extractor.Inspect(doc)

	resp := transport.InspectTextResponse{Labels: make([]transport.LabelReport, 0, len(report.Labels))}
	if report.Match != nil {
		resp.ExtractTextResponse = toExtractTextResponse(*report.Match, true)
	}
	for _, lr := range report.Labels {
		out := transport.LabelReport{
			Label:      string(lr.Label),
			Present:    lr.Present,
			Span:       lr.Span,
			Candidates: make([]transport.CandidateReport, 0, len(lr.Candidates)),
		}
		for _, cr := range lr.Candidates {
			out.Candidates = append(out.Candidates, transport.CandidateReport{
				Raw:        strings.TrimSpace(cr.Raw),
				Normalized: string(cr.Number),
				Verdict:    cr.Verdict,
			})
		}
		resp.Labels = append(resp.Labels, out)
	}
	return resp
}

// Import stores a batch of claims. Claim numbers are reduced to digits;
// numbers that end up shorter than the minimum are rejected and repeated
// numbers within the batch are stored once.
func (s *Service) Import(ctx context.Context, req transport.ImportClaimsRequest) (transport.ImportClaimsResponse, error) {
	resp := transport.ImportClaimsResponse{Duplicates: []string{}, Rejected: []string{}}
	seen := make(map[string]struct{}, len(req.Claims))

	for _, item := range req.Claims {
		number := NormalizeClaimNumber(item.ClaimNumber)
		if len(number) < validator.MinClaimNumberDigits {
			resp.Rejected = append(resp.Rejected, item.ClaimNumber)
			continue
		}
		if _, dup := seen[number]; dup {
			resp.Duplicates = append(resp.Duplicates, number)
			continue
		}
		seen[number] = struct{}{}

		params := repository.UpsertClaimParams{
			ClaimNumber: number,
			Insurer:     sanitize.Text(item.Insurer),
			Cause:       sanitize.Text(item.Cause),
		}
		if item.ClaimDate != "" {
			d, err := time.Parse(time.DateOnly, item.ClaimDate)
			if err != nil {
				return resp, apperr.Validation(fmt.Sprintf("invalid claim date for %s", number))
			}
			params.ClaimDate = &d
		}
		if item.DocumentText != nil {
			text := sanitize.DocumentText(*item.DocumentText)
			params.DocumentText = &text
		}

		if _, err := s.repo.Upsert(ctx, params); err != nil {
			return resp, err
		}
		resp.Imported++
	}

	s.log.Info("claims imported", "imported", resp.Imported, "duplicates", len(resp.Duplicates), "rejected", len(resp.Rejected))
	if s.bus != nil {
		s.bus.Publish(ctx, events.ClaimsImported{
			BaseEvent: events.NewBaseEvent(),
			Imported:  resp.Imported,
			Rejected:  len(resp.Rejected),
		})
	}
	return resp, nil
}

// Get retrieves a claim by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.ClaimResponse, error) {
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ClaimResponse{}, err
	}
	return toClaimResponse(claim), nil
}

// List retrieves claims with filters and pagination.
func (s *Service) List(ctx context.Context, req transport.ListClaimsRequest) (transport.ClaimListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.List(ctx, repository.ListClaimsParams{
		Status: repository.Status(req.Status),
		Search: strings.TrimSpace(req.Search),
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return transport.ClaimListResponse{}, err
	}

	return toClaimListResponse(items, total, page, pageSize), nil
}

// ExtractClaim runs extraction for one stored claim and persists the
// outcome. Failing to obtain text is recorded as an error outcome, not
// returned; only storage failures are returned as errors.
func (s *Service) ExtractClaim(ctx context.Context, id uuid.UUID) (transport.ClaimResponse, error) {
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ClaimResponse{}, err
	}

	updated, err := s.extractClaim(ctx, claim)
	if err != nil {
		return transport.ClaimResponse{}, err
	}
	return toClaimResponse(updated), nil
}

// ExtractByNumber runs extraction for the stored claim with the given
// number, after reducing it to digits.
func (s *Service) ExtractByNumber(ctx context.Context, claimNumber string) (transport.ClaimResponse, error) {
	claim, err := s.repo.GetByNumber(ctx, NormalizeClaimNumber(claimNumber))
	if err != nil {
		return transport.ClaimResponse{}, err
	}

	updated, err := s.extractClaim(ctx, claim)
	if err != nil {
		return transport.ClaimResponse{}, err
	}
	return toClaimResponse(updated), nil
}

func (s *Service) extractClaim(ctx context.Context, claim repository.Claim) (repository.Claim, error) {
	log := s.log.WithClaimID(claim.ID.String())

	text, textErr := s.documentText(ctx, claim)
	params := repository.SaveResultParams{ID: claim.ID}

	switch {
	case textErr != nil:
		params.Status = repository.StatusError
		msg := textErr.Error()
		params.LastError = &msg
	default:
		match, found := s.extractor.Extract(ctx, text)
		if found {
			number := string(match.Number)
			label := match.Label.Name()
			params.Status = repository.StatusOK
			params.Phone = &number
			params.PhoneLabel = &label
		} else {
			params.Status = repository.StatusNotFound
		}
	}

	saved, err := s.repo.SaveResult(ctx, params)
	if err != nil {
		log.DatabaseError("save extraction result", err)
		return repository.Claim{}, err
	}

	label := ""
	if saved.PhoneLabel != nil {
		label = *saved.PhoneLabel
	}
	log.ExtractionOutcome(saved.ClaimNumber, string(saved.Status), label)

	if s.bus != nil {
		evt := events.ClaimPhoneExtracted{
			BaseEvent:   events.NewBaseEvent(),
			ClaimID:     saved.ID,
			ClaimNumber: saved.ClaimNumber,
			Status:      string(saved.Status),
			Label:       label,
			Classifier:  s.extractor.Variant(),
		}
		if saved.LastError != nil {
			evt.Error = *saved.LastError
		}
		s.bus.Publish(ctx, evt)
	}

	return saved, nil
}

// documentText returns stored text, or fetches and stores it.
func (s *Service) documentText(ctx context.Context, claim repository.Claim) (string, error) {
	if claim.DocumentText != nil && strings.TrimSpace(*claim.DocumentText) != "" {
		return *claim.DocumentText, nil
	}
	if s.texts == nil {
		return "", errors.New(msgNoDocumentText)
	}

	raw, err := s.texts.FetchText(ctx, claim.ClaimNumber)
	if err != nil {
		if errors.Is(err, textsource.ErrNotFound) {
			return "", errors.New(msgNoDocumentText)
		}
		return "", fmt.Errorf("fetch document text: %w", err)
	}

	text := sanitize.DocumentText(raw)
	if err := s.repo.SetDocumentText(ctx, claim.ID, text); err != nil {
		s.log.WithClaimID(claim.ID.String()).DatabaseError("store document text", err)
	}
	return text, nil
}

func toExtractTextResponse(match phoneextract.Match, found bool) transport.ExtractTextResponse {
	if !found {
		return transport.ExtractTextResponse{}
	}
	number := string(match.Number)
	return transport.ExtractTextResponse{
		Found: true,
		Phone: number,
		E164:  phone.NormalizeE164(number),
		Label: match.Label.Name(),
	}
}
