package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"claim_contact_backend/internal/claims/repository"
	"claim_contact_backend/internal/claims/transport"
	"claim_contact_backend/internal/events"
	"claim_contact_backend/internal/extractcache"
	"claim_contact_backend/internal/phoneextract"
	"claim_contact_backend/internal/textsource"
	"claim_contact_backend/platform/apperr"
	"claim_contact_backend/platform/logger"
)

type fakeRepo struct {
	mu     sync.Mutex
	claims map[uuid.UUID]repository.Claim
	seq    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{claims: map[uuid.UUID]repository.Claim{}}
}

func (r *fakeRepo) Upsert(_ context.Context, p repository.UpsertClaimParams) (repository.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.claims {
		if c.ClaimNumber == p.ClaimNumber {
			if p.DocumentText != nil {
				c.DocumentText = p.DocumentText
			}
			r.claims[id] = c
			return c, nil
		}
	}
	r.seq++
	c := repository.Claim{
		ID:           uuid.New(),
		ClaimNumber:  p.ClaimNumber,
		Insurer:      p.Insurer,
		Cause:        p.Cause,
		ClaimDate:    p.ClaimDate,
		DocumentText: p.DocumentText,
		Status:       repository.StatusPending,
		CreatedAt:    time.Unix(int64(r.seq), 0),
		UpdatedAt:    time.Unix(int64(r.seq), 0),
	}
	r.claims[c.ID] = c
	return c, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok {
		return repository.Claim{}, apperr.NotFound("claim not found")
	}
	return c, nil
}

func (r *fakeRepo) GetByNumber(_ context.Context, number string) (repository.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.claims {
		if c.ClaimNumber == number {
			return c, nil
		}
	}
	return repository.Claim{}, apperr.NotFound("claim not found")
}

func (r *fakeRepo) sorted(status repository.Status) []repository.Claim {
	out := make([]repository.Claim, 0, len(r.claims))
	for _, c := range r.claims {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeRepo) List(_ context.Context, p repository.ListClaimsParams) ([]repository.Claim, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(p.Status)
	start := min(p.Offset, len(all))
	end := min(start+p.Limit, len(all))
	return all[start:end], len(all), nil
}

func (r *fakeRepo) ListPending(_ context.Context, limit int) ([]repository.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(repository.StatusPending)
	return all[:min(limit, len(all))], nil
}

func (r *fakeRepo) SetDocumentText(_ context.Context, id uuid.UUID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[id]
	if !ok {
		return apperr.NotFound("claim not found")
	}
	c.DocumentText = &text
	r.claims[id] = c
	return nil
}

func (r *fakeRepo) SaveResult(_ context.Context, p repository.SaveResultParams) (repository.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.claims[p.ID]
	if !ok {
		return repository.Claim{}, apperr.NotFound("claim not found")
	}
	now := time.Now()
	c.Status = p.Status
	c.Phone = p.Phone
	c.PhoneLabel = p.PhoneLabel
	c.LastError = p.LastError
	c.Attempts++
	c.ExtractedAt = &now
	r.claims[p.ID] = c
	return c, nil
}

type fakeQueue struct {
	ids []uuid.UUID
}

func (q *fakeQueue) EnqueueClaimExtraction(_ context.Context, id uuid.UUID) error {
	q.ids = append(q.ids, id)
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	extractor := extractcache.NewMemoized(phoneextract.New(nil), nil, "permissive", 0)
	return New(repo, extractor, 4, logger.Discard())
}

func strPtr(s string) *string { return &s }

func TestNormalizeClaimNumber(t *testing.T) {
	if got := NormalizeClaimNumber(" 2024/000-123.45 "); got != "202400012345" {
		t.Fatalf("unexpected digits %q", got)
	}
}

func TestImportNormalizesAndDeduplicates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.Import(context.Background(), transport.ImportClaimsRequest{Claims: []transport.ImportClaim{
		{ClaimNumber: "123-456-789", Insurer: "<b>Allianz</b>", ClaimDate: "2024-05-01"},
		{ClaimNumber: "123456789"},
		{ClaimNumber: "12345"},
		{ClaimNumber: "987654321", DocumentText: strPtr("TELEF-1: 612345678\r\n")},
	}})
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if resp.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", resp.Imported)
	}
	if !slices.Equal(resp.Duplicates, []string{"123456789"}) || !slices.Equal(resp.Rejected, []string{"12345"}) {
		t.Fatalf("unexpected duplicates %v / rejected %v", resp.Duplicates, resp.Rejected)
	}

	c, err := repo.GetByNumber(context.Background(), "123456789")
	if err != nil {
		t.Fatalf("expected normalized claim number: %v", err)
	}
	if c.Insurer != "Allianz" || c.ClaimDate == nil || c.ClaimDate.Format(time.DateOnly) != "2024-05-01" {
		t.Fatalf("unexpected stored claim %+v", c)
	}

	withText, _ := repo.GetByNumber(context.Background(), "987654321")
	if withText.DocumentText == nil || *withText.DocumentText != "TELEF-1: 612345678\n" {
		t.Fatalf("expected sanitized text, got %v", withText.DocumentText)
	}
}

func TestImportRejectsBadDate(t *testing.T) {
	svc := newTestService(newFakeRepo())
	_, err := svc.Import(context.Background(), transport.ImportClaimsRequest{Claims: []transport.ImportClaim{
		{ClaimNumber: "123456789", ClaimDate: "01/05/2024"},
	}})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExtractClaimOutcomes(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	bus := events.NewInMemoryBus(nil)
	var mu sync.Mutex
	var got []events.ClaimPhoneExtracted
	bus.Subscribe(events.ClaimPhoneExtracted{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(events.ClaimPhoneExtracted))
		return nil
	}))
	svc.SetEventBus(bus)

	withPhone, _ := repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "111111111", DocumentText: strPtr("OBSERVACIONES MANUALES: 612 345 678")})
	noPhone, _ := repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "222222222", DocumentText: strPtr("sin datos")})
	noText, _ := repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "333333333"})

	resp, err := svc.ExtractClaim(ctx, withPhone.ID)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if resp.Status != "ok" || resp.Phone == nil || *resp.Phone != "612345678" || *resp.PhoneLabel != "OBSERVACIONES MANUALES" {
		t.Fatalf("unexpected ok response %+v", resp)
	}

	resp, _ = svc.ExtractClaim(ctx, noPhone.ID)
	if resp.Status != "not_found" || resp.Phone != nil {
		t.Fatalf("unexpected not found response %+v", resp)
	}

	resp, _ = svc.ExtractClaim(ctx, noText.ID)
	if resp.Status != "error" || resp.LastError == nil || *resp.LastError != msgNoDocumentText {
		t.Fatalf("unexpected error response %+v", resp)
	}

	if _, err := svc.ExtractClaim(ctx, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}

	bus.Wait()
	if len(got) != 3 || got[0].Classifier != "permissive" {
		t.Fatalf("expected 3 events from the permissive classifier, got %+v", got)
	}
}

func TestExtractClaimFetchesText(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	if svc.CanFetchText() {
		t.Fatal("expected no text source before one is set")
	}

	calls := 0
	svc.SetTextSource(textsource.SourceFunc(func(_ context.Context, number string) (string, error) {
		calls++
		if number == "444444444" {
			return "<p>TELEF-2: 699 888 777</p>", nil
		}
		if number == "555555555" {
			return "", errors.New("portal timeout")
		}
		return "", textsource.ErrNotFound
	}))

	if !svc.CanFetchText() {
		t.Fatal("expected text source to be configured")
	}

	fetched, _ := repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "444444444"})
	failing, _ := repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "555555555"})

	resp, err := svc.ExtractClaim(ctx, fetched.ID)
	if err != nil || resp.Status != "ok" || *resp.Phone != "699888777" || !resp.HasText {
		t.Fatalf("unexpected response %+v (%v)", resp, err)
	}

	// Stored text is reused on the next run.
	if _, err := svc.ExtractClaim(ctx, fetched.ID); err != nil {
		t.Fatalf("second extract: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}

	resp, _ = svc.ExtractClaim(ctx, failing.ID)
	if resp.Status != "error" || resp.LastError == nil {
		t.Fatalf("expected source failure to be recorded, got %+v", resp)
	}
}

func TestExtractPending(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	for i, text := range []string{"TELEF-1: 611111111", "TELEF-1: 911111111", "DESCRIPCION: 622222222", ""} {
		p := repository.UpsertClaimParams{ClaimNumber: fmt.Sprintf("70000000%d", i)}
		if text != "" {
			p.DocumentText = strPtr(text)
		}
		_, _ = repo.Upsert(ctx, p)
	}

	resp, err := svc.ExtractPending(ctx, 0)
	if err != nil {
		t.Fatalf("extract pending: %v", err)
	}
	if resp.Processed != 4 || resp.OK != 2 || resp.NotFound != 1 || resp.Errors != 1 {
		t.Fatalf("unexpected summary %+v", resp)
	}

	again, _ := svc.ExtractPending(ctx, 10)
	if again.Processed != 0 {
		t.Fatalf("expected nothing pending, got %+v", again)
	}
}

func TestEnqueuePending(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	if _, err := svc.EnqueuePending(ctx, 10); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable without a queue, got %v", err)
	}

	queue := &fakeQueue{}
	svc.SetJobQueue(queue)
	_, _ = repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "123456789"})
	_, _ = repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "987654321"})

	resp, err := svc.EnqueuePending(ctx, 1)
	if err != nil || resp.Enqueued != 1 || len(queue.ids) != 1 {
		t.Fatalf("expected limit to apply, got %+v (%v)", resp, err)
	}
}

func TestExportJSONL(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	c, _ := repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "123456789", Insurer: "Allianz", DocumentText: strPtr("TELEF-1: 612345678")})
	_, _ = repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "987654321"})
	if _, err := svc.ExtractClaim(ctx, c.ID); err != nil {
		t.Fatalf("extract: %v", err)
	}

	var buf bytes.Buffer
	n, err := svc.ExportJSONL(ctx, &buf, repository.StatusOK)
	if err != nil || n != 1 {
		t.Fatalf("expected one exported record, got %d (%v)", n, err)
	}

	scanner := bufio.NewScanner(&buf)
	scanner.Scan()
	var rec transport.ExportRecord
	if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.ClaimNumber != "123456789" || rec.Phone == nil || *rec.Phone != "612345678" || *rec.Label != "TELEF-1" {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestExtractTextAndInspect(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	resp := svc.ExtractText(ctx, "<div>TELEF-1:00685789868</div>")
	if !resp.Found || resp.Phone != "685789868" || resp.E164 != "+34685789868" || resp.Label != "TELEF-1" {
		t.Fatalf("unexpected response %+v", resp)
	}

	resp = svc.ExtractText(ctx, "<table><tr><td>TELEF-1:&nbsp;612&nbsp;345&nbsp;678</td></tr></table>")
	if !resp.Found || resp.Phone != "612345678" {
		t.Fatalf("expected decoded &nbsp; to separate the field, got %+v", resp)
	}

	resp = svc.ExtractText(ctx, "<p>DESCRIPCION: sin telefono</p><p>NUMERO&nbsp;FECHA&nbsp;RESERVA&nbsp;1</p><p>611222333</p>")
	if resp.Found {
		t.Fatalf("expected table header with &nbsp; to end the description, got %+v", resp)
	}

	report := svc.InspectText(ctx, "DESCRIPCION: fijo 912345678")
	if report.Found || len(report.Labels) != 4 {
		t.Fatalf("unexpected report %+v", report)
	}
	desc := report.Labels[1]
	if !desc.Present || len(desc.Candidates) != 1 || desc.Candidates[0].Verdict != "not_mobile" || desc.Candidates[0].Raw != "912345678" {
		t.Fatalf("unexpected description report %+v", desc)
	}
}

func TestExtractByNumber(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	svc := newTestService(repo)

	if _, err := repo.Upsert(ctx, repository.UpsertClaimParams{ClaimNumber: "202400012345", DocumentText: strPtr("TELEF-1: 612345678")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	resp, err := svc.ExtractByNumber(ctx, "2024/000-12345")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if resp.Status != "ok" || resp.PhoneLabel == nil || *resp.PhoneLabel != "TELEF-1" {
		t.Fatalf("unexpected response %+v", resp)
	}

	if _, err := svc.ExtractByNumber(ctx, "999999999"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
