package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"claim_contact_backend/internal/claims/transport"
	"claim_contact_backend/platform/apperr"
)

type fakeClaims struct {
	rejected  []string
	extracted []string
	phones    map[string]string
}

func (f *fakeClaims) Import(_ context.Context, req transport.ImportClaimsRequest) (transport.ImportClaimsResponse, error) {
	return transport.ImportClaimsResponse{Imported: len(req.Claims) - len(f.rejected), Rejected: f.rejected}, nil
}

func (f *fakeClaims) ExtractByNumber(_ context.Context, claimNumber string) (transport.ClaimResponse, error) {
	f.extracted = append(f.extracted, claimNumber)
	if claimNumber == "999999999" {
		return transport.ClaimResponse{}, apperr.NotFound("claim not found")
	}
	resp := transport.ClaimResponse{ClaimNumber: claimNumber, Status: "not_found"}
	if phone, ok := f.phones[claimNumber]; ok {
		resp.Status = "ok"
		resp.Phone = &phone
	}
	return resp, nil
}

func TestCollectClaimNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.txt")
	content := "# batch\n202400000003\n\n  202400000004  \n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := collectClaimNumbers("202400000001, 202400000002,", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"202400000001", "202400000002", "202400000003", "202400000004"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	if _, err := collectClaimNumbers("", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}

func TestExtractNumbersReportsEachClaim(t *testing.T) {
	svc := &fakeClaims{
		rejected: []string{"123"},
		phones:   map[string]string{"202400000001": "+34612345678"},
	}
	var out bytes.Buffer

	numbers := []string{"202400000001", "123", "202400000002", "202400000001", "999999999"}
	if err := extractNumbers(context.Background(), &out, svc, numbers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCalls := []string{"202400000001", "202400000002", "999999999"}
	if !slices.Equal(svc.extracted, wantCalls) {
		t.Fatalf("expected extraction calls %v, got %v", wantCalls, svc.extracted)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		"123\tskipped",
		"202400000001\tok\t+34612345678",
		"202400000002\tnot_found\t-",
		"999999999\tmissing",
	}
	if !slices.Equal(lines, want) {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestExtractNumbersStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := &fakeClaims{}
	if err := extractNumbers(ctx, &bytes.Buffer{}, svc, []string{"202400000001"}); err == nil {
		t.Fatal("expected canceled context to stop the batch")
	}
	if len(svc.extracted) != 0 {
		t.Fatalf("expected no extraction calls, got %v", svc.extracted)
	}
}
