package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of the last extraction attempt for a claim.
type Status string

const (
	StatusPending  Status = "pending"
	StatusOK       Status = "ok"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusOK, StatusNotFound, StatusError:
		return true
	}
	return false
}

// Claim is a stored insurance claim and its extraction result.
type Claim struct {
	ID           uuid.UUID  `db:"id"`
	ClaimNumber  string     `db:"claim_number"`
	Insurer      string     `db:"insurer"`
	Cause        string     `db:"cause"`
	ClaimDate    *time.Time `db:"claim_date"`
	DocumentText *string    `db:"document_text"`
	Phone        *string    `db:"phone"`
	PhoneLabel   *string    `db:"phone_label"`
	Status       Status     `db:"status"`
	LastError    *string    `db:"last_error"`
	Attempts     int        `db:"attempts"`
	ExtractedAt  *time.Time `db:"extracted_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// UpsertClaimParams contains data for creating or refreshing a claim.
// A nil DocumentText keeps any text already stored.
type UpsertClaimParams struct {
	ClaimNumber  string
	Insurer      string
	Cause        string
	ClaimDate    *time.Time
	DocumentText *string
}

// SaveResultParams records the outcome of one extraction attempt.
type SaveResultParams struct {
	ID         uuid.UUID
	Status     Status
	Phone      *string
	PhoneLabel *string
	LastError  *string
}

// ListClaimsParams defines filters for listing claims.
type ListClaimsParams struct {
	Status Status
	Search string
	Offset int
	Limit  int
}

// Repository defines claim storage operations.
type Repository interface {
	Upsert(ctx context.Context, params UpsertClaimParams) (Claim, error)
	GetByID(ctx context.Context, id uuid.UUID) (Claim, error)
	GetByNumber(ctx context.Context, claimNumber string) (Claim, error)
	List(ctx context.Context, params ListClaimsParams) ([]Claim, int, error)
	ListPending(ctx context.Context, limit int) ([]Claim, error)
	SetDocumentText(ctx context.Context, id uuid.UUID, text string) error
	SaveResult(ctx context.Context, params SaveResultParams) (Claim, error)
}
