package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"claim_contact_backend/platform/apperr"
)

const claimNotFoundMessage = "claim not found"

const claimColumns = `id, claim_number, insurer, cause, claim_date, document_text,
	phone, phone_label, status, last_error, attempts, extracted_at, created_at, updated_at`

// Repo implements the claims repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new claims repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Upsert inserts a claim or refreshes its metadata by claim number.
func (r *Repo) Upsert(ctx context.Context, params UpsertClaimParams) (Claim, error) {
	query := `
		INSERT INTO claims (id, claim_number, insurer, cause, claim_date, document_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (claim_number) DO UPDATE
		SET insurer = COALESCE(NULLIF(EXCLUDED.insurer, ''), claims.insurer),
			cause = COALESCE(NULLIF(EXCLUDED.cause, ''), claims.cause),
			claim_date = COALESCE(EXCLUDED.claim_date, claims.claim_date),
			document_text = COALESCE(EXCLUDED.document_text, claims.document_text),
			updated_at = now()
		RETURNING ` + claimColumns

	claim, err := scanClaim(r.pool.QueryRow(ctx, query,
		uuid.New(), params.ClaimNumber, params.Insurer, params.Cause, params.ClaimDate, params.DocumentText,
	))
	if err != nil {
		return Claim{}, fmt.Errorf("upsert claim %s: %w", params.ClaimNumber, err)
	}
	return claim, nil
}

// GetByID retrieves a claim by ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`

	claim, err := scanClaim(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Claim{}, apperr.NotFound(claimNotFoundMessage)
		}
		return Claim{}, fmt.Errorf("get claim by id: %w", err)
	}
	return claim, nil
}

// GetByNumber retrieves a claim by its normalized claim number.
func (r *Repo) GetByNumber(ctx context.Context, claimNumber string) (Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE claim_number = $1`

	claim, err := scanClaim(r.pool.QueryRow(ctx, query, claimNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Claim{}, apperr.NotFound(claimNotFoundMessage)
		}
		return Claim{}, fmt.Errorf("get claim by number: %w", err)
	}
	return claim, nil
}

// List lists claims with filters and pagination, newest first.
func (r *Repo) List(ctx context.Context, params ListClaimsParams) ([]Claim, int, error) {
	whereClauses := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, string(params.Status))
		argIdx++
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(claim_number LIKE $%d OR insurer ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM claims WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count claims: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM claims WHERE %s ORDER BY created_at DESC, claim_number LIMIT $%d OFFSET $%d`,
		claimColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	claims, err := collectClaims(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list claims: %w", err)
	}
	return claims, total, nil
}

// ListPending returns claims that have never been extracted, oldest first.
func (r *Repo) ListPending(ctx context.Context, limit int) ([]Claim, error) {
	query := `SELECT ` + claimColumns + `
		FROM claims
		WHERE status = $1
		ORDER BY created_at, claim_number
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, string(StatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending claims: %w", err)
	}
	defer rows.Close()

	claims, err := collectClaims(rows)
	if err != nil {
		return nil, fmt.Errorf("list pending claims: %w", err)
	}
	return claims, nil
}

// SetDocumentText stores fetched document text for a claim.
func (r *Repo) SetDocumentText(ctx context.Context, id uuid.UUID, text string) error {
	query := `UPDATE claims SET document_text = $2, updated_at = now() WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, text)
	if err != nil {
		return fmt.Errorf("set document text: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(claimNotFoundMessage)
	}
	return nil
}

// SaveResult records an extraction attempt and bumps the attempt counter.
func (r *Repo) SaveResult(ctx context.Context, params SaveResultParams) (Claim, error) {
	query := `
		UPDATE claims
		SET status = $2,
			phone = $3,
			phone_label = $4,
			last_error = $5,
			attempts = attempts + 1,
			extracted_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + claimColumns

	claim, err := scanClaim(r.pool.QueryRow(ctx, query,
		params.ID, string(params.Status), params.Phone, params.PhoneLabel, params.LastError,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Claim{}, apperr.NotFound(claimNotFoundMessage)
		}
		return Claim{}, fmt.Errorf("save extraction result: %w", err)
	}
	return claim, nil
}

func scanClaim(row pgx.Row) (Claim, error) {
	var c Claim
	var status string
	err := row.Scan(
		&c.ID, &c.ClaimNumber, &c.Insurer, &c.Cause, &c.ClaimDate, &c.DocumentText,
		&c.Phone, &c.PhoneLabel, &status, &c.LastError, &c.Attempts, &c.ExtractedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	c.Status = Status(status)
	return c, err
}

func collectClaims(rows pgx.Rows) ([]Claim, error) {
	claims := make([]Claim, 0)
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}
