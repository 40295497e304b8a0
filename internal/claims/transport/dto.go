package transport

import "github.com/google/uuid"

// Extraction

type ExtractTextRequest struct {
	Text string `json:"text" validate:"required,max=2000000"`
}

type ExtractTextResponse struct {
	Found bool   `json:"found"`
	Phone string `json:"phone,omitempty"`
	E164  string `json:"e164,omitempty"`
	Label string `json:"label,omitempty"`
}

type InspectTextResponse struct {
	ExtractTextResponse
	Labels []LabelReport `json:"labels"`
}

type LabelReport struct {
	Label      string            `json:"label"`
	Present    bool              `json:"present"`
	Span       string            `json:"span,omitempty"`
	Candidates []CandidateReport `json:"candidates"`
}

type CandidateReport struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized,omitempty"`
	Verdict    string `json:"verdict"`
}

// Claims

type ImportClaim struct {
	ClaimNumber  string  `json:"claimNumber" validate:"required,claimnumber,max=64"`
	Insurer      string  `json:"insurer" validate:"max=200"`
	Cause        string  `json:"cause" validate:"max=500"`
	ClaimDate    string  `json:"claimDate" validate:"omitempty,datetime=2006-01-02"`
	DocumentText *string `json:"documentText,omitempty" validate:"omitempty,max=2000000"`
}

type ImportClaimsRequest struct {
	Claims []ImportClaim `json:"claims" validate:"required,min=1,max=1000,dive"`
}

type ImportClaimsResponse struct {
	Imported   int      `json:"imported"`
	Duplicates []string `json:"duplicates"`
	Rejected   []string `json:"rejected"`
}

type ListClaimsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=pending ok not_found error"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type ClaimResponse struct {
	ID          uuid.UUID `json:"id"`
	ClaimNumber string    `json:"claimNumber"`
	Insurer     string    `json:"insurer"`
	Cause       string    `json:"cause"`
	ClaimDate   *string   `json:"claimDate,omitempty"`
	HasText     bool      `json:"hasText"`
	Phone       *string   `json:"phone,omitempty"`
	PhoneLabel  *string   `json:"phoneLabel,omitempty"`
	Status      string    `json:"status"`
	LastError   *string   `json:"lastError,omitempty"`
	Attempts    int       `json:"attempts"`
	ExtractedAt *string   `json:"extractedAt,omitempty"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type ClaimListResponse struct {
	Items      []ClaimResponse `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

type ExtractPendingRequest struct {
	Limit int  `json:"limit" validate:"omitempty,min=1,max=1000"`
	Async bool `json:"async"`
}

type ExtractPendingResponse struct {
	Processed int `json:"processed"`
	Enqueued  int `json:"enqueued"`
	OK        int `json:"ok"`
	NotFound  int `json:"notFound"`
	Errors    int `json:"errors"`
}

// ExportRecord is one line of the JSONL export, matching the columns the
// batch tool writes.
type ExportRecord struct {
	ClaimNumber string  `json:"claimNumber"`
	Insurer     string  `json:"insurer"`
	Cause       string  `json:"cause"`
	ClaimDate   *string `json:"claimDate,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Label       *string `json:"label,omitempty"`
	Status      string  `json:"status"`
}
