package service

import (
	"time"

	"claim_contact_backend/internal/claims/repository"
	"claim_contact_backend/internal/claims/transport"
)

func toClaimResponse(c repository.Claim) transport.ClaimResponse {
	return transport.ClaimResponse{
		ID:          c.ID,
		ClaimNumber: c.ClaimNumber,
		Insurer:     c.Insurer,
		Cause:       c.Cause,
		ClaimDate:   formatDate(c.ClaimDate),
		HasText:     c.DocumentText != nil && *c.DocumentText != "",
		Phone:       c.Phone,
		PhoneLabel:  c.PhoneLabel,
		Status:      string(c.Status),
		LastError:   c.LastError,
		Attempts:    c.Attempts,
		ExtractedAt: formatTime(c.ExtractedAt),
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
}

func toClaimListResponse(items []repository.Claim, total, page, pageSize int) transport.ClaimListResponse {
	resp := transport.ClaimListResponse{
		Items:    make([]transport.ClaimResponse, 0, len(items)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toClaimResponse(item))
	}
	if pageSize > 0 {
		resp.TotalPages = (total + pageSize - 1) / pageSize
	}
	return resp
}

func toExportRecord(c repository.Claim) transport.ExportRecord {
	return transport.ExportRecord{
		ClaimNumber: c.ClaimNumber,
		Insurer:     c.Insurer,
		Cause:       c.Cause,
		ClaimDate:   formatDate(c.ClaimDate),
		Phone:       c.Phone,
		Label:       c.PhoneLabel,
		Status:      string(c.Status),
	}
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
