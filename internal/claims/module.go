// Package claims provides the claims bounded context module: import,
// phone extraction and export of insurance claims.
package claims

import (
	"context"

	"claim_contact_backend/internal/claims/handler"
	"claim_contact_backend/internal/claims/repository"
	"claim_contact_backend/internal/claims/service"
	"claim_contact_backend/internal/events"
	apphttp "claim_contact_backend/internal/http"
	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/logger"
	"claim_contact_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the claims bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
	log     *logger.Logger
}

// NewModule creates and initializes the claims module.
func NewModule(pool *pgxpool.Pool, extractor service.PhoneExtractor, cfg config.ExtractionConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, extractor, cfg.GetExtractionConcurrency(), log)
	h := handler.New(svc, val, log)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "claims"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts claims routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Ad-hoc text extraction
	ctx.Protected.POST("/phone/extract", m.handler.ExtractText)
	ctx.Protected.POST("/phone/inspect", m.handler.InspectText)

	// Stored claims
	claims := ctx.Protected.Group("/claims")
	claims.POST("/import", m.handler.ImportClaims)
	claims.GET("", m.handler.ListClaims)
	claims.GET("/export.jsonl", m.handler.ExportClaims)
	claims.GET("/:id", m.handler.GetClaim)
	claims.POST("/:id/extract", m.handler.ExtractClaim)

	pending := []gin.HandlerFunc{m.handler.ExtractPending}
	if ctx.BatchRateLimiter != nil {
		pending = append([]gin.HandlerFunc{ctx.BatchRateLimiter.RateLimit()}, pending...)
	}
	claims.POST("/extract-pending", pending...)
}

// RegisterHandlers subscribes to claim events.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.ClaimPhoneExtracted{}.EventName(), m)
	bus.Subscribe(events.ClaimsImported{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ClaimPhoneExtracted:
		log := m.log.WithContext(ctx).WithClaimID(e.ClaimID.String())
		if e.Status == string(repository.StatusError) {
			log.Warn("claim extraction failed", "claim_number", e.ClaimNumber, "error", e.Error)
			return nil
		}
		log.Debug("claim extraction recorded", "claim_number", e.ClaimNumber, "status", e.Status, "classifier", e.Classifier)
		return nil
	case events.ClaimsImported:
		if e.Rejected > 0 {
			m.log.WithContext(ctx).Warn("claims rejected on import", "imported", e.Imported, "rejected", e.Rejected)
		}
		return nil
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
