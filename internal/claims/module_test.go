package claims

import (
	"context"
	"testing"

	"claim_contact_backend/internal/events"
	"claim_contact_backend/internal/extractcache"
	apphttp "claim_contact_backend/internal/http"
	"claim_contact_backend/internal/phoneextract"
	"claim_contact_backend/platform/config"
	"claim_contact_backend/platform/logger"
	"claim_contact_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestModule() *Module {
	extractor := extractcache.NewMemoized(phoneextract.New(nil), nil, "permissive", 0)
	cfg := &config.Config{ExtractionConcurrency: 2}
	return NewModule(nil, extractor, cfg, validator.New(), logger.Discard())
}

func TestRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	v1 := engine.Group("/api/v1")

	module := newTestModule()
	module.RegisterRoutes(&apphttp.RouterContext{Engine: engine, V1: v1, Protected: v1})

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/phone/extract",
		"POST /api/v1/phone/inspect",
		"POST /api/v1/claims/import",
		"GET /api/v1/claims",
		"GET /api/v1/claims/export.jsonl",
		"GET /api/v1/claims/:id",
		"POST /api/v1/claims/:id/extract",
		"POST /api/v1/claims/extract-pending",
	} {
		if !registered[want] {
			t.Errorf("expected route %s to be registered", want)
		}
	}
}

func TestHandleClaimEvents(t *testing.T) {
	module := newTestModule()
	bus := events.NewInMemoryBus(logger.Discard())
	module.RegisterHandlers(bus)

	ctx := context.Background()
	published := []events.Event{
		events.ClaimPhoneExtracted{BaseEvent: events.NewBaseEvent(), ClaimID: uuid.New(), ClaimNumber: "202400000001", Status: "ok", Label: "DESCRIPCION"},
		events.ClaimPhoneExtracted{BaseEvent: events.NewBaseEvent(), ClaimID: uuid.New(), ClaimNumber: "202400000002", Status: "error", Error: "document text unavailable"},
		events.ClaimsImported{BaseEvent: events.NewBaseEvent(), Imported: 3, Rejected: 1},
	}
	for _, evt := range published {
		if err := bus.PublishSync(ctx, evt); err != nil {
			t.Fatalf("%s: unexpected error: %v", evt.EventName(), err)
		}
	}
}

func TestModuleName(t *testing.T) {
	if got := newTestModule().Name(); got != "claims" {
		t.Fatalf("expected module name claims, got %q", got)
	}
}
