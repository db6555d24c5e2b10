// Package v1 exposes the diagnostic dialogue engine over a JSON HTTP API.
package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/autosense/internal/profile"
	"github.com/hrygo/autosense/plugin/ai"
	"github.com/hrygo/autosense/server/service/dialog"
	"github.com/hrygo/autosense/server/service/retrieval"
	"github.com/hrygo/autosense/server/service/session"
	"github.com/hrygo/autosense/server/service/urgency"
	"github.com/hrygo/autosense/server/service/vehicle"
	"github.com/hrygo/autosense/store"
)

// APIV1Service wires the dialogue engine and its subsystems to HTTP routes.
type APIV1Service struct {
	Profile  *profile.Profile
	Store    *store.Store
	Sessions *session.Store
	Engine   *dialog.Engine
	Vehicles *vehicle.Service

	llm ai.CompletionService
}

// NewAPIV1Service constructs the service graph from the profile and store.
func NewAPIV1Service(prof *profile.Profile, st *store.Store) *APIV1Service {
	vehicles := vehicle.NewService(st)
	retrievalSvc := retrieval.NewLocalService(st)

	var llm ai.CompletionService
	if prof.IsAIEnabled() {
		cfg := ai.NewConfigFromProfile(prof)
		svc, err := ai.NewCompletionService(cfg)
		if err != nil {
			slog.Warn("completion service unavailable, degrading to fallback dialogue", "error", err)
		} else {
			llm = svc
		}
	}

	assessor := urgency.NewAssessor(llm, retrievalSvc)
	engine := dialog.NewEngine(llm, retrievalSvc, assessor, vehicles)
	sessions := session.NewStore(
		session.WithTTL(time.Duration(prof.SessionTTLSeconds)*time.Second),
		session.WithMaxDiagnosticTurns(prof.MaxDiagnosticTurns),
	)

	return &APIV1Service{
		Profile:  prof,
		Store:    st,
		Sessions: sessions,
		Engine:   engine,
		Vehicles: vehicles,
		llm:      llm,
	}
}

// RegisterRoutes attaches the API routes to the echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/chat", s.chat)
	g.DELETE("/chat/sessions/:id", s.deleteSession)
	g.GET("/vehicles/search", s.searchVehicles)
	g.GET("/vehicles/:id", s.getVehicle)
	g.GET("/health", s.health)
}

func (s *APIV1Service) health(c echo.Context) error {
	configured := s.llm != nil && s.llm.IsConfigured()
	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        s.Profile.Version,
		"mode":           s.Profile.Mode,
		"llm_configured": configured,
	})
}
