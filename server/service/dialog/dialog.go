package dialog

import (
	"context"
	"log/slog"

	"github.com/hrygo/autosense/plugin/ai"
	"github.com/hrygo/autosense/server/service/retrieval"
	"github.com/hrygo/autosense/server/service/session"
	"github.com/hrygo/autosense/server/service/urgency"
	"github.com/hrygo/autosense/server/service/vehicle"
)

// maxDelegations bounds silent handler-to-handler transitions within a
// single turn. A handler delegates by mutating CurrentStep and returning
// no response; the router then dispatches the target step, which produces
// the turn's visible response.
const maxDelegations = 4

// Engine is the dialogue engine: a pure dispatcher over the session's
// current step plus the decision subsystems the handlers call into.
type Engine struct {
	llm       ai.CompletionService
	retrieval retrieval.Service
	urgency   *urgency.Assessor
	vehicles  *vehicle.Service
}

// NewEngine creates a dialogue engine. llm and retrievalSvc may be nil;
// affected handlers then degrade to fixed fallback messages.
func NewEngine(llm ai.CompletionService, retrievalSvc retrieval.Service, assessor *urgency.Assessor, vehicles *vehicle.Service) *Engine {
	return &Engine{
		llm:       llm,
		retrieval: retrievalSvc,
		urgency:   assessor,
		vehicles:  vehicles,
	}
}

// Process runs one inbound turn against the session. It always returns a
// well-formed response; no handler error escapes to the transport.
func (e *Engine) Process(ctx context.Context, s *session.Session, req *Request) *Response {
	for i := 0; i < maxDelegations; i++ {
		if resp := e.dispatch(ctx, s, req); resp != nil {
			return resp
		}
	}
	slog.Warn("delegation loop exhausted", "session_id", s.ID, "step", s.CurrentStep)
	return textResponse(s, msgTurnError)
}

func (e *Engine) dispatch(ctx context.Context, s *session.Session, req *Request) *Response {
	switch s.CurrentStep {
	case session.StepVehicleID:
		return e.handleVehicleID(ctx, s, req)
	case session.StepPhotoConfirm:
		return e.handlePhotoConfirm(ctx, s, req)
	case session.StepFreeText:
		return e.handleFreeText(ctx, s, req)
	case session.StepSpecCheck:
		return e.handleSpecCheck(ctx, s, req)
	case session.StepDiagnosing:
		return e.handleDiagnosing(ctx, s, req)
	case session.StepUrgencyCheck:
		return e.handleUrgencyCheck(ctx, s, req)
	case session.StepReservation:
		return e.handleReservation(ctx, s, req)
	case session.StepBookingInfo:
		return e.handleBookingInfo(ctx, s, req)
	case session.StepBookingConfirm:
		return e.handleBookingConfirm(ctx, s, req)
	case session.StepDone:
		return sessionEndedResponse(s)
	}
	// Unmapped step: answer without mutating state.
	slog.Warn("unmapped dialogue step", "session_id", s.ID, "step", s.CurrentStep)
	return sessionEndedResponse(s)
}

func textResponse(s *session.Session, message string) *Response {
	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(s.CurrentStep),
		Prompt:      Prompt{Type: PromptText, Message: message},
	}
}

func sessionEndedResponse(s *session.Session) *Response {
	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(s.CurrentStep),
		Prompt:      Prompt{Type: PromptText, Message: msgSessionEnded},
	}
}
