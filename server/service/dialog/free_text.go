package dialog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hrygo/autosense/server/service/retrieval"
	"github.com/hrygo/autosense/server/service/session"
	"github.com/hrygo/autosense/server/service/urgency"
)

// handleFreeText receives the first symptom description and runs the spec
// gate once: rule-tier urgency first (cheap and safety-authoritative),
// then ranked retrieval. On a gate pass the turn short-circuits to the
// specification-explanation path; otherwise it falls through to the
// diagnostic loop, optionally carrying the non-blocking spec hint.
func (e *Engine) handleFreeText(ctx context.Context, s *session.Session, req *Request) *Response {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return &Response{
			SessionID:   s.ID,
			CurrentStep: string(session.StepFreeText),
			Prompt:      Prompt{Type: PromptText, Message: msgAskSymptom},
		}
	}

	s.SymptomText = message

	ruleLevel := ""
	if verdict := urgency.CheckKeywords(message); verdict != nil {
		ruleLevel = string(verdict.Level)
	}

	// A high or critical rule verdict blocks the spec route outright, so
	// no retrieval query is issued for it.
	var snippets []retrieval.Snippet
	if e.retrieval != nil && ruleLevel != string(urgency.LevelHigh) && ruleLevel != string(urgency.LevelCritical) {
		results, err := e.retrieval.Search(ctx, message, s.VehicleID, 5)
		if err != nil {
			slog.Warn("retrieval failed on free-text turn", "session_id", s.ID, "error", err)
		} else {
			snippets = results
		}
	}

	decision := retrieval.EvaluateSpecGate(snippets, ruleLevel)
	slog.Info("spec gate evaluated",
		"session_id", s.ID,
		"route_to_spec", decision.RouteToSpec,
		"reason", decision.Reason,
		"snippets", len(snippets))

	if decision.RouteToSpec {
		s.SpecSources = make([]session.SpecSource, 0, len(decision.SpecSources))
		for _, src := range decision.SpecSources {
			s.SpecSources = append(s.SpecSources, session.SpecSource{
				Content:     src.Content,
				Page:        src.Page,
				Section:     src.Section,
				ContentType: string(src.ContentType),
				Score:       src.Score,
			})
		}
		s.CurrentStep = session.StepSpecCheck
		return nil
	}

	if decision.Hint || retrieval.EvaluateSpecHint(snippets, ruleLevel) {
		s.SpecHint = true
	}
	s.CurrentStep = session.StepDiagnosing
	return nil
}
