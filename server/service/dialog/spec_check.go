package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/autosense/plugin/ai"
	"github.com/hrygo/autosense/server/service/session"
)

// handleSpecCheck runs the specification-explanation path in two phases.
// Phase 1 classifies the symptom against the carried spec snippets and
// shows the explanation only on a high-confidence positive; anything less
// falls through to the diagnostic loop. Phase 2 handles the user's choice.
func (e *Engine) handleSpecCheck(ctx context.Context, s *session.Session, req *Request) *Response {
	if s.SpecCheckShown {
		return e.handleSpecCheckChoice(s, req)
	}
	return e.classifyAndRespond(ctx, s)
}

func (e *Engine) handleSpecCheckChoice(s *session.Session, req *Request) *Response {
	switch req.ActionValue {
	case "resolved":
		s.CurrentStep = session.StepDone
		return &Response{
			SessionID:   s.ID,
			CurrentStep: string(session.StepDone),
			Prompt:      Prompt{Type: PromptText, Message: msgResolvedDone},
		}
	}

	// not_resolved / already_tried / free text: continue into diagnosis.
	if msg := strings.TrimSpace(req.Message); msg != "" && req.ActionValue == "" {
		s.CollectedSymptoms = append(s.CollectedSymptoms, msg)
	}
	s.CurrentStep = session.StepDiagnosing
	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepDiagnosing),
		Prompt:      Prompt{Type: PromptText, Message: msgSpecNotResolved},
	}
}

func (e *Engine) classifyAndRespond(ctx context.Context, s *session.Session) *Response {
	if e.llm == nil || !e.llm.IsConfigured() {
		s.CurrentStep = session.StepDiagnosing
		return nil
	}

	prompt := fmt.Sprintf(specClassificationPromptTemplate,
		orUnknown(s.VehicleMake), orUnknown(s.VehicleModel), yearOrUnknown(s.VehicleYear),
		s.SymptomText, specSourcesContext(s.SpecSources))

	raw, err := e.llm.Complete(ctx, []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, 0.1, ai.SpecClassificationSchema)
	if err != nil {
		slog.Error("spec classification call failed", "session_id", s.ID, "error", err)
		s.CurrentStep = session.StepDiagnosing
		return nil
	}

	result, err := ai.DecodeSpecClassificationResult(raw)
	if err != nil {
		slog.Error("spec classification decode failed", "session_id", s.ID, "error", err)
		s.CurrentStep = session.StepDiagnosing
		return nil
	}

	slog.Info("spec classification",
		"session_id", s.ID,
		"is_spec", result.IsSpecBehavior,
		"confidence", result.Confidence,
		"reasoning", result.Reasoning)

	if !result.IsSpecBehavior || result.Confidence != "high" {
		s.CurrentStep = session.StepDiagnosing
		return nil
	}

	s.SpecCheckShown = true

	message := "マニュアルを確認したところ、これは仕様（正常な動作）の可能性があります。\n\n" + result.Explanation
	if result.ManualReference != "" {
		message += "\n\n📖 参考: " + result.ManualReference
	}
	message += "\n\nこの説明で疑問は解決しましたか？"

	var sources []Source
	for _, src := range s.SpecSources {
		sources = append(sources, Source{
			Content: truncateRunes(src.Content, sourceContentLimit),
			Page:    src.Page,
			Section: src.Section,
			Score:   src.Score,
		})
	}

	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepSpecCheck),
		Prompt: Prompt{
			Type:    PromptSingleChoice,
			Message: message,
			Choices: specCheckChoices,
		},
		RAGSources: sources,
	}
}

func specSourcesContext(sources []session.SpecSource) string {
	if len(sources) == 0 {
		return buildNoContextText()
	}
	var parts []string
	for i, src := range sources {
		header := fmt.Sprintf("[%d] p.%d (%s)", i+1, src.Page, src.ContentType)
		if src.Section != "" {
			header = fmt.Sprintf("[%d] %s (p.%d, %s)", i+1, src.Section, src.Page, src.ContentType)
		}
		parts = append(parts, header+"\n"+src.Content)
	}
	return strings.Join(parts, "\n\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "不明"
	}
	return s
}

func yearOrUnknown(year int) string {
	if year == 0 {
		return "不明"
	}
	return fmt.Sprintf("%d", year)
}
