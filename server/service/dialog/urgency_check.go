package dialog

import (
	"context"
	"strings"

	"github.com/hrygo/autosense/server/service/session"
	"github.com/hrygo/autosense/server/service/urgency"
)

// handleUrgencyCheck runs the full urgency assessment after the
// diagnostic loop failed to resolve the issue. High and critical verdicts
// delegate to the reservation flow; lower verdicts close the session with
// advice.
func (e *Engine) handleUrgencyCheck(ctx context.Context, s *session.Session, _ *Request) *Response {
	symptom := s.SymptomText
	if symptom == "" {
		symptom = s.AllSymptoms()
	}

	assessment := e.urgency.Assess(ctx, symptom, urgency.Vehicle{
		ID:    s.VehicleID,
		Make:  s.VehicleMake,
		Model: s.VehicleModel,
		Year:  s.VehicleYear,
	})

	s.SetUrgency(string(assessment.Level), assessment.CanDrive)

	if assessment.Level.Rank() >= urgency.LevelHigh.Rank() {
		s.CurrentStep = session.StepReservation
		return nil
	}

	levelLabel := "低"
	if assessment.Level == urgency.LevelMedium {
		levelLabel = "中"
	}
	var b strings.Builder
	b.WriteString("緊急度: " + levelLabel + "\n\n")
	for i, r := range assessment.Reasons {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("・" + r)
	}
	if assessment.Recommendation != "" {
		b.WriteString("\n\n📋 " + assessment.Recommendation)
	}

	s.CurrentStep = session.StepDone
	canDrive := assessment.CanDrive
	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepDone),
		Prompt:      Prompt{Type: PromptText, Message: b.String()},
		Urgency: &UrgencyInfo{
			Level:         string(assessment.Level),
			RequiresVisit: false,
			Reasons:       assessment.Reasons,
			CanDrive:      &canDrive,
			VisitUrgency:  assessment.VisitUrgency,
		},
	}
}
