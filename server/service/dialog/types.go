// Package dialog implements the diagnostic dialogue engine: the step
// state machine, the retrieval-gated routing between specification
// explanation and free diagnosis, and the iterative diagnostic loop.
package dialog

import (
	"github.com/hrygo/autosense/server/service/retrieval"
)

// Request is one inbound turn. Message drives free-text turns; Action and
// ActionValue drive structured choices.
type Request struct {
	SessionID   string `json:"session_id,omitempty"`
	Message     string `json:"message,omitempty"`
	Action      string `json:"action,omitempty"`
	ActionValue string `json:"action_value,omitempty"`
}

// Prompt types of the outbound contract.
const (
	PromptText                = "text"
	PromptVehicleSearch       = "vehicle_search"
	PromptPhotoConfirm        = "photo_confirm"
	PromptSingleChoice        = "single_choice"
	PromptDiagnosisCandidates = "diagnosis_candidates"
	PromptReservationChoice   = "reservation_choice"
	PromptBookingForm         = "booking_form"
	PromptBookingConfirm      = "booking_confirm"
)

// Choice is a selectable option shown to the user.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// BookingField describes one input of the booking form.
type BookingField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Prompt is the visible part of a response.
type Prompt struct {
	Type            string            `json:"type"`
	Message         string            `json:"message"`
	Choices         []Choice          `json:"choices,omitempty"`
	VehiclePhotoURL string            `json:"vehicle_photo_url,omitempty"`
	BookingType     string            `json:"booking_type,omitempty"`
	BookingFields   []BookingField    `json:"booking_fields,omitempty"`
	BookingSummary  map[string]string `json:"booking_summary,omitempty"`
}

// UrgencyInfo is the urgency block of a response.
type UrgencyInfo struct {
	Level         string   `json:"level"`
	RequiresVisit bool     `json:"requires_visit"`
	Reasons       []string `json:"reasons"`
	CanDrive      *bool    `json:"can_drive,omitempty"`
	VisitUrgency  string   `json:"visit_urgency,omitempty"`
}

// Source is a manual snippet reference attached to a response.
type Source struct {
	Content string  `json:"content"`
	Page    int     `json:"page"`
	Section string  `json:"section"`
	Score   float64 `json:"score"`
}

// Response is one outbound turn.
type Response struct {
	SessionID   string       `json:"session_id"`
	CurrentStep string       `json:"current_step"`
	Prompt      Prompt       `json:"prompt"`
	Urgency     *UrgencyInfo `json:"urgency,omitempty"`
	RAGSources  []Source     `json:"rag_sources"`
}

const sourceContentLimit = 200

func sourcesFromSnippets(snippets []retrieval.Snippet) []Source {
	var sources []Source
	for _, s := range snippets {
		sources = append(sources, Source{
			Content: truncateRunes(s.Content, sourceContentLimit),
			Page:    s.Page,
			Section: s.Section,
			Score:   s.Score,
		})
	}
	return sources
}

func truncateRunes(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
