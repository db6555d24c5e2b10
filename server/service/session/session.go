// Package session holds per-conversation mutable state and its store.
package session

import (
	"time"
)

// Step is a dialogue state-machine step.
type Step string

const (
	StepVehicleID      Step = "vehicle_id"
	StepPhotoConfirm   Step = "photo_confirm"
	StepFreeText       Step = "free_text"
	StepSpecCheck      Step = "spec_check"
	StepDiagnosing     Step = "diagnosing"
	StepUrgencyCheck   Step = "urgency_check"
	StepReservation    Step = "reservation"
	StepBookingInfo    Step = "booking_info"
	StepBookingConfirm Step = "booking_confirm"
	StepDone           Step = "done"
)

// Turn is one (role, content) entry of the conversation history.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// MaxRecentQuestions bounds the recency window used for duplicate
// detection. Older questions age out; the window is sized to what the
// guard actually needs.
const MaxRecentQuestions = 12

// Session is the per-conversation state. It is owned by the Store and
// mutated only by step handlers during turn processing.
type Session struct {
	ID          string
	CurrentStep Step

	VehicleID       string
	VehicleMake     string
	VehicleModel    string
	VehicleYear     int
	VehiclePhotoURL string

	SymptomText         string
	CollectedSymptoms   []string
	ConversationHistory []Turn

	DiagnosticTurn     int
	MaxDiagnosticTurns int

	UrgencyLevel string
	CanDrive     *bool

	CandidatesShown     bool
	CandidatesShownTurn int
	SpecCheckShown      bool
	SpecHint            bool
	SpecSources         []SpecSource

	LastQuestions       []string
	ConversationSummary string
	RewrittenQuery      string
	LastConfidence      float64
	SolutionsTried      int

	BookingType string
	BookingData map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SpecSource is a carried manual snippet backing the spec-check path.
type SpecSource struct {
	Content     string
	Page        int
	Section     string
	ContentType string
	Score       float64
}

// AppendUserTurn records user input in history and the symptom list.
func (s *Session) AppendUserTurn(content string) {
	s.CollectedSymptoms = append(s.CollectedSymptoms, content)
	s.ConversationHistory = append(s.ConversationHistory, Turn{Role: "user", Content: content})
}

// AppendAssistantTurn records an assistant message in history.
func (s *Session) AppendAssistantTurn(content string) {
	s.ConversationHistory = append(s.ConversationHistory, Turn{Role: "assistant", Content: content})
}

// RememberQuestion records an asked question in the bounded recency window.
func (s *Session) RememberQuestion(q string) {
	s.LastQuestions = append(s.LastQuestions, q)
	if len(s.LastQuestions) > MaxRecentQuestions {
		s.LastQuestions = s.LastQuestions[len(s.LastQuestions)-MaxRecentQuestions:]
	}
}

// SetUrgency updates the urgency fields, holding the invariant that a
// critical level always means not drivable.
func (s *Session) SetUrgency(level string, canDrive bool) {
	s.UrgencyLevel = level
	if level == "critical" {
		canDrive = false
	}
	s.CanDrive = &canDrive
}

// AllSymptoms joins the collected symptom strings for retrieval and rule
// matching.
func (s *Session) AllSymptoms() string {
	out := ""
	for i, sym := range s.CollectedSymptoms {
		if i > 0 {
			out += " "
		}
		out += sym
	}
	return out
}

// Clone returns a deep copy so that store readers and writers never share
// mutable slices or maps.
func (s *Session) Clone() *Session {
	copied := *s
	copied.CollectedSymptoms = append([]string(nil), s.CollectedSymptoms...)
	copied.ConversationHistory = append([]Turn(nil), s.ConversationHistory...)
	copied.LastQuestions = append([]string(nil), s.LastQuestions...)
	copied.SpecSources = append([]SpecSource(nil), s.SpecSources...)
	if s.CanDrive != nil {
		v := *s.CanDrive
		copied.CanDrive = &v
	}
	if s.BookingData != nil {
		copied.BookingData = make(map[string]string, len(s.BookingData))
		for k, v := range s.BookingData {
			copied.BookingData[k] = v
		}
	}
	return &copied
}
