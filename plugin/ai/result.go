package ai

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// DiagnosticAction enumerates the actions the model may take on a turn.
type DiagnosticAction string

const (
	ActionAskQuestion   DiagnosticAction = "ask_question"
	ActionClarifyTerm   DiagnosticAction = "clarify_term"
	ActionProvideAnswer DiagnosticAction = "provide_answer"
	ActionEscalate      DiagnosticAction = "escalate"
	ActionSpecAnswer    DiagnosticAction = "spec_answer"
)

// DiagnosticResult is the decoded diagnostic-turn output.
type DiagnosticResult struct {
	Action             DiagnosticAction `json:"action"`
	Message            string           `json:"message"`
	UrgencyFlag        string           `json:"urgency_flag"`
	Reasoning          string           `json:"reasoning"`
	TermToClarify      *string          `json:"term_to_clarify"`
	Choices            []string         `json:"choices"`
	CanDrive           *bool            `json:"can_drive"`
	ConfidenceToAnswer float64          `json:"confidence_to_answer"`
	RewrittenQuery     string           `json:"rewritten_query"`
	QuestionTopic      string           `json:"question_topic"`
	ManualCoverage     string           `json:"manual_coverage"`
	VisitUrgency       *string          `json:"visit_urgency"`
}

var validDiagnosticActions = map[DiagnosticAction]bool{
	ActionAskQuestion:   true,
	ActionClarifyTerm:   true,
	ActionProvideAnswer: true,
	ActionEscalate:      true,
	ActionSpecAnswer:    true,
}

var validUrgencyFlags = map[string]bool{
	"none": true, "low": true, "medium": true, "high": true, "critical": true,
}

var validManualCoverage = map[string]bool{
	"covered": true, "partially_covered": true, "not_covered": true,
}

var validVisitUrgency = map[string]bool{
	"immediate": true, "today": true, "this_week": true, "when_convenient": true,
}

// DecodeDiagnosticResult parses and validates a diagnostic-turn payload.
func DecodeDiagnosticResult(raw string) (*DiagnosticResult, error) {
	var result DiagnosticResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode diagnostic result")
	}
	if !validDiagnosticActions[result.Action] {
		return nil, errors.Errorf("unrecognized diagnostic action: %q", result.Action)
	}
	if result.Message == "" {
		return nil, errors.New("diagnostic result has empty message")
	}
	if !validUrgencyFlags[result.UrgencyFlag] {
		return nil, errors.Errorf("unrecognized urgency flag: %q", result.UrgencyFlag)
	}
	if !validManualCoverage[result.ManualCoverage] {
		return nil, errors.Errorf("unrecognized manual coverage: %q", result.ManualCoverage)
	}
	if result.VisitUrgency != nil && !validVisitUrgency[*result.VisitUrgency] {
		return nil, errors.Errorf("unrecognized visit urgency: %q", *result.VisitUrgency)
	}
	if result.ConfidenceToAnswer < 0 || result.ConfidenceToAnswer > 1 {
		return nil, errors.Errorf("confidence out of range: %v", result.ConfidenceToAnswer)
	}
	return &result, nil
}

// UrgencyResult is the decoded structured urgency assessment.
type UrgencyResult struct {
	Level          string   `json:"level"`
	CanDrive       bool     `json:"can_drive"`
	Reasons        []string `json:"reasons"`
	Recommendation string   `json:"recommendation"`
	VisitUrgency   string   `json:"visit_urgency"`
}

// DecodeUrgencyResult parses and validates an urgency assessment payload.
func DecodeUrgencyResult(raw string) (*UrgencyResult, error) {
	var result UrgencyResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode urgency result")
	}
	switch result.Level {
	case "low", "medium", "high", "critical":
	default:
		return nil, errors.Errorf("unrecognized urgency level: %q", result.Level)
	}
	if result.VisitUrgency != "" && !validVisitUrgency[result.VisitUrgency] {
		return nil, errors.Errorf("unrecognized visit urgency: %q", result.VisitUrgency)
	}
	return &result, nil
}

// SpecClassificationResult is the decoded specification-behavior verdict.
type SpecClassificationResult struct {
	IsSpecBehavior  bool   `json:"is_spec_behavior"`
	Confidence      string `json:"confidence"`
	Explanation     string `json:"explanation"`
	ManualReference string `json:"manual_reference"`
	Reasoning       string `json:"reasoning"`
}

// DecodeSpecClassificationResult parses and validates a spec-classification payload.
func DecodeSpecClassificationResult(raw string) (*SpecClassificationResult, error) {
	var result SpecClassificationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode spec classification")
	}
	switch result.Confidence {
	case "high", "medium", "low":
	default:
		return nil, errors.Errorf("unrecognized confidence: %q", result.Confidence)
	}
	return &result, nil
}
