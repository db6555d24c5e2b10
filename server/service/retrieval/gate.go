package retrieval

// The spec gate decides, once per free-text turn, whether retrieved manual
// snippets justify short-circuiting to a "documented normal behavior"
// explanation instead of running the full diagnostic loop. Every check is
// evaluated in order; the first failing check blocks the spec path.

// Gate thresholds. The relaxed single-snippet minimum applies when one
// spec-typed snippet alone scores at or above SpecGateStrongScore.
const (
	SpecGateHighScore   = 0.50 // membership threshold for the high-score set
	SpecGateStrongScore = 0.70 // single strong snippet relaxes the count floor
	SpecGateMinCount    = 2    // spec-typed snippets required without a strong one
	SpecGateMinRatio    = 0.50 // spec-typed share of the high-score set
	SpecHintMinRatio    = 0.40 // softer ratio for the non-blocking hint
)

// Gate block reasons.
const (
	GateReasonPass           = "spec_path"
	GateReasonUrgency        = "rule_urgency_high"
	GateReasonNoResults      = "no_results"
	GateReasonWarning        = "warning_snippet"
	GateReasonNoHighScore    = "no_high_score"
	GateReasonDangerOutweigh = "danger_outweighs_spec"
	GateReasonWeakEvidence   = "weak_spec_evidence"
	GateReasonLowRatio       = "low_spec_ratio"
)

// GateDecision is the outcome of evaluating the spec gate.
type GateDecision struct {
	RouteToSpec bool
	Hint        bool // non-blocking bias toward a specification-style answer
	Reason      string
	SpecSources []Snippet // qualifying spec-typed snippets, set on pass
}

func isSpecType(t ContentType) bool {
	switch t {
	case ContentTypeProcedure, ContentTypeSpecification, ContentTypeGeneral:
		return true
	}
	return false
}

func isDangerType(t ContentType) bool {
	switch t {
	case ContentTypeWarning, ContentTypeTroubleshooting:
		return true
	}
	return false
}

// EvaluateSpecGate runs the gate. ruleUrgencyLevel is the rule-tier urgency
// verdict ("" when no rule matched); it is computed before retrieval because
// it is cheaper and safety-authoritative.
func EvaluateSpecGate(snippets []Snippet, ruleUrgencyLevel string) GateDecision {
	if ruleUrgencyLevel == "high" || ruleUrgencyLevel == "critical" {
		return GateDecision{Reason: GateReasonUrgency}
	}
	if len(snippets) == 0 {
		return GateDecision{Reason: GateReasonNoResults}
	}
	for _, s := range snippets {
		if s.HasWarning {
			return GateDecision{Reason: GateReasonWarning}
		}
	}

	var highScore []Snippet
	for _, s := range snippets {
		if s.Score >= SpecGateHighScore {
			highScore = append(highScore, s)
		}
	}
	if len(highScore) == 0 {
		return GateDecision{Reason: GateReasonNoHighScore}
	}

	var specSnippets []Snippet
	dangerCount := 0
	for _, s := range highScore {
		switch {
		case isSpecType(s.ContentType):
			specSnippets = append(specSnippets, s)
		case isDangerType(s.ContentType):
			dangerCount++
		}
	}
	if dangerCount > len(specSnippets) {
		return GateDecision{Reason: GateReasonDangerOutweigh}
	}

	hasStrong := false
	for _, s := range specSnippets {
		if s.Score >= SpecGateStrongScore {
			hasStrong = true
			break
		}
	}
	if !hasStrong && len(specSnippets) < SpecGateMinCount {
		return GateDecision{Reason: GateReasonWeakEvidence}
	}

	ratio := float64(len(specSnippets)) / float64(len(highScore))
	if ratio < SpecGateMinRatio {
		hint := ratio >= SpecHintMinRatio
		return GateDecision{Hint: hint, Reason: GateReasonLowRatio}
	}

	return GateDecision{
		RouteToSpec: true,
		Reason:      GateReasonPass,
		SpecSources: specSnippets,
	}
}

// EvaluateSpecHint runs the softer variant of the gate: same ordered
// checks but a relaxed ratio and no minimum-count requirement. The result
// only biases the diagnostic loop's next prompt; it never forces the route.
func EvaluateSpecHint(snippets []Snippet, ruleUrgencyLevel string) bool {
	if ruleUrgencyLevel == "high" || ruleUrgencyLevel == "critical" {
		return false
	}
	if len(snippets) == 0 {
		return false
	}
	for _, s := range snippets {
		if s.HasWarning {
			return false
		}
	}

	highScoreCount := 0
	specCount := 0
	dangerCount := 0
	for _, s := range snippets {
		if s.Score < SpecGateHighScore {
			continue
		}
		highScoreCount++
		switch {
		case isSpecType(s.ContentType):
			specCount++
		case isDangerType(s.ContentType):
			dangerCount++
		}
	}
	if highScoreCount == 0 || dangerCount > specCount {
		return false
	}

	ratio := float64(specCount) / float64(highScoreCount)
	return ratio >= SpecHintMinRatio
}
