package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snip(score float64, ct ContentType) Snippet {
	return Snippet{Content: "text", Page: 1, ContentType: ct, Score: score}
}

func TestEvaluateSpecGate_Pass(t *testing.T) {
	snippets := []Snippet{
		snip(0.9, ContentTypeSpecification),
		snip(0.8, ContentTypeSpecification),
		snip(0.6, ContentTypeProcedure),
	}

	decision := EvaluateSpecGate(snippets, "")

	require.True(t, decision.RouteToSpec)
	assert.Equal(t, GateReasonPass, decision.Reason)
	assert.Len(t, decision.SpecSources, 3)
}

func TestEvaluateSpecGate_RuleUrgencyBlocks(t *testing.T) {
	snippets := []Snippet{
		snip(0.9, ContentTypeSpecification),
		snip(0.8, ContentTypeSpecification),
	}

	for _, level := range []string{"high", "critical"} {
		decision := EvaluateSpecGate(snippets, level)
		assert.False(t, decision.RouteToSpec, "level %s must block", level)
		assert.Equal(t, GateReasonUrgency, decision.Reason)
	}

	// low and medium do not block
	for _, level := range []string{"", "low", "medium"} {
		decision := EvaluateSpecGate(snippets, level)
		assert.True(t, decision.RouteToSpec, "level %q must not block", level)
	}
}

func TestEvaluateSpecGate_NoResults(t *testing.T) {
	decision := EvaluateSpecGate(nil, "")
	assert.False(t, decision.RouteToSpec)
	assert.Equal(t, GateReasonNoResults, decision.Reason)
}

func TestEvaluateSpecGate_AnyWarningSnippetBlocks(t *testing.T) {
	snippets := []Snippet{
		snip(0.9, ContentTypeSpecification),
		snip(0.95, ContentTypeSpecification),
		// low-score warning still blocks; the warning check runs over all
		// results, not only the high-score set
		{Content: "warn", Score: 0.1, ContentType: ContentTypeWarning, HasWarning: true},
	}

	decision := EvaluateSpecGate(snippets, "")
	assert.False(t, decision.RouteToSpec)
	assert.Equal(t, GateReasonWarning, decision.Reason)
}

func TestEvaluateSpecGate_NoHighScore(t *testing.T) {
	snippets := []Snippet{
		snip(0.49, ContentTypeSpecification),
		snip(0.3, ContentTypeSpecification),
	}

	decision := EvaluateSpecGate(snippets, "")
	assert.False(t, decision.RouteToSpec)
	assert.Equal(t, GateReasonNoHighScore, decision.Reason)
}

func TestEvaluateSpecGate_ThresholdIsInclusive(t *testing.T) {
	snippets := []Snippet{
		snip(0.50, ContentTypeSpecification),
		snip(0.50, ContentTypeSpecification),
	}

	decision := EvaluateSpecGate(snippets, "")
	assert.True(t, decision.RouteToSpec)
}

func TestEvaluateSpecGate_DangerOutweighs(t *testing.T) {
	snippets := []Snippet{
		snip(0.9, ContentTypeTroubleshooting),
		snip(0.8, ContentTypeTroubleshooting),
		snip(0.7, ContentTypeSpecification),
	}

	decision := EvaluateSpecGate(snippets, "")
	assert.False(t, decision.RouteToSpec)
	assert.Equal(t, GateReasonDangerOutweigh, decision.Reason)
}

func TestEvaluateSpecGate_SingleStrongSnippetRelaxesCount(t *testing.T) {
	// one spec snippet below the strong threshold: weak evidence
	decision := EvaluateSpecGate([]Snippet{snip(0.65, ContentTypeSpecification)}, "")
	assert.False(t, decision.RouteToSpec)
	assert.Equal(t, GateReasonWeakEvidence, decision.Reason)

	// one spec snippet at 0.75: strong enough alone
	decision = EvaluateSpecGate([]Snippet{snip(0.75, ContentTypeSpecification)}, "")
	assert.True(t, decision.RouteToSpec)
	require.Len(t, decision.SpecSources, 1)
	assert.InDelta(t, 0.75, decision.SpecSources[0].Score, 1e-9)
}

func TestEvaluateSpecGate_LowRatio(t *testing.T) {
	// 2 spec out of 5 high-score: ratio 0.4, below 0.5
	snippets := []Snippet{
		snip(0.9, ContentTypeSpecification),
		snip(0.8, ContentTypeSpecification),
		snip(0.7, ContentTypeTroubleshooting),
		// unknown content types count toward the high-score set but
		// neither side of the spec/danger split
		snip(0.6, ContentType("unknown")),
		snip(0.55, ContentType("unknown")),
	}

	decision := EvaluateSpecGate(snippets, "")
	assert.False(t, decision.RouteToSpec)
	assert.Equal(t, GateReasonLowRatio, decision.Reason)
	// ratio 0.4 still qualifies for the softer hint
	assert.True(t, decision.Hint)
}

func TestEvaluateSpecHint(t *testing.T) {
	passing := []Snippet{
		snip(0.9, ContentTypeSpecification),
		snip(0.8, ContentType("unknown")),
	}
	assert.True(t, EvaluateSpecHint(passing, ""))
	assert.False(t, EvaluateSpecHint(passing, "high"))
	assert.False(t, EvaluateSpecHint(nil, ""))

	withWarning := append([]Snippet{}, passing...)
	withWarning = append(withWarning, Snippet{Score: 0.2, HasWarning: true})
	assert.False(t, EvaluateSpecHint(withWarning, ""))

	// ratio below the hint floor
	lowRatio := []Snippet{
		snip(0.9, ContentTypeSpecification),
		snip(0.8, ContentType("unknown")),
		snip(0.7, ContentType("unknown")),
	}
	assert.False(t, EvaluateSpecHint(lowRatio, ""))
}

func TestSortSnippets_Deterministic(t *testing.T) {
	a := Snippet{Score: 0.8, Page: 10, Section: "b"}
	b := Snippet{Score: 0.8, Page: 10, Section: "a"}
	c := Snippet{Score: 0.8, Page: 2, Section: "z"}
	d := Snippet{Score: 0.9, Page: 50, Section: "y"}

	got := []Snippet{a, b, c, d}
	SortSnippets(got)

	assert.Equal(t, []Snippet{d, c, b, a}, got)
}
