package urgency

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/autosense/plugin/ai"
	"github.com/hrygo/autosense/server/service/retrieval"
)

var testVehicle = Vehicle{ID: "toyota-aqua-2021", Make: "トヨタ", Model: "アクア", Year: 2021}

func TestAssess_CriticalRuleSkipsModel(t *testing.T) {
	llm := ai.NewMockCompletionService()
	assessor := NewAssessor(llm, retrieval.NewMockService())

	result := assessor.Assess(context.Background(), "ブレーキが効きません", testVehicle)

	assert.Equal(t, LevelCritical, result.Level)
	assert.False(t, result.CanDrive)
	assert.Equal(t, 0, llm.CallCount(), "critical rule verdict must not consult the model")
}

func TestAssess_HighRuleSkipsModel(t *testing.T) {
	llm := ai.NewMockCompletionService()
	assessor := NewAssessor(llm, retrieval.NewMockService())

	result := assessor.Assess(context.Background(), "警告灯が点灯しています", testVehicle)

	assert.Equal(t, LevelHigh, result.Level)
	assert.Equal(t, 0, llm.CallCount())
}

func TestAssess_ModelRefinesBelowHigh(t *testing.T) {
	llm := ai.NewMockCompletionService()
	llm.Enqueue(`{"level":"high","can_drive":true,"reasons":["モデル判定の理由"],"recommendation":"早めの点検をお勧めします。","visit_urgency":"today"}`)
	assessor := NewAssessor(llm, retrieval.NewMockService())

	// medium rule verdict, model says high: the more severe level wins
	result := assessor.Assess(context.Background(), "最近燃費が悪くなりました", testVehicle)

	assert.Equal(t, LevelHigh, result.Level)
	assert.Equal(t, 1, llm.CallCount())
	// winner's reasons first, then the rule tier's
	require.GreaterOrEqual(t, len(result.Reasons), 2)
	assert.Equal(t, "モデル判定の理由", result.Reasons[0])
}

func TestAssess_RuleWinsOverWeakerModel(t *testing.T) {
	llm := ai.NewMockCompletionService()
	llm.Enqueue(`{"level":"low","can_drive":true,"reasons":["問題ありません"],"recommendation":"","visit_urgency":"when_convenient"}`)
	assessor := NewAssessor(llm, retrieval.NewMockService())

	result := assessor.Assess(context.Background(), "最近燃費が悪くなりました", testVehicle)

	assert.Equal(t, LevelMedium, result.Level)
	assert.Equal(t, "問題ありません", result.Reasons[len(result.Reasons)-1])
}

func TestAssess_ModelFailureFallsBackToRuleVerdict(t *testing.T) {
	llm := ai.NewMockCompletionService()
	llm.EnqueueError(errors.New("model down"))
	assessor := NewAssessor(llm, retrieval.NewMockService())

	result := assessor.Assess(context.Background(), "最近燃費が悪くなりました", testVehicle)

	assert.Equal(t, LevelMedium, result.Level)
	assert.True(t, result.KeywordMatched)
}

func TestAssess_NoVerdictAnywhereUsesDefault(t *testing.T) {
	llm := ai.NewMockCompletionService()
	llm.EnqueueError(errors.New("model down"))
	assessor := NewAssessor(llm, retrieval.NewMockService())

	result := assessor.Assess(context.Background(), "シートの座り心地が気になります", testVehicle)

	assert.Equal(t, LevelMedium, result.Level)
	assert.True(t, result.CanDrive)
	assert.NotEmpty(t, result.Reasons)
	assert.NotEmpty(t, result.Recommendation)
}

func TestAssess_UnconfiguredModelDegradesToRules(t *testing.T) {
	llm := ai.NewMockCompletionService()
	llm.Configured = false
	assessor := NewAssessor(llm, nil)

	result := assessor.Assess(context.Background(), "最近燃費が悪くなりました", testVehicle)

	assert.Equal(t, LevelMedium, result.Level)
	assert.Equal(t, 0, llm.CallCount())
}

func TestAssess_CriticalModelVerdictForcesNotDrivable(t *testing.T) {
	llm := ai.NewMockCompletionService()
	llm.Enqueue(`{"level":"critical","can_drive":true,"reasons":["危険な状態"],"recommendation":"直ちに停車してください。","visit_urgency":"immediate"}`)
	assessor := NewAssessor(llm, retrieval.NewMockService())

	result := assessor.Assess(context.Background(), "なんだか様子がおかしいです", testVehicle)

	assert.Equal(t, LevelCritical, result.Level)
	assert.False(t, result.CanDrive, "critical always means not drivable")
}

func TestMergeReasons(t *testing.T) {
	merged := mergeReasons([]string{"a", "b"}, []string{"b", "c", ""})
	assert.Equal(t, []string{"a", "b", "c"}, merged)
}
