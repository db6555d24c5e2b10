package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDiagnosticResult(t *testing.T) {
	raw := `{
		"action": "ask_question",
		"message": "いつから症状が出ていますか？",
		"urgency_flag": "none",
		"reasoning": "情報不足",
		"choices": ["今日から", "一週間前から"],
		"confidence_to_answer": 0.4,
		"rewritten_query": "エンジン 始動不良",
		"question_topic": "発生時期",
		"manual_coverage": "partially_covered"
	}`

	result, err := DecodeDiagnosticResult(raw)
	require.NoError(t, err)
	assert.Equal(t, ActionAskQuestion, result.Action)
	assert.Len(t, result.Choices, 2)
	assert.Nil(t, result.CanDrive)
	assert.InDelta(t, 0.4, result.ConfidenceToAnswer, 1e-9)
}

func TestDecodeDiagnosticResult_Rejections(t *testing.T) {
	base := func(field, value string) string {
		m := map[string]string{
			"action":          `"provide_answer"`,
			"message":         `"回答です"`,
			"urgency_flag":    `"none"`,
			"manual_coverage": `"covered"`,
			"confidence":      `0.9`,
		}
		if field != "" {
			m[field] = value
		}
		return `{"action":` + m["action"] +
			`,"message":` + m["message"] +
			`,"urgency_flag":` + m["urgency_flag"] +
			`,"manual_coverage":` + m["manual_coverage"] +
			`,"confidence_to_answer":` + m["confidence"] + `}`
	}

	// the base payload itself is valid
	_, err := DecodeDiagnosticResult(base("", ""))
	require.NoError(t, err)

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"unknown action", "action", `"dance"`},
		{"empty message", "message", `""`},
		{"bad urgency flag", "urgency_flag", `"extreme"`},
		{"bad coverage", "manual_coverage", `"maybe"`},
		{"confidence above one", "confidence", `1.5`},
		{"confidence below zero", "confidence", `-0.1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDiagnosticResult(base(tt.field, tt.value))
			assert.Error(t, err)
		})
	}

	_, err = DecodeDiagnosticResult("not json")
	assert.Error(t, err)
}

func TestDecodeUrgencyResult(t *testing.T) {
	result, err := DecodeUrgencyResult(`{"level":"high","can_drive":true,"reasons":["r"],"recommendation":"点検してください","visit_urgency":"today"}`)
	require.NoError(t, err)
	assert.Equal(t, "high", result.Level)
	assert.True(t, result.CanDrive)

	_, err = DecodeUrgencyResult(`{"level":"catastrophic"}`)
	assert.Error(t, err)

	_, err = DecodeUrgencyResult(`{"level":"low","visit_urgency":"someday"}`)
	assert.Error(t, err)
}

func TestDecodeSpecClassificationResult(t *testing.T) {
	result, err := DecodeSpecClassificationResult(`{"is_spec_behavior":true,"confidence":"high","explanation":"仕様です","manual_reference":"p.42","reasoning":""}`)
	require.NoError(t, err)
	assert.True(t, result.IsSpecBehavior)
	assert.Equal(t, "high", result.Confidence)

	_, err = DecodeSpecClassificationResult(`{"is_spec_behavior":false,"confidence":"certain"}`)
	assert.Error(t, err)
}
