package urgency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckKeywords_Critical(t *testing.T) {
	tests := []struct {
		name    string
		symptom string
	}{
		{"brake failure", "ブレーキが効きません"},
		{"brake failure plain", "ブレーキが効かない"},
		{"brake failure conjugated", "ブレーキが効かず止まるのに時間がかかります"},
		{"brake fading", "最近ブレーキの効きが悪い気がします"},
		{"brake fading conjugated", "ブレーキの効きが悪くなってきました"},
		{"brake no stop polite", "ブレーキを踏んでも止まりません"},
		{"smoke", "ボンネットから白煙が出ています"},
		{"oil leak", "駐車場にオイルが漏れていました"},
		{"steering lock", "ハンドルが急に重い"},
		{"overheat", "水温計が赤いところまで上がっています"},
		{"coolant loss", "冷却水が減っています"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckKeywords(tt.symptom)
			require.NotNil(t, result)
			assert.Equal(t, LevelCritical, result.Level)
			assert.False(t, result.CanDrive)
			assert.True(t, result.RequiresVisit)
			assert.Equal(t, "immediate", result.VisitUrgency)
			assert.True(t, result.KeywordMatched)
			assert.NotEmpty(t, result.Reasons)
		})
	}
}

func TestCheckKeywords_High(t *testing.T) {
	tests := []struct {
		name    string
		symptom string
	}{
		{"warning lamp", "メーターの警告灯が点きました"},
		{"engine lamp", "エンジンのランプが点灯しています"},
		{"strange noise", "走ると足回りからカタカタと異音がします"},
		{"vibration", "高速でハンドルがブルブル振動します"},
		{"abs lamp", "ABSのランプが光っています"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CheckKeywords(tt.symptom)
			require.NotNil(t, result)
			assert.Equal(t, LevelHigh, result.Level)
			assert.True(t, result.CanDrive)
			assert.True(t, result.RequiresVisit)
			assert.Equal(t, "today", result.VisitUrgency)
		})
	}
}

func TestCheckKeywords_Medium(t *testing.T) {
	result := CheckKeywords("最近燃費が悪くなった気がします")
	require.NotNil(t, result)
	assert.Equal(t, LevelMedium, result.Level)
	assert.True(t, result.CanDrive)
	assert.False(t, result.RequiresVisit)
	assert.Equal(t, "this_week", result.VisitUrgency)
}

func TestCheckKeywords_NoMatch(t *testing.T) {
	assert.Nil(t, CheckKeywords(""))
	assert.Nil(t, CheckKeywords("シートの位置を変えたいです"))
}

func TestCheckKeywords_SeverityOrder(t *testing.T) {
	// Both a critical rule (smoke) and a high rule (noise) match; the
	// critical tier wins.
	result := CheckKeywords("異音がして、マフラーから黒煙も出ています")
	require.NotNil(t, result)
	assert.Equal(t, LevelCritical, result.Level)
}

func TestCheckKeywords_ReasonsDeduplicated(t *testing.T) {
	// Two critical rules match: the brake pattern and the brake+故障 pair.
	result := CheckKeywords("ブレーキが効かない。完全に故障だと思います。")
	require.NotNil(t, result)
	require.GreaterOrEqual(t, len(result.Reasons), 2)

	seen := map[string]bool{}
	for _, r := range result.Reasons {
		assert.False(t, seen[r], "duplicate reason %q", r)
		seen[r] = true
	}
}

func TestRuleMatchModes(t *testing.T) {
	all := Rule{Terms: []string{"ブレーキ", "故障"}, Mode: MatchAll}
	assert.True(t, all.matches("ブレーキが故障した"))
	assert.False(t, all.matches("ブレーキの調子が悪い"))

	any := Rule{Terms: []string{"煙", "火"}, Mode: MatchAny}
	assert.True(t, any.matches("煙が見える"))
	assert.False(t, any.matches("何ともない"))

	empty := Rule{Mode: MatchAny}
	assert.False(t, empty.matches("テキスト"))
}
