package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetUrgency_CriticalForcesNotDrivable(t *testing.T) {
	s := &Session{}

	s.SetUrgency("high", true)
	require.NotNil(t, s.CanDrive)
	assert.True(t, *s.CanDrive)

	s.SetUrgency("critical", true)
	require.NotNil(t, s.CanDrive)
	assert.False(t, *s.CanDrive, "critical must never be drivable")
}

func TestRememberQuestion_WindowIsBounded(t *testing.T) {
	s := &Session{}
	for i := 0; i < MaxRecentQuestions+5; i++ {
		s.RememberQuestion(fmt.Sprintf("質問その%d", i))
	}

	assert.Len(t, s.LastQuestions, MaxRecentQuestions)
	// oldest entries aged out
	assert.Equal(t, fmt.Sprintf("質問その%d", 5), s.LastQuestions[0])
	assert.Equal(t, fmt.Sprintf("質問その%d", MaxRecentQuestions+4), s.LastQuestions[MaxRecentQuestions-1])
}

func TestAppendUserTurn(t *testing.T) {
	s := &Session{}
	s.AppendUserTurn("エンジンがかかりません")
	s.AppendAssistantTurn("いつから症状が出ていますか？")
	s.AppendUserTurn("今朝からです")

	assert.Equal(t, []string{"エンジンがかかりません", "今朝からです"}, s.CollectedSymptoms)
	require.Len(t, s.ConversationHistory, 3)
	assert.Equal(t, "user", s.ConversationHistory[0].Role)
	assert.Equal(t, "assistant", s.ConversationHistory[1].Role)
	assert.Equal(t, "エンジンがかかりません 今朝からです", s.AllSymptoms())
}

func TestClone_DeepCopies(t *testing.T) {
	canDrive := true
	s := &Session{
		ID:                  "s1",
		CollectedSymptoms:   []string{"異音"},
		ConversationHistory: []Turn{{Role: "user", Content: "異音"}},
		LastQuestions:       []string{"いつからですか？"},
		SpecSources:         []SpecSource{{Content: "manual", Page: 3}},
		CanDrive:            &canDrive,
		BookingData:         map[string]string{"name": "山田"},
	}

	c := s.Clone()
	c.CollectedSymptoms[0] = "x"
	c.ConversationHistory[0].Content = "x"
	c.LastQuestions[0] = "x"
	c.SpecSources[0].Content = "x"
	*c.CanDrive = false
	c.BookingData["name"] = "x"

	assert.Equal(t, "異音", s.CollectedSymptoms[0])
	assert.Equal(t, "異音", s.ConversationHistory[0].Content)
	assert.Equal(t, "いつからですか？", s.LastQuestions[0])
	assert.Equal(t, "manual", s.SpecSources[0].Content)
	assert.True(t, *s.CanDrive)
	assert.Equal(t, "山田", s.BookingData["name"])
}
