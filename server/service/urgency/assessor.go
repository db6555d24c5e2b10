// Package urgency implements the hybrid keyword+model urgency classifier.
// The rule tier is cheap and safety-authoritative; the model tier refines
// verdicts below high severity. This package never lets an error escape:
// every failure degrades to the rule verdict or a fixed neutral assessment.
package urgency

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hrygo/autosense/plugin/ai"
	"github.com/hrygo/autosense/server/service/retrieval"
)

// Level is the ordered urgency severity.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

var levelRank = map[Level]int{
	LevelLow:      0,
	LevelMedium:   1,
	LevelHigh:     2,
	LevelCritical: 3,
}

// Rank returns the severity order of the level (unknown levels rank lowest).
func (l Level) Rank() int {
	return levelRank[l]
}

// Assessment is the urgency verdict for a symptom.
type Assessment struct {
	Level          Level    `json:"level"`
	RequiresVisit  bool     `json:"requires_visit"`
	CanDrive       bool     `json:"can_drive"`
	VisitUrgency   string   `json:"visit_urgency"`
	Reasons        []string `json:"reasons"`
	Recommendation string   `json:"recommendation"`
	KeywordMatched bool     `json:"keyword_matched"`
}

// Vehicle identifies the vehicle under diagnosis for prompt context.
type Vehicle struct {
	ID    string
	Make  string
	Model string
	Year  int
}

const assessmentPromptTemplate = `あなたは自動車整備の専門家です。以下の車両と症状について緊急度を評価してください。

車両: %s %s (%s年式)
症状: %s

マニュアルの警告情報:
%s

安全を最優先に、走行可否と来場の緊急度を判定してください。`

const systemPrompt = "あなたは車両トラブル問診アシスタントです。安全を最優先に、正確で簡潔な日本語で回答してください。"

// Assessor combines the rule tier with a model tier.
type Assessor struct {
	llm       ai.CompletionService
	retrieval retrieval.Service
}

// NewAssessor creates an assessor. Either dependency may be nil; the
// assessor then degrades to rule-only behavior.
func NewAssessor(llm ai.CompletionService, retrievalSvc retrieval.Service) *Assessor {
	return &Assessor{
		llm:       llm,
		retrieval: retrievalSvc,
	}
}

// Assess produces the urgency verdict for a symptom. Critical and high
// rule verdicts return immediately without consulting the model, for
// latency and fail-safety. When both tiers produce a verdict the more
// severe level wins and the reason lists merge, winner first.
func (a *Assessor) Assess(ctx context.Context, symptom string, vehicle Vehicle) Assessment {
	keywordResult := CheckKeywords(symptom)
	if keywordResult != nil && keywordResult.Level.Rank() >= LevelHigh.Rank() {
		return *keywordResult
	}

	modelResult := a.assessWithModel(ctx, symptom, vehicle)
	if modelResult == nil {
		if keywordResult != nil {
			return *keywordResult
		}
		return defaultAssessment()
	}

	if keywordResult == nil {
		return *modelResult
	}

	if keywordResult.Level.Rank() >= modelResult.Level.Rank() {
		keywordResult.Reasons = mergeReasons(keywordResult.Reasons, modelResult.Reasons)
		return *keywordResult
	}
	modelResult.Reasons = mergeReasons(modelResult.Reasons, keywordResult.Reasons)
	return *modelResult
}

// assessWithModel runs the model tier. Returns nil on any failure.
func (a *Assessor) assessWithModel(ctx context.Context, symptom string, vehicle Vehicle) *Assessment {
	if a.llm == nil || !a.llm.IsConfigured() {
		return nil
	}

	warningsText := "関連する警告情報はありません"
	if a.retrieval != nil {
		warnings, err := a.retrieval.SearchWarnings(ctx, symptom, vehicle.ID, 3)
		if err != nil {
			slog.Warn("warning snippet lookup failed", "error", err)
		} else if len(warnings) > 0 {
			var parts []string
			for _, w := range warnings {
				parts = append(parts, truncate(w.Content, 300))
			}
			warningsText = strings.Join(parts, "\n")
		}
	}

	prompt := fmt.Sprintf(assessmentPromptTemplate,
		orUnknown(vehicle.Make), orUnknown(vehicle.Model), yearOrUnknown(vehicle.Year),
		symptom, warningsText)

	raw, err := a.llm.Complete(ctx, []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}, 0.1, ai.UrgencySchema)
	if err != nil {
		slog.Warn("urgency model call failed", "error", err)
		return nil
	}

	result, err := ai.DecodeUrgencyResult(raw)
	if err != nil {
		slog.Warn("urgency result decode failed", "error", err)
		return nil
	}

	level := Level(result.Level)
	canDrive := result.CanDrive
	if level == LevelCritical {
		canDrive = false
	}
	visitUrgency := result.VisitUrgency
	if visitUrgency == "" {
		visitUrgency = "this_week"
	}
	return &Assessment{
		Level:          level,
		RequiresVisit:  level.Rank() >= LevelHigh.Rank(),
		CanDrive:       canDrive,
		VisitUrgency:   visitUrgency,
		Reasons:        result.Reasons,
		Recommendation: result.Recommendation,
	}
}

func defaultAssessment() Assessment {
	return Assessment{
		Level:          LevelMedium,
		RequiresVisit:  false,
		CanDrive:       true,
		VisitUrgency:   "this_week",
		Reasons:        []string{"自動判定ができませんでした。症状が続く場合はディーラーにご相談ください。"},
		Recommendation: "症状が続く場合は、お近くのディーラーにご相談ください。",
	}
}

// mergeReasons joins two reason lists, order-preserving, de-duplicated.
func mergeReasons(first, second []string) []string {
	var merged []string
	seen := make(map[string]bool)
	for _, r := range append(append([]string{}, first...), second...) {
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		merged = append(merged, r)
	}
	return merged
}

func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

func orUnknown(s string) string {
	if s == "" {
		return "不明"
	}
	return s
}

func yearOrUnknown(year int) string {
	if year == 0 {
		return "不明"
	}
	return fmt.Sprintf("%d", year)
}
