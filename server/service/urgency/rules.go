package urgency

import (
	"regexp"
	"strings"
)

// MatchMode decides how a rule's terms combine.
type MatchMode string

const (
	MatchAny MatchMode = "any"
	MatchAll MatchMode = "all"
)

// Rule is a keyword/regex urgency rule. Terms are matched by containment,
// Patterns by regexp search; the two lists are combined per Mode.
type Rule struct {
	Terms    []string
	Patterns []*regexp.Regexp
	Mode     MatchMode
	Reason   string
}

func (r *Rule) matches(text string) bool {
	var results []bool
	for _, term := range r.Terms {
		results = append(results, strings.Contains(text, term))
	}
	for _, p := range r.Patterns {
		results = append(results, p.MatchString(text))
	}
	if len(results) == 0 {
		return false
	}
	if r.Mode == MatchAny {
		for _, ok := range results {
			if ok {
				return true
			}
		}
		return false
	}
	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return true
}

// Rule tiers, evaluated in severity order. The reasons are shown to the
// user verbatim, so they carry concrete instructions.

var criticalRules = []Rule{
	{
		// Polite and conjugated negatives (効きません, 効かず) must match
		// alongside the plain forms.
		Patterns: []*regexp.Regexp{regexp.MustCompile(`ブレーキ.{0,10}(効かない|効きません|効かなく|効かず|効きが悪い|効きが悪く|止まらない|止まりません|止まれない|抜け)`)},
		Mode:     MatchAny,
		Reason:   "ブレーキの不具合は走行安全に直結します。直ちに運転を中止してください。",
	},
	{
		Terms:  []string{"ブレーキ", "故障"},
		Mode:   MatchAll,
		Reason: "ブレーキの故障は非常に危険です。直ちに運転を中止してください。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(煙|白煙|黒煙)`)},
		Mode:     MatchAny,
		Reason:   "車両から煙が出ています。火災の危険があるため、直ちに安全な場所に停車してください。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(発火|火|燃え)`)},
		Mode:     MatchAny,
		Reason:   "火災の危険があります。直ちに車両から離れ、119番に通報してください。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`オイル.{0,5}漏`)},
		Mode:     MatchAny,
		Reason:   "オイル漏れはエンジン焼き付きや火災の原因になります。直ちに点検が必要です。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(ステアリング|ハンドル).{0,10}(効かない|動かない|重い|ロック)`)},
		Mode:     MatchAny,
		Reason:   "ステアリング系統の異常は走行不能や事故の原因になります。直ちに運転を中止してください。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(冷却水|クーラント).{0,10}(漏|減|なくな)`)},
		Mode:     MatchAny,
		Reason:   "冷却水の不足はエンジンオーバーヒートの原因になります。直ちに停車してください。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(オーバーヒート|過熱|水温.{0,5}(高|異常|赤))`)},
		Mode:     MatchAny,
		Reason:   "エンジンのオーバーヒートです。直ちに安全な場所に停車し、エンジンを停止してください。",
	},
}

var highRules = []Rule{
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`警告(灯|ランプ|マーク)`)},
		Mode:     MatchAny,
		Reason:   "警告灯が点灯しています。早めにディーラーまたは整備工場で点検してください。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(エンジン|チェックエンジン).{0,10}(ランプ|灯|点灯|光)`)},
		Mode:     MatchAny,
		Reason:   "エンジン警告灯の点灯は、排気系統やセンサーの異常の可能性があります。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(異音|ガタガタ|キーキー|ゴロゴロ|カタカタ|キュルキュル)`)},
		Mode:     MatchAny,
		Reason:   "異音は部品の摩耗や故障のサインです。早めの点検をお勧めします。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(振動|ブルブル|ガクガク)`)},
		Mode:     MatchAny,
		Reason:   "走行中の異常な振動は、足回りやエンジンマウントの問題の可能性があります。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(焦げ|臭|匂い|におい).{0,10}(臭|ゴム|オイル|ガソリン)`)},
		Mode:     MatchAny,
		Reason:   "異臭は部品の過熱やオイル漏れの可能性があります。早めの点検が必要です。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(タイヤ|パンク).{0,10}(空気|減|漏|ぺちゃんこ)`)},
		Mode:     MatchAny,
		Reason:   "タイヤの空気圧異常はバーストの危険があります。速やかに確認してください。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(ABS|エアバッグ|SRS).{0,10}(灯|ランプ|点灯|光)`)},
		Mode:     MatchAny,
		Reason:   "安全装置の警告灯です。万一の際に正常動作しない可能性があります。",
	},
}

var mediumRules = []Rule{
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(燃費|ガソリン).{0,10}(悪|減|食)`)},
		Mode:     MatchAny,
		Reason:   "燃費の悪化はエンジンや点火系統の劣化の可能性があります。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(エアコン|冷房|暖房).{0,10}(効かない|弱|出ない)`)},
		Mode:     MatchAny,
		Reason:   "エアコンの不具合です。ガス補充やコンプレッサーの点検が必要かもしれません。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(バッテリー|始動).{0,10}(弱|上が|かから)`)},
		Mode:     MatchAny,
		Reason:   "バッテリーの劣化やオルタネーターの不具合の可能性があります。",
	},
	{
		Patterns: []*regexp.Regexp{regexp.MustCompile(`(ワイパー|ウォッシャー).{0,10}(動かない|出ない)`)},
		Mode:     MatchAny,
		Reason:   "視界確保に関わる部品の不具合です。雨天時の安全に影響します。",
	},
}

// collectReasons returns the reasons of all matching rules in a tier,
// order-preserving and de-duplicated.
func collectReasons(rules []Rule, text, lower string) []string {
	var reasons []string
	seen := make(map[string]bool)
	for i := range rules {
		rule := &rules[i]
		if !rule.matches(text) && !rule.matches(lower) {
			continue
		}
		if seen[rule.Reason] {
			continue
		}
		seen[rule.Reason] = true
		reasons = append(reasons, rule.Reason)
	}
	return reasons
}

// CheckKeywords runs the rule tier against a symptom text. It returns nil
// when no rule at any tier matches, which lets the caller fall through to
// the model tier.
func CheckKeywords(symptom string) *Assessment {
	if symptom == "" {
		return nil
	}
	lower := strings.ToLower(symptom)

	if reasons := collectReasons(criticalRules, symptom, lower); len(reasons) > 0 {
		return &Assessment{
			Level:          LevelCritical,
			RequiresVisit:  true,
			CanDrive:       false,
			VisitUrgency:   "immediate",
			Reasons:        reasons,
			Recommendation: "直ちに運転を中止し、安全な場所に停車してください。ロードサービスまたはディーラーに連絡してください。",
			KeywordMatched: true,
		}
	}

	if reasons := collectReasons(highRules, symptom, lower); len(reasons) > 0 {
		return &Assessment{
			Level:          LevelHigh,
			RequiresVisit:  true,
			CanDrive:       true,
			VisitUrgency:   "today",
			Reasons:        reasons,
			Recommendation: "できるだけ早くディーラーまたは整備工場で点検を受けてください。",
			KeywordMatched: true,
		}
	}

	if reasons := collectReasons(mediumRules, symptom, lower); len(reasons) > 0 {
		return &Assessment{
			Level:          LevelMedium,
			RequiresVisit:  false,
			CanDrive:       true,
			VisitUrgency:   "this_week",
			Reasons:        reasons,
			Recommendation: "お時間のあるときにディーラーまたは整備工場で点検を受けることをお勧めします。",
			KeywordMatched: true,
		}
	}

	return nil
}
