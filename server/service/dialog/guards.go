package dialog

import (
	"regexp"
	"strings"
)

// Duplicate-question guard. Questions are compared after stripping
// punctuation and whitespace and case-folding; a candidate is a duplicate
// on exact match or when one side (at least 4 runes) is contained in the
// other, which catches rephrasings like "いつから症状が..." vs "いつから...".

var questionNoiseRe = regexp.MustCompile(`[？?。、！!.,\s　]+`)

func normalizeQuestion(text string) string {
	return strings.ToLower(questionNoiseRe.ReplaceAllString(text, ""))
}

const duplicateSubstringMinRunes = 4

func isDuplicateQuestion(message string, lastQuestions []string) bool {
	normNew := normalizeQuestion(message)
	if normNew == "" {
		return false
	}
	for _, prev := range lastQuestions {
		normPrev := normalizeQuestion(prev)
		if normPrev == "" {
			continue
		}
		if normNew == normPrev {
			return true
		}
		shorter, longer := normNew, normPrev
		if len([]rune(shorter)) > len([]rune(longer)) {
			shorter, longer = longer, shorter
		}
		if len([]rune(shorter)) >= duplicateSubstringMinRunes && strings.Contains(longer, shorter) {
			return true
		}
	}
	return false
}

// pickFallbackQuestion returns the first fallback question not yet asked,
// or "" when the bank is exhausted.
func pickFallbackQuestion(lastQuestions []string) string {
	for _, q := range fallbackQuestions {
		if !isDuplicateQuestion(q, lastQuestions) {
			return q
		}
	}
	return ""
}

// Topic-relevance guard. Questions about sensory topics the user never
// mentioned (a sound question when nothing about sounds was reported)
// read as random guessing, so they trigger one corrective retry.

var guardedTopics = map[string][]string{
	"音":  {"音", "鳴", "異音", "うるさい", "ノイズ", "静か", "カタカタ", "キーキー", "ゴロゴロ", "キュルキュル", "ガタガタ"},
	"振動": {"振動", "揺れ", "ブルブル", "ガクガク", "ガタガタ"},
	"臭い": {"臭", "匂", "におい", "ニオイ", "焦げ"},
	"煙":  {"煙", "白煙", "黒煙"},
}

// topicGuardViolation reports whether the declared question topic belongs
// to a guarded category whose keywords appear nowhere in the given text.
// Returns the guarded topic key on violation.
func topicGuardViolation(questionTopic, conversationText string) (string, bool) {
	if questionTopic == "" {
		return "", false
	}
	for key, keywords := range guardedTopics {
		if !topicMatches(questionTopic, key, keywords) {
			continue
		}
		for _, kw := range keywords {
			if strings.Contains(conversationText, kw) {
				return "", false
			}
		}
		return key, true
	}
	return "", false
}

func topicMatches(topic, key string, keywords []string) bool {
	if strings.Contains(topic, key) {
		return true
	}
	for _, kw := range keywords {
		if strings.Contains(topic, kw) {
			return true
		}
	}
	return false
}

// Stalling guard. A "question" that only announces a summary and asks
// nothing keeps the user waiting for no benefit.

var stallingRe = regexp.MustCompile(`(まとめ|整理|要約|確認ですが|お伺いした内容|ここまでの)`)

func isStallingMessage(message string) bool {
	if strings.Contains(message, "？") || strings.Contains(message, "?") {
		return false
	}
	return stallingRe.MatchString(message)
}

// appendTrailingChoices appends the fixed "don't know" / "free-form input"
// pair to a choice list, de-duplicated by value.
func appendTrailingChoices(choices []Choice) []Choice {
	seen := make(map[string]bool, len(choices))
	for _, c := range choices {
		seen[c.Value] = true
	}
	for _, c := range trailingChoices {
		if !seen[c.Value] {
			choices = append(choices, c)
			seen[c.Value] = true
		}
	}
	return choices
}
