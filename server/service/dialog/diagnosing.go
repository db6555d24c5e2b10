package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/autosense/plugin/ai"
	"github.com/hrygo/autosense/server/service/retrieval"
	"github.com/hrygo/autosense/server/service/session"
	"github.com/hrygo/autosense/server/service/urgency"
)

const (
	// summaryCadence triggers a rolling summary every Nth diagnostic turn.
	summaryCadence = 3
	// narrowingConfidence triggers candidate narrowing early.
	narrowingConfidence = 0.70
	// narrowingTurn triggers candidate narrowing late.
	narrowingTurn = 4
	// maxSolutionRetries bounds the "try another solution" loop.
	maxSolutionRetries = 2
	// historyWindow is how many recent turns enter the prompt once the
	// rolling summary is active.
	historyWindow = 6
	// rewrittenQueryLimit caps the carried retrieval query.
	rewrittenQueryLimit = 50
)

// handleDiagnosing drives one turn of the iterative diagnostic loop.
func (e *Engine) handleDiagnosing(ctx context.Context, s *session.Session, req *Request) *Response {
	if req.Action == "resolved" {
		if req.ActionValue == "yes" {
			s.CurrentStep = session.StepDone
			return &Response{
				SessionID:   s.ID,
				CurrentStep: string(session.StepDone),
				Prompt:      Prompt{Type: PromptText, Message: msgResolvedDone},
			}
		}
		// Not resolved: retry with a different cause a bounded number of
		// times, then hand over to the urgency check.
		s.SolutionsTried++
		if s.SolutionsTried >= maxSolutionRetries {
			s.CurrentStep = session.StepUrgencyCheck
			return nil
		}
		return e.runDiagnosticTurn(ctx, s, "いいえ、解決していません。", instructionDifferentSolution)
	}

	input := strings.TrimSpace(req.Message)
	if input == "" {
		return &Response{
			SessionID:   s.ID,
			CurrentStep: string(session.StepDiagnosing),
			Prompt:      Prompt{Type: PromptText, Message: msgAskSymptomDetail},
		}
	}

	return e.runDiagnosticTurn(ctx, s, input, "")
}

func (e *Engine) runDiagnosticTurn(ctx context.Context, s *session.Session, input, extraInstruction string) *Response {
	// Record the input first so the prompt sees the complete exchange.
	s.AppendUserTurn(input)
	s.DiagnosticTurn++

	// Rule-tier urgency over everything collected so far. A critical
	// match escalates immediately, bypassing retrieval and the model.
	allSymptoms := s.AllSymptoms()
	if verdict := urgency.CheckKeywords(allSymptoms); verdict != nil && verdict.Level == urgency.LevelCritical {
		s.SetUrgency(string(urgency.LevelCritical), false)
		s.CurrentStep = session.StepReservation
		return nil
	}

	// Manual retrieval and the periodic summary have no data dependency,
	// so they run concurrently. Results merge deterministically: snippets
	// are re-sorted by a stable key, the summary lands in a single field.
	query := s.RewrittenQuery
	if query == "" {
		query = allSymptoms
	}
	var snippets []retrieval.Snippet
	var newSummary string
	wantSummary := s.DiagnosticTurn >= summaryCadence && s.DiagnosticTurn%summaryCadence == 0

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if e.retrieval == nil {
			return nil
		}
		results, err := e.retrieval.Search(gctx, query, s.VehicleID, 5)
		if err != nil {
			slog.Warn("diagnostic retrieval failed", "session_id", s.ID, "error", err)
			return nil
		}
		snippets = results
		return nil
	})
	if wantSummary {
		g.Go(func() error {
			summary, err := e.summarizeConversation(gctx, s)
			if err != nil {
				slog.Warn("conversation summarization failed", "session_id", s.ID, "error", err)
				return nil
			}
			newSummary = summary
			return nil
		})
	}
	_ = g.Wait()
	retrieval.SortSnippets(snippets)
	if newSummary != "" {
		s.ConversationSummary = newSummary
	}

	if e.llm == nil || !e.llm.IsConfigured() {
		return textResponse(s, msgLLMUnavailable)
	}

	// Candidate narrowing fires once, either on confidence or turn count.
	narrowing := false
	if !s.CandidatesShown && (s.LastConfidence >= narrowingConfidence || s.DiagnosticTurn >= narrowingTurn) {
		narrowing = true
		s.CandidatesShown = true
		s.CandidatesShownTurn = s.DiagnosticTurn
	}

	instructions := extraInstruction
	if s.SpecHint {
		instructions += instructionSpecHint
		s.SpecHint = false
	}
	if narrowing {
		instructions += instructionNarrowCandidates
	}
	if s.CandidatesShown && !narrowing && s.DiagnosticTurn > s.CandidatesShownTurn {
		instructions += instructionAfterCandidates
	}
	if s.DiagnosticTurn >= s.MaxDiagnosticTurns {
		instructions += instructionTurnBudget
	}

	prompt := e.buildDiagnosticPrompt(s, snippets, instructions)

	result := e.invokeDiagnostic(ctx, s, prompt, true)
	if result == nil {
		return e.fallbackQuestionResponse(s)
	}

	// Irrelevant-topic guard: one corrective retry, then accept whatever
	// comes back.
	if result.Action == ai.ActionAskQuestion {
		conversationText := allSymptoms + " " + historyText(s.ConversationHistory, 0)
		if topic, violated := topicGuardViolation(result.QuestionTopic, conversationText); violated {
			slog.Warn("irrelevant question topic, retrying once",
				"session_id", s.ID, "topic", result.QuestionTopic)
			if retry := e.invokeDiagnostic(ctx, s, prompt+fmt.Sprintf(instructionTopicRetry, topic), false); retry != nil {
				result = retry
			}
		}
	}

	// Stalling guard: a "question" that only announces a summary gets one
	// retry demanding an answer; a second failure downgrades to an answer.
	if result.Action == ai.ActionAskQuestion && isStallingMessage(result.Message) {
		slog.Warn("stalling message, retrying once", "session_id", s.ID)
		retry := e.invokeDiagnostic(ctx, s, prompt+instructionNoStalling, false)
		if retry != nil {
			result = retry
		}
		if result.Action == ai.ActionAskQuestion && isStallingMessage(result.Message) {
			result.Action = ai.ActionProvideAnswer
		}
	}

	s.LastConfidence = result.ConfidenceToAnswer
	s.RewrittenQuery = truncateRunes(result.RewrittenQuery, rewrittenQueryLimit)

	slog.Info("diagnostic turn",
		"session_id", s.ID,
		"turn", s.DiagnosticTurn,
		"action", result.Action,
		"urgency_flag", result.UrgencyFlag,
		"confidence", result.ConfidenceToAnswer,
		"reasoning", result.Reasoning)

	if e.maybeEscalate(s, result) {
		return nil
	}

	return e.respondForAction(s, result, narrowing, snippets)
}

// maybeEscalate routes high/critical model verdicts into the booking
// flow. It reports true after setting the reservation step, so the
// delegation loop dispatches the next handler silently.
func (e *Engine) maybeEscalate(s *session.Session, result *ai.DiagnosticResult) bool {
	flag := result.UrgencyFlag
	escalating := flag == "high" || flag == "critical" || result.Action == ai.ActionEscalate

	if !escalating {
		return false
	}

	level := flag
	if level != "high" && level != "critical" {
		level = "high"
	}

	// Drivability: the model's judgment when present; otherwise not
	// drivable on critical, and not drivable for provide_answer (the safe
	// default when the model answers without committing).
	canDrive := false
	switch {
	case result.CanDrive != nil:
		canDrive = *result.CanDrive
	case level == "critical":
		canDrive = false
	case result.Action == ai.ActionProvideAnswer:
		canDrive = false
	default:
		canDrive = true
	}

	s.SetUrgency(level, canDrive)
	s.AppendAssistantTurn(result.Message)
	s.CurrentStep = session.StepReservation
	return true
}

func (e *Engine) respondForAction(s *session.Session, result *ai.DiagnosticResult, narrowing bool, snippets []retrieval.Snippet) *Response {
	switch result.Action {
	case ai.ActionProvideAnswer, ai.ActionSpecAnswer:
		s.AppendAssistantTurn(result.Message)
		return &Response{
			SessionID:   s.ID,
			CurrentStep: string(session.StepDiagnosing),
			Prompt: Prompt{
				Type:    PromptSingleChoice,
				Message: result.Message,
				Choices: resolvedChoices,
			},
			RAGSources: sourcesFromSnippets(snippets),
		}

	case ai.ActionClarifyTerm:
		s.AppendAssistantTurn(result.Message)
		s.RememberQuestion(result.Message)
		return e.questionResponse(s, result.Message, result.Choices, false)

	default: // ask_question
		message := result.Message
		if isDuplicateQuestion(message, s.LastQuestions) {
			slog.Warn("duplicate question replaced", "session_id", s.ID, "question", message)
			message = pickFallbackQuestion(s.LastQuestions)
			if message == "" {
				message = genericFollowUp
			}
			result.Choices = nil
		}
		s.AppendAssistantTurn(message)
		s.RememberQuestion(message)
		return e.questionResponse(s, message, result.Choices, narrowing)
	}
}

func (e *Engine) questionResponse(s *session.Session, message string, modelChoices []string, narrowing bool) *Response {
	var choices []Choice
	seen := make(map[string]bool)
	for _, c := range modelChoices {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		choices = append(choices, Choice{Value: c, Label: c})
	}

	promptType := PromptText
	if len(choices) > 0 {
		promptType = PromptSingleChoice
		if narrowing && len(choices) >= 2 {
			promptType = PromptDiagnosisCandidates
		}
		choices = appendTrailingChoices(choices)
	}

	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepDiagnosing),
		Prompt: Prompt{
			Type:    promptType,
			Message: message,
			Choices: choices,
		},
	}
}

// invokeDiagnostic calls the completion service with the strict diagnostic
// schema. A malformed payload gets exactly one retry when withRetry is
// set; nil means both attempts failed.
func (e *Engine) invokeDiagnostic(ctx context.Context, s *session.Session, prompt string, withRetry bool) *ai.DiagnosticResult {
	attempts := 1
	if withRetry {
		attempts = 2
	}
	for i := 0; i < attempts; i++ {
		raw, err := e.llm.Complete(ctx, []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		}, 0.3, ai.DiagnosticSchema)
		if err != nil {
			slog.Error("diagnostic completion failed", "session_id", s.ID, "attempt", i+1, "error", err)
			continue
		}
		result, err := ai.DecodeDiagnosticResult(raw)
		if err != nil {
			slog.Error("diagnostic decode failed", "session_id", s.ID, "attempt", i+1, "error", err)
			continue
		}
		return result
	}
	return nil
}

func (e *Engine) fallbackQuestionResponse(s *session.Session) *Response {
	message := pickFallbackQuestion(s.LastQuestions)
	if message == "" {
		message = genericFollowUp
	}
	s.AppendAssistantTurn(message)
	s.RememberQuestion(message)
	return &Response{
		SessionID:   s.ID,
		CurrentStep: string(session.StepDiagnosing),
		Prompt:      Prompt{Type: PromptText, Message: message},
	}
}

func (e *Engine) buildDiagnosticPrompt(s *session.Session, snippets []retrieval.Snippet, instructions string) string {
	summary := s.ConversationSummary
	if summary == "" {
		summary = "（なし）"
	}

	// Once the rolling summary is active only a small window of recent
	// turns enters the prompt; the summary covers the rest.
	window := 0
	if s.ConversationSummary != "" {
		window = historyWindow
	}

	return fmt.Sprintf(diagnosticPromptTemplate,
		orUnknown(s.VehicleMake), orUnknown(s.VehicleModel), yearOrUnknown(s.VehicleYear),
		s.SymptomText,
		summary,
		historyText(s.ConversationHistory, window),
		ragContext(snippets),
		instructions)
}

func (e *Engine) summarizeConversation(ctx context.Context, s *session.Session) (string, error) {
	if e.llm == nil || !e.llm.IsConfigured() {
		return "", nil
	}
	raw, err := e.llm.Complete(ctx, []ai.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(summaryPromptTemplate, historyText(s.ConversationHistory, 0))},
	}, 0.2, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

// historyText renders conversation history for the prompt. window > 0
// keeps only that many most recent entries.
func historyText(history []session.Turn, window int) string {
	if len(history) == 0 {
		return "(初回入力)"
	}
	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	var lines []string
	for _, turn := range history {
		role := "アシスタント"
		if turn.Role == "user" {
			role = "ユーザー"
		}
		lines = append(lines, role+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

func ragContext(snippets []retrieval.Snippet) string {
	if len(snippets) == 0 {
		return buildNoContextText()
	}
	var parts []string
	for _, sn := range snippets {
		section := sn.Section
		if section == "" {
			section = "マニュアル"
		}
		parts = append(parts, fmt.Sprintf("【%s（p.%d）】\n%s", section, sn.Page, sn.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
