package dialog

// User-visible copy and model prompt templates. All user-facing text is
// Japanese, matching the deployed assistant.

const systemPrompt = "あなたは車両トラブル問診アシスタントです。安全を最優先に、正確で簡潔な日本語で回答してください。"

const (
	msgWelcome = "こんにちは！車両トラブル診断アシスタントです。\nまず、お車の情報を教えてください。メーカー名や車種名で検索できます。"

	msgSearchAgain = "もう一度お車を検索してください。"

	msgPhotoConfirmRetry = "お車の確認をお願いします。こちらのお車でお間違いないですか？"

	msgAskSymptom = "症状やお困りごとを入力してください。"

	msgAskSymptomDetail = "症状について教えてください。"

	msgSpecNotResolved = "承知しました。詳しく症状をお伺いします。"

	msgSessionEnded = "セッションが終了しました。新しい問診を開始するには、ページを更新してください。"

	msgSessionExpired = "セッションの有効期限が切れました。お手数ですが、新しい問診を開始してください。"

	msgResolvedDone = "お役に立てて良かったです！他にご質問があれば、新しい問診を開始してください。\n安全運転をお願いいたします。"

	msgNoBookingDone = "承知しました。症状が続く場合は、お近くのディーラーまたは整備工場にご相談ください。\n安全運転をお願いいたします。"

	msgLLMUnavailable = "申し訳ありません、現在自動問診をご利用いただけません。症状が続く場合は、お近くのディーラーまたは整備工場にご相談ください。"

	msgTurnError = "申し訳ありません、うまく処理できませんでした。差し支えなければ、もう少し詳しく症状を教えてください。"
)

// fallbackQuestions are fixed diagnostic questions used when the model is
// unavailable or produced a duplicate. They are consumed through the
// duplicate guard so each is asked at most once.
var fallbackQuestions = []string{
	"症状が出るのは走行中ですか？それとも停車しているときですか？",
	"症状が出る頻度はどのくらいですか？（毎回・たまに・一度だけなど）",
	"エンジンをかけたとき、メーターパネルに見慣れない表示は出ていますか？",
	"最近、車の点検や修理をされましたか？",
	"症状が出るとき、何か特別な操作をしていますか？（例：エアコンをつけた、坂道を走ったなど）",
}

// genericFollowUp is used when every fallback question has been asked.
const genericFollowUp = "他に気づいたことがあれば、どんな小さなことでも教えてください。"

// Trailing choices appended to every non-escalating question.
var trailingChoices = []Choice{
	{Value: "dont_know", Label: "わかりません"},
	{Value: "free_input", Label: "自由に入力する"},
}

// Choices shown after an answer.
var resolvedChoices = []Choice{
	{Value: "yes", Label: "はい、解決しました"},
	{Value: "no", Label: "いいえ、解決していません"},
}

var specCheckChoices = []Choice{
	{Value: "resolved", Label: "解決しました"},
	{Value: "not_resolved", Label: "解決していません"},
	{Value: "already_tried", Label: "それは試しました / 知っています"},
}

const diagnosticPromptTemplate = `あなたは自動車整備の専門家として問診を行っています。

車両: %s %s (%s年式)
最初の症状: %s

これまでの会話の要約:
%s

直近の会話:
%s

マニュアルからの関連情報:
%s

上記を踏まえ、次のアクションを決めてください。
- 原因を特定できる確信があれば provide_answer で回答する
- 情報が足りなければ ask_question で一度にひとつだけ質問する（既に聞いたことは聞かない）
- 専門用語にユーザーが戸惑っていれば clarify_term で確認する
- マニュアルに正常動作として記載があれば spec_answer で説明する
- 危険な兆候があれば escalate する%s`

const summaryPromptTemplate = `以下の車両トラブル問診の会話を、症状・確認済み事項・未確認事項がわかるように日本語で簡潔に要約してください（200文字以内）。

%s`

const specClassificationPromptTemplate = `あなたは自動車整備の専門家です。以下の症状が車両の仕様（正常な動作）かどうかを判定してください。

車両: %s %s (%s年式)
症状: %s

マニュアルからの関連情報:
%s

マニュアルに正常動作として記載されている場合のみ is_spec_behavior を true にしてください。`

// Conditional instructions injected into the diagnostic prompt.
const (
	instructionTurnBudget = "\n\n【重要】問診回数の上限に達しました。これまでの情報をもとに action: \"provide_answer\" で回答を提供してください。"

	instructionNarrowCandidates = "\n\n【指示】原因の候補が絞れてきました。ask_question で「考えられる原因」をちょうど4つ、短いラベルで choices に挙げ、最後に「その他・どれでもない」を加えてください。"

	instructionAfterCandidates = "\n\n【指示】ユーザーは原因候補への回答を済ませています。これ以上質問せず、action: \"provide_answer\" で回答を提供してください。"

	instructionDifferentSolution = "\n\n【指示】前回提示した対処では解決しませんでした。前回とは異なる原因と対処を提示してください。"

	instructionSpecHint = "\n\n【参考】マニュアル上、この症状は仕様（正常動作）である可能性があります。該当する場合は action: \"spec_answer\" で説明してください。"

	instructionTopicRetry = "\n\n【修正指示】直前の質問はユーザーが言及していない話題（%s）に関するものでした。ユーザーが実際に述べた症状に直接関係する質問だけをしてください。"

	instructionNoStalling = "\n\n【修正指示】まとめや整理の宣言は不要です。質問があれば質問し、なければ action: \"provide_answer\" で直ちに回答してください。"
)

func buildNoContextText() string {
	return "関連するマニュアル情報はありません。"
}
