package driven

// PromptStore serves the templates the answer and intake services fill in.
type PromptStore interface {
	// Load returns the template for name. Known names always resolve, to a
	// built-in template when no usable override exists.
	Load(name string) (string, error)

	// Reload drops cached templates so edits on disk take effect.
	Reload()
}

// Template names.
const (
	// PromptAnswer frames a question with retrieved excerpts.
	// It takes two %s verbs: the numbered excerpts, then the question.
	PromptAnswer = "answer"

	// PromptAnswerSystem is the system instruction for answering. No verbs.
	PromptAnswerSystem = "answer_system"

	// PromptIntakeAnalysis asks for the five-heading intake assessment.
	// It takes one %s verb: the document excerpt.
	PromptIntakeAnalysis = "intake_analysis"
)

// PromptStoreAware is implemented by services whose templates can be
// replaced after construction. Without a store they use built-in templates.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
