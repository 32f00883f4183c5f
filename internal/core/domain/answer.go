package domain

// Answer is a grounded response to a question.
type Answer struct {
	// Question is the user's question.
	Question string

	// Text is the generated answer.
	Text string

	// Sources are the chunks supplied as context.
	Sources RetrievalResult

	// Model is the LLM that produced the answer.
	Model string
}

// IntakeAssessment is the structured analysis of a rehab intake document.
// Any section missing from the model output is left empty.
type IntakeAssessment struct {
	Occupation            string `json:"occupation"`
	RehabExperience       string `json:"experience"`
	PsychologicalInsights string `json:"psychological_insight"`
	FamilySupport         string `json:"family_support"`
	RelapseProbability    string `json:"relapse_probability"`

	// Raw is the unparsed model output.
	Raw string `json:"-"`
}
