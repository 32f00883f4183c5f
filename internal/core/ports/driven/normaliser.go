package driven

// Normaliser cleans extracted text before chunking.
// Implementations never fail: any input yields some output, and
// Normalise(Normalise(x)) == Normalise(x).
type Normaliser interface {
	// Name returns the normaliser name for logging.
	Name() string

	// Normalise returns the cleaned text.
	Normalise(text string) string
}
