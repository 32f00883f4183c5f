package driven

import "context"

// PostProcessor processes normalised text to produce chunk texts.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes the document text and the fragments produced so far.
	// A processor that creates fragments (e.g., chunker) receives nil and returns new ones.
	// A processor that modifies fragments receives and returns them.
	Process(ctx context.Context, text string, fragments []string) ([]string, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the text through all processors in order.
	// Returns the final chunk texts after all processing.
	Process(ctx context.Context, text string) ([]string, error)
}
