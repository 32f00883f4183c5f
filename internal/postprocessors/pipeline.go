// Package postprocessors provides chunking and fragment processing implementations.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/litrag/internal/core/domain"
	"github.com/custodia-labs/litrag/internal/core/ports/driven"
)

// Ensure Pipeline implements the interface.
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline chains multiple PostProcessors and runs them in order.
// It implements the PostProcessorPipeline interface.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// BuildPipeline constructs the pipeline named by cfg using the registry's builders.
// An empty processor list builds the chunker alone.
func BuildPipeline(r *Registry, cfg domain.PipelineConfig) (*Pipeline, error) {
	names := cfg.Processors
	if len(names) == 0 {
		names = []string{"chunker"}
	}

	p := NewPipeline()
	for _, name := range names {
		proc, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		p.Add(proc)
	}
	return p, nil
}

// Process runs the text through all processors in order.
// The first processor receives nil fragments and should create them.
// Subsequent processors receive and may modify the fragments.
func (p *Pipeline) Process(ctx context.Context, text string) ([]string, error) {
	var fragments []string

	for _, processor := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		fragments, err = processor.Process(ctx, text, fragments)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}

	return fragments, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}

// Names returns the processor names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}
