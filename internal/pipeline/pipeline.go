package pipeline

import "riskwave/internal/event"

// Pipeline composes stages by left-fold: pipeline(events) =
// stageN(...stage1(events)), matching dyno.Pipeline.event's
// functools.reduce over the stage list.
type Pipeline struct {
	stages []Stage
}

// New builds a Pipeline from an ordered list of stages. Composition is
// associative under event-list concatenation: grouping the stages
// differently does not change the final output for a given input.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Event runs a single input event list through every stage in order,
// returning the final stage's output. An empty stage list is the
// identity function on events.
func (p *Pipeline) Event(in []event.Event) ([]event.Event, error) {
	acc := in
	for _, stage := range p.stages {
		out, err := stage.Process(acc)
		if err != nil {
			return nil, err
		}
		acc = out
	}
	return acc, nil
}
