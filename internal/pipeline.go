package internal

import (
	"context"
	"fmt"
)

// Pipeline stage author tags. Every raw event carries the tag of the stage
// that produced it.
const (
	StagePlanning      = "planning_agent"
	StageCodeGenerator = "code_generator_agent"
	StageReview        = "review_agent"
)

// ModelRequest is one completion request against the generation model.
type ModelRequest struct {
	Stage       string
	Model       string
	Instruction string
	History     []Turn
	Prompt      string
}

// ModelClient is the opaque generation backend for a single stage. Stream
// runs one completion, invoking emit for each text delta as it arrives, and
// returns the final joined text.
type ModelClient interface {
	Stream(ctx context.Context, req ModelRequest, emit func(delta string) error) (string, error)
}

// Backend produces the asynchronous raw event sequence for one user message.
// Completion is signaled by the event channel closing; there is no explicit
// done event.
type Backend interface {
	Run(ctx context.Context, sess *Session, message string) *EventStream
}

// EventStream delivers raw events from a running pipeline. Err is valid once
// Events has been drained (the channel is closed).
type EventStream struct {
	ch  chan RawEvent
	err error
}

func newEventStream() *EventStream {
	return &EventStream{ch: make(chan RawEvent, 16)}
}

// Events returns the raw event channel. It is closed when the run ends.
func (s *EventStream) Events() <-chan RawEvent {
	return s.ch
}

// Err returns the terminal error of the run, if any. Only valid after the
// Events channel has closed.
func (s *EventStream) Err() error {
	return s.err
}

// send delivers one event unless the context is done. Reports whether the
// consumer is still listening.
func (s *EventStream) send(ctx context.Context, ev RawEvent) bool {
	select {
	case s.ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// finish records the terminal error and closes the stream.
func (s *EventStream) finish(err error) {
	s.err = err
	close(s.ch)
}

// Stage is one step of the generation workflow.
type Stage struct {
	Name        string
	Model       string
	Instruction string
}

// Pipeline drives the plan -> generate -> review stages strictly
// sequentially against a ModelClient; each later stage consumes the output
// of the one before it. The review stage additionally runs validation tools
// over the generated code and deposits their summary in the session state.
type Pipeline struct {
	client ModelClient
	stages []Stage
	tools  []Tool
}

// NewPipeline assembles the standard three-stage workflow.
func NewPipeline(cfg *Config, client ModelClient) *Pipeline {
	return &Pipeline{
		client: client,
		stages: []Stage{
			{Name: StagePlanning, Model: cfg.PlannerModel, Instruction: planningInstruction},
			{Name: StageCodeGenerator, Model: cfg.GeneratorModel, Instruction: generatorInstruction},
			{Name: StageReview, Model: cfg.ReviewerModel, Instruction: reviewInstruction},
		},
		tools: ReviewTools(),
	}
}

// Run starts one pipeline execution and returns its event stream.
func (p *Pipeline) Run(ctx context.Context, sess *Session, message string) *EventStream {
	stream := newEventStream()
	go p.run(ctx, sess, message, stream)
	return stream
}

func (p *Pipeline) run(ctx context.Context, sess *Session, message string, stream *EventStream) {
	input := message
	var generated string

	for _, stage := range p.stages {
		if stage.Name == StageReview {
			if !p.runTools(ctx, sess, generated, stream) {
				stream.finish(ctx.Err())
				return
			}
		}

		req := ModelRequest{
			Stage:       stage.Name,
			Model:       stage.Model,
			Instruction: stage.Instruction,
			Prompt:      p.stagePrompt(stage.Name, message, input),
		}
		if stage.Name == StagePlanning {
			req.History = sess.History
		}

		final, err := p.client.Stream(ctx, req, func(delta string) error {
			if !stream.send(ctx, TextEvent(stage.Name, delta, false)) {
				return ctx.Err()
			}
			return nil
		})
		if err != nil {
			stream.finish(&PipelineError{Stage: stage.Name, Err: err})
			return
		}

		if !stream.send(ctx, TextEvent(stage.Name, final, true)) {
			stream.finish(ctx.Err())
			return
		}

		if stage.Name == StageCodeGenerator {
			generated = final
		}
		input = final
	}

	stream.finish(nil)
}

// runTools executes the review tools over the generated code, emitting a
// tool call and tool response event per tool, and records a summary in the
// session state bag. Reports whether the consumer is still listening.
func (p *Pipeline) runTools(ctx context.Context, sess *Session, generated string, stream *EventStream) bool {
	summary := make(map[string]interface{}, len(p.tools))

	for _, tool := range p.tools {
		call := RawEvent{
			Author: StageReview,
			Parts:  []Part{{Call: &ToolInvocation{Name: tool.Name, Args: map[string]interface{}{"code_length": len(generated)}}}},
		}
		if !stream.send(ctx, call) {
			return false
		}

		result := tool.Run(generated)
		summary[tool.Name] = result

		resp := RawEvent{
			Author: StageReview,
			Parts:  []Part{{Response: &ToolOutcome{Name: tool.Name, Result: result}}},
		}
		if !stream.send(ctx, resp) {
			return false
		}
	}

	sess.SetState(StateKeyLastValidation, summary)
	return true
}

func (p *Pipeline) stagePrompt(stage, userMessage, input string) string {
	switch stage {
	case StagePlanning:
		return userMessage
	case StageCodeGenerator:
		return fmt.Sprintf("User request:\n%s\n\nTechnical plan:\n%s", userMessage, input)
	case StageReview:
		return fmt.Sprintf("User request:\n%s\n\nGenerated code:\n%s", userMessage, input)
	default:
		return input
	}
}

const planningInstruction = `You are the planning agent for a React code generation system.
Analyze the user's request and produce a short technical plan: the components
to build, the state they hold, and the styling approach. Begin your response
with "Planning:".`

const generatorInstruction = `You are the code generator agent. Implement the technical plan as a
complete, working React application. Respond only with fenced code blocks and
put the file path on the fence info string, for example:

` + "```jsx src/App.jsx" + `
...
` + "```" + `

Include a stylesheet. Begin your response with "Generating the code.".`

const reviewInstruction = `You are the review agent. Check the generated code for syntax problems,
React anti-patterns and missing dependencies, taking the validation results
into account. Begin your response with "Reviewing the generated code.".`
