package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/tools"

	"github.com/avi3tal/functionsagent/pkg/node"
)

var (
	ErrModelRequired = errors.New("a chat model is required")
	ErrTextNotString = errors.New("text parameter must resolve to a string")
)

const defaultName = "OpenAI Functions Agent"

// ExecutionContext is what the host hands to a node for one invocation.
type ExecutionContext interface {
	NodeParameter(name string, itemIndex int) (any, error)
	InputData() []node.Item
	PrepareOutputData(items []node.Item) ([][]node.Item, error)
	Logger() *slog.Logger
}

// Dependencies are the collaborators connected to the node. Only Model is required.
type Dependencies struct {
	Model         llms.Model
	Memory        schema.Memory
	Tools         []tools.Tool
	OutputParsers []schema.OutputParser[any]
}

// Adapter runs an openai-functions agent executor over the items of an invocation.
type Adapter struct {
	name          string
	deps          Dependencies
	systemMessage string
	maxIterations int
	handler       callbacks.Handler
}

type Option func(*Adapter)

func WithName(name string) Option {
	return func(a *Adapter) {
		a.name = name
	}
}

// WithSystemMessage overrides the agent's default system message.
func WithSystemMessage(msg string) Option {
	return func(a *Adapter) {
		a.systemMessage = msg
	}
}

// WithMaxIterations bounds the agent's tool-calling loop.
func WithMaxIterations(n int) Option {
	return func(a *Adapter) {
		a.maxIterations = n
	}
}

func WithCallbacksHandler(h callbacks.Handler) Option {
	return func(a *Adapter) {
		a.handler = h
	}
}

func New(deps Dependencies, opts ...Option) (*Adapter, error) {
	if deps.Model == nil {
		return nil, ErrModelRequired
	}
	a := &Adapter{name: defaultName, deps: deps}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Adapter) Name() string {
	return a.name
}

func (a *Adapter) Metadata() map[string]any {
	toolNames := make([]string, 0, len(a.deps.Tools))
	for _, t := range a.deps.Tools {
		toolNames = append(toolNames, t.Name())
	}
	parserTypes := make([]string, 0, len(a.deps.OutputParsers))
	for _, p := range a.deps.OutputParsers {
		parserTypes = append(parserTypes, p.Type())
	}
	return map[string]any{
		"agentType":     AgentType,
		"tools":         toolNames,
		"outputParsers": parserTypes,
		"memory":        a.deps.Memory != nil,
	}
}

// Execute runs the agent once per item, or once for the batch in
// RunOnceForAllItems mode, and returns the results in the output envelope.
// Errors from collaborators are returned unmodified.
func (a *Adapter) Execute(ctx context.Context, ec ExecutionContext) ([][]node.Item, error) {
	logger := ec.Logger()
	logger.Debug("Executing OpenAi Functions Agent")

	rawMode, err := ec.NodeParameter("mode", 0)
	if err != nil {
		return nil, err
	}
	mode, known := ParseRunMode(rawMode)
	if !known {
		logger.Warn("unrecognized run mode, running once for each item", "mode", rawMode)
	}

	executor, err := NewExecutor(ctx, ExecutorConfig{
		Model:            a.deps.Model,
		Tools:            a.deps.Tools,
		Memory:           a.deps.Memory,
		SystemMessage:    a.systemMessage,
		MaxIterations:    a.maxIterations,
		CallbacksHandler: a.handler,
	})
	if err != nil {
		return nil, err
	}

	parser := selectParser(a.deps.OutputParsers)

	count := len(ec.InputData())
	if mode == RunOnceForAllItems {
		count = 1
	}

	results := make([]node.Item, 0, count)
	for i := 0; i < count; i++ {
		rawText, err := ec.NodeParameter("text", i)
		if err != nil {
			return nil, err
		}
		input, ok := rawText.(string)
		if !ok {
			return nil, fmt.Errorf("%w: item %d", ErrTextNotString, i)
		}

		if parser != nil {
			input, err = newPromptTemplate(parser).Format(map[string]any{"input": input})
			if err != nil {
				return nil, err
			}
		}

		response, err := chains.Call(ctx, executor, map[string]any{"input": input})
		if err != nil {
			return nil, err
		}

		if parser != nil {
			parsed, err := parser.Parse(outputText(response["output"]))
			if err != nil {
				return nil, err
			}
			response = map[string]any{"output": parsed}
		}

		logger.Debug("agent item completed", "item", i)
		results = append(results, node.NewItem(response))
	}

	return ec.PrepareOutputData(results)
}

func outputText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
