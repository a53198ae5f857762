package node

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/prompts"
)

var (
	ErrUnknownParameter    = errors.New("unknown node parameter")
	ErrItemIndexOutOfRange = errors.New("item index out of range")
)

// Parameters holds the configured values of a node, keyed by parameter name.
type Parameters map[string]any

// Execution is the per-invocation context handed to a node: its parameters,
// the batch of input items and a logger.
type Execution struct {
	id     string
	params Parameters
	items  []Item
	logger *slog.Logger
}

// ExecutionOption configures an Execution.
type ExecutionOption func(*Execution)

func WithLogger(l *slog.Logger) ExecutionOption {
	return func(e *Execution) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithExecutionID(id string) ExecutionOption {
	return func(e *Execution) {
		if id != "" {
			e.id = id
		}
	}
}

func NewExecution(params Parameters, items []Item, opts ...ExecutionOption) *Execution {
	e := &Execution{
		id:     uuid.NewString(),
		params: params,
		items:  items,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.params == nil {
		e.params = Parameters{}
	}
	e.logger = e.logger.With("execution", e.id)
	return e
}

func (e *Execution) ID() string {
	return e.id
}

func (e *Execution) InputData() []Item {
	return e.items
}

func (e *Execution) Logger() *slog.Logger {
	return e.logger
}

// NodeParameter resolves a parameter for the item at itemIndex. String values
// holding a "{{" expression are rendered as Go templates against the item's JSON.
// Index 0 of an empty batch resolves against an empty item, so any field
// reference in the expression is a missing-key error.
func (e *Execution) NodeParameter(name string, itemIndex int) (any, error) {
	value, ok := e.params[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}

	expr, ok := value.(string)
	if !ok || !strings.Contains(expr, "{{") {
		return value, nil
	}

	data, err := e.itemData(itemIndex)
	if err != nil {
		return nil, err
	}
	rendered, err := prompts.RenderTemplate(expr, prompts.TemplateFormatGoTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("parameter %q item %d: %w", name, itemIndex, err)
	}
	return rendered, nil
}

// PrepareOutputData wraps the results into the single output branch of the node.
func (e *Execution) PrepareOutputData(items []Item) ([][]Item, error) {
	if items == nil {
		items = []Item{}
	}
	return [][]Item{items}, nil
}

func (e *Execution) itemData(itemIndex int) (map[string]any, error) {
	if itemIndex == 0 && len(e.items) == 0 {
		return map[string]any{}, nil
	}
	if itemIndex < 0 || itemIndex >= len(e.items) {
		return nil, fmt.Errorf("%w: %d of %d", ErrItemIndexOutOfRange, itemIndex, len(e.items))
	}
	data := e.items[itemIndex].JSON
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
