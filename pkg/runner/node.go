package runner

import (
	"context"
	"time"

	"github.com/avi3tal/functionsagent/pkg/agent"
	"github.com/avi3tal/functionsagent/pkg/node"
)

// Node is a unit of work the runner invokes with a batch of items.
type Node interface {
	Name() string
	Execute(ctx context.Context, ec agent.ExecutionContext) ([][]node.Item, error)
	Metadata() map[string]any
}

// Status is the outcome of a node invocation.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result describes one node invocation.
type Result struct {
	ExecutionID string
	Status      Status
	Output      [][]node.Item
	Duration    time.Duration
}

// NodeFunc adapts a function into a Node.
type NodeFunc struct {
	name     string
	fn       func(context.Context, agent.ExecutionContext) ([][]node.Item, error)
	metadata map[string]any
}

// NewNodeFunc helper to create an inline node
func NewNodeFunc(
	name string,
	fn func(context.Context, agent.ExecutionContext) ([][]node.Item, error),
	meta map[string]any,
) *NodeFunc {
	return &NodeFunc{name: name, fn: fn, metadata: meta}
}

func (n *NodeFunc) Name() string {
	return n.name
}

func (n *NodeFunc) Execute(ctx context.Context, ec agent.ExecutionContext) ([][]node.Item, error) {
	return n.fn(ctx, ec)
}

func (n *NodeFunc) Metadata() map[string]any {
	return n.metadata
}
