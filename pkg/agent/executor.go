package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/tools"
)

// AgentType is the only agent strategy the node builds.
const AgentType = "openai-functions"

// ExecutorConfig carries everything the executor is built from. Memory is
// part of construction and never attached afterwards.
type ExecutorConfig struct {
	Model            llms.Model
	Tools            []tools.Tool
	Memory           schema.Memory
	SystemMessage    string
	MaxIterations    int
	CallbacksHandler callbacks.Handler
}

// NewExecutor builds a tool-calling agent executor of type openai-functions.
func NewExecutor(ctx context.Context, cfg ExecutorConfig) (*agents.Executor, error) {
	if cfg.Model == nil {
		return nil, ErrModelRequired
	}

	openAIOpts := agents.NewOpenAIOption()
	var agentOpts []agents.Option
	if cfg.SystemMessage != "" {
		agentOpts = append(agentOpts, openAIOpts.WithSystemMessage(cfg.SystemMessage))
	}

	var execOpts []agents.Option
	if cfg.Memory != nil {
		key := cfg.Memory.GetMemoryKey(ctx)
		agentOpts = append(agentOpts, openAIOpts.WithExtraMessages([]prompts.MessageFormatter{
			prompts.NewSystemMessagePromptTemplate(
				fmt.Sprintf("Previous conversation:\n{{.%s}}", key),
				[]string{key},
			),
		}))
		execOpts = append(execOpts, agents.WithMemory(cfg.Memory))
	}
	if cfg.MaxIterations > 0 {
		execOpts = append(execOpts, agents.WithMaxIterations(cfg.MaxIterations))
	}
	// The handler goes to the executor only: on the agent it would switch
	// the model into streaming mode.
	if cfg.CallbacksHandler != nil {
		execOpts = append(execOpts, agents.WithCallbacksHandler(cfg.CallbacksHandler))
	}

	fnAgent := agents.NewOpenAIFunctionsAgent(cfg.Model, cfg.Tools, agentOpts...)
	return agents.NewExecutor(fnAgent, execOpts...), nil
}
