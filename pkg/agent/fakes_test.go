package agent

import (
	"context"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// scriptedModel records every request and answers with respond.
type scriptedModel struct {
	mu      sync.Mutex
	calls   [][]llms.MessageContent
	respond func(msgs []llms.MessageContent) (*llms.ContentChoice, error)
}

var _ llms.Model = (*scriptedModel)(nil)

func echoModel() *scriptedModel {
	return &scriptedModel{
		respond: func(msgs []llms.MessageContent) (*llms.ContentChoice, error) {
			return &llms.ContentChoice{Content: "echo: " + lastText(msgs, llms.ChatMessageTypeHuman)}, nil
		},
	}
}

func replyModel(content string) *scriptedModel {
	return &scriptedModel{
		respond: func([]llms.MessageContent) (*llms.ContentChoice, error) {
			return &llms.ContentChoice{Content: content}, nil
		},
	}
}

// toolCallingModel asks for the named tool with the human input, then
// answers with the tool's observation.
func toolCallingModel(tool string) *scriptedModel {
	return &scriptedModel{
		respond: func(msgs []llms.MessageContent) (*llms.ContentChoice, error) {
			if observation := lastText(msgs, llms.ChatMessageTypeFunction); observation != "" {
				return &llms.ContentChoice{Content: "final: " + observation}, nil
			}
			call := &llms.FunctionCall{
				Name:      tool,
				Arguments: `{"__arg1":"` + lastText(msgs, llms.ChatMessageTypeHuman) + `"}`,
			}
			return &llms.ContentChoice{
				FuncCall:  call,
				ToolCalls: []llms.ToolCall{{ID: "call-1", Type: "function", FunctionCall: call}},
			}, nil
		},
	}
}

func (m *scriptedModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, msgs)
	m.mu.Unlock()

	choice, err := m.respond(msgs)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *scriptedModel) Calls() [][]llms.MessageContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]llms.MessageContent(nil), m.calls...)
}

// HumanInputs returns the human message sent on each call.
func (m *scriptedModel) HumanInputs() []string {
	var inputs []string
	for _, msgs := range m.Calls() {
		inputs = append(inputs, lastText(msgs, llms.ChatMessageTypeHuman))
	}
	return inputs
}

func lastText(msgs []llms.MessageContent, role llms.ChatMessageType) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != role {
			continue
		}
		var sb strings.Builder
		for _, part := range msgs[i].Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
			}
		}
		return sb.String()
	}
	return ""
}

// recordingTool answers with a fixed prefix and records its inputs.
type recordingTool struct {
	mu     sync.Mutex
	name   string
	inputs []string
}

func (t *recordingTool) Name() string        { return t.name }
func (t *recordingTool) Description() string { return "Looks up the weather for a city." }

func (t *recordingTool) Call(_ context.Context, input string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inputs = append(t.inputs, input)
	return "sunny in " + input, nil
}

func (t *recordingTool) Inputs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.inputs...)
}
