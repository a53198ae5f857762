package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/memory"

	"github.com/avi3tal/functionsagent/internal/config"
	"github.com/avi3tal/functionsagent/pkg/sessions"
)

func TestNewModel(t *testing.T) {
	t.Setenv("FUNCTIONSAGENT_TEST_OPENAI", "sk-test")
	t.Setenv("FUNCTIONSAGENT_TEST_ANTHROPIC", "sk-ant-test")

	llm, err := NewModel(config.Model{
		Provider:  config.ProviderOpenAI,
		Name:      "gpt-4o-mini",
		APIKeyEnv: "FUNCTIONSAGENT_TEST_OPENAI",
	}, nil)
	require.NoError(t, err)
	require.IsType(t, &openai.LLM{}, llm)

	llm, err = NewModel(config.Model{
		Provider:  config.ProviderAnthropic,
		Name:      "claude-3-5-haiku-latest",
		APIKeyEnv: "FUNCTIONSAGENT_TEST_ANTHROPIC",
	}, nil)
	require.NoError(t, err)
	require.IsType(t, &anthropic.LLM{}, llm)

	llm, err = NewModel(config.Model{
		Provider: config.ProviderOllama,
		Name:     "llama3",
		BaseURL:  "http://localhost:11434",
	}, nil)
	require.NoError(t, err)
	require.IsType(t, &ollama.LLM{}, llm)
}

func TestNewModelErrors(t *testing.T) {
	t.Parallel()

	_, err := NewModel(config.Model{Provider: "mystery"}, nil)
	require.ErrorIs(t, err, ErrUnknownProvider)

	_, err = NewModel(config.Model{Provider: config.ProviderOpenAI, APIKeyEnv: "FUNCTIONSAGENT_TEST_UNSET_KEY"}, nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)
	require.Contains(t, err.Error(), "FUNCTIONSAGENT_TEST_UNSET_KEY")

	_, err = NewModel(config.Model{Provider: config.ProviderAnthropic}, nil)
	require.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = NewModel(config.Model{Provider: config.ProviderOllama}, nil)
	require.ErrorIs(t, err, ErrMissingModel)
}

func TestNewTools(t *testing.T) {
	t.Parallel()

	ts, err := NewTools([]string{config.ToolCalculator, config.ToolWikipedia, config.ToolDuckDuckGo}, nil)
	require.NoError(t, err)
	require.Len(t, ts, 3)
	require.Equal(t, "calculator", ts[0].Name())
	require.Equal(t, "Wikipedia", ts[1].Name())
	require.Equal(t, "DuckDuckGo_Search", ts[2].Name())
	require.NotEmpty(t, ts[2].Description())

	out, err := ts[0].Call(context.Background(), "2 + 2")
	require.NoError(t, err)
	require.Equal(t, "4", out)

	_, err = NewTools([]string{"shell"}, nil)
	require.ErrorIs(t, err, ErrUnknownTool)

	none, err := NewTools(nil, nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestNewOutputParsers(t *testing.T) {
	t.Parallel()

	parsers, err := NewOutputParsers([]config.OutputParser{
		{Type: config.ParserStructured, Fields: []config.Field{{Name: "city", Description: "the city"}}},
		{Type: config.ParserRegex, Expression: `temp: (?P<temp>\d+)`},
		{Type: config.ParserRegexDict, Formats: map[string]string{"action": "Action"}},
		{Type: config.ParserBoolean},
		{Type: config.ParserList},
		{Type: config.ParserSimple},
	})
	require.NoError(t, err)
	require.Len(t, parsers, 6)

	v, err := parsers[1].Parse("temp: 21")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"temp": "21"}, v)

	v, err = parsers[2].Parse("Action: search")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"action": "search"}, v)

	v, err = parsers[3].Parse("yes")
	require.NoError(t, err)
	require.Equal(t, true, v)

	v, err = parsers[4].Parse("paris, tokyo ,lima")
	require.NoError(t, err)
	require.Equal(t, []string{"paris", "tokyo", "lima"}, v)
	require.Equal(t, "comma_separated_list_parser", parsers[4].Type())
	require.Contains(t, parsers[4].GetFormatInstructions(), "comma separated")

	v, err = parsers[5].Parse("  plain  ")
	require.NoError(t, err)
	require.Equal(t, "plain", v)
}

func TestNewOutputParsersErrors(t *testing.T) {
	t.Parallel()

	_, err := NewOutputParsers([]config.OutputParser{{Type: "xml"}})
	require.ErrorIs(t, err, ErrUnknownParser)

	_, err = NewOutputParsers([]config.OutputParser{{Type: config.ParserRegex, Expression: "(unclosed"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "outputParsers[0]")

	_, err = NewOutputParsers([]config.OutputParser{{Type: config.ParserRegexDict, Formats: map[string]string{"k": "[bad"}}})
	require.Error(t, err)
}

func TestNewMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := sessions.NewMemoryStore()

	mem, err := NewMemory(config.Memory{}, store, "agent")
	require.NoError(t, err)
	require.Nil(t, mem)

	mem, err = NewMemory(config.Memory{Type: config.MemoryBuffer, SessionID: "s1"}, store, "agent")
	require.NoError(t, err)
	require.IsType(t, &memory.ConversationBuffer{}, mem)

	require.NoError(t, mem.SaveContext(ctx, map[string]any{"input": "hi"}, map[string]any{"output": "hello"}))
	s, err := store.Load(ctx, sessions.Key{Node: "agent", SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, s.Messages, 2)

	mem, err = NewMemory(config.Memory{Type: config.MemoryWindowBuffer, WindowSize: 2}, store, "agent")
	require.NoError(t, err)
	window, ok := mem.(*memory.ConversationWindowBuffer)
	require.True(t, ok)
	require.Equal(t, 2, window.ConversationWindowSize)
	require.NotEqual(t, "s1", window.ChatHistory.(*sessions.History).Key().SessionID)

	_, err = NewMemory(config.Memory{Type: "vector"}, store, "agent")
	require.ErrorIs(t, err, ErrUnknownMemory)
}
