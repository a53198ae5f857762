package config

import (
	"fmt"
	"os"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/avi3tal/functionsagent/pkg/agent"
	"github.com/avi3tal/functionsagent/pkg/node"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"

	MemoryNone         = ""
	MemoryBuffer       = "buffer"
	MemoryWindowBuffer = "windowBuffer"

	ToolCalculator = "calculator"
	ToolWikipedia  = "wikipedia"
	ToolDuckDuckGo = "duckduckgo"

	ParserStructured = "structured"
	ParserRegex      = "regex"
	ParserRegexDict  = "regexDict"
	ParserBoolean    = "boolean"
	ParserList       = "list"
	ParserSimple     = "simple"
)

const (
	defaultName          = "functions-agent"
	defaultText          = "{{ .chatInput }}"
	defaultMaxIterations = 5
	defaultWindowSize    = 5
)

var (
	providers   = []string{ProviderOpenAI, ProviderAnthropic, ProviderOllama}
	memoryTypes = []string{MemoryNone, MemoryBuffer, MemoryWindowBuffer}
	toolNames   = []string{ToolCalculator, ToolWikipedia, ToolDuckDuckGo}
	parserTypes = []string{ParserStructured, ParserRegex, ParserRegexDict, ParserBoolean, ParserList, ParserSimple}
)

// Node is the configuration of one agent node and its connected collaborators.
type Node struct {
	Name          string         `yaml:"name"`
	Mode          string         `yaml:"mode"`
	Text          string         `yaml:"text"`
	SystemMessage string         `yaml:"systemMessage"`
	MaxIterations int            `yaml:"maxIterations"`
	Model         Model          `yaml:"model"`
	Memory        Memory         `yaml:"memory"`
	Tools         []string       `yaml:"tools"`
	OutputParsers []OutputParser `yaml:"outputParsers"`
}

type Model struct {
	Provider  string `yaml:"provider"`
	Name      string `yaml:"name"`
	BaseURL   string `yaml:"baseURL"`
	APIKeyEnv string `yaml:"apiKeyEnv"`
}

// APIKey reads the model's API key from the configured environment variable.
func (m Model) APIKey() string {
	if m.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(m.APIKeyEnv)
}

type Memory struct {
	Type       string `yaml:"type"`
	SessionID  string `yaml:"sessionID"`
	WindowSize int    `yaml:"windowSize"`
}

// Field describes one key of a structured parser's response.
type Field struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type OutputParser struct {
	Type       string            `yaml:"type"`
	Fields     []Field           `yaml:"fields"`
	Expression string            `yaml:"expression"`
	Formats    map[string]string `yaml:"formats"`
	NoUpdate   string            `yaml:"noUpdate"`
}

// Load reads a YAML node configuration, applies defaults and validates it.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes a YAML node configuration, applies defaults and validates it.
func Parse(data []byte) (*Node, error) {
	var cfg Node
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode yaml")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (n *Node) SetDefaults() {
	if n.Name == "" {
		n.Name = defaultName
	}
	if n.Mode == "" {
		n.Mode = string(agent.RunOnceForEachItem)
	}
	if n.Text == "" {
		n.Text = defaultText
	}
	if n.MaxIterations == 0 {
		n.MaxIterations = defaultMaxIterations
	}
	if n.Model.Provider == "" {
		n.Model.Provider = ProviderOpenAI
	}
	if n.Model.APIKeyEnv == "" {
		switch n.Model.Provider {
		case ProviderOpenAI:
			n.Model.APIKeyEnv = "OPENAI_API_KEY"
		case ProviderAnthropic:
			n.Model.APIKeyEnv = "ANTHROPIC_API_KEY"
		}
	}
	if n.Memory.Type == MemoryWindowBuffer && n.Memory.WindowSize == 0 {
		n.Memory.WindowSize = defaultWindowSize
	}
}

// Validate rejects unknown modes, providers, memory types, tools and parsers.
func (n *Node) Validate() error {
	if !agent.RunMode(n.Mode).Known() {
		return invalid("unknown mode %q", n.Mode)
	}
	if n.MaxIterations < 0 {
		return invalid("maxIterations must not be negative")
	}
	if !slices.Contains(providers, n.Model.Provider) {
		return invalid("unknown model provider %q", n.Model.Provider)
	}
	if !slices.Contains(memoryTypes, n.Memory.Type) {
		return invalid("unknown memory type %q", n.Memory.Type)
	}
	if n.Memory.WindowSize < 0 {
		return invalid("memory windowSize must not be negative")
	}
	for _, t := range n.Tools {
		if !slices.Contains(toolNames, t) {
			return invalid("unknown tool %q", t)
		}
	}
	for i, p := range n.OutputParsers {
		if !slices.Contains(parserTypes, p.Type) {
			return invalid("outputParsers[%d]: unknown type %q", i, p.Type)
		}
		switch p.Type {
		case ParserStructured:
			if len(p.Fields) == 0 {
				return invalid("outputParsers[%d]: structured parser needs fields", i)
			}
		case ParserRegex:
			if p.Expression == "" {
				return invalid("outputParsers[%d]: regex parser needs an expression", i)
			}
		case ParserRegexDict:
			if len(p.Formats) == 0 {
				return invalid("outputParsers[%d]: regexDict parser needs formats", i)
			}
		}
	}
	return nil
}

// Parameters returns the node parameters read by the agent at execution time.
func (n *Node) Parameters() node.Parameters {
	return node.Parameters{
		"mode": n.Mode,
		"text": n.Text,
	}
}

func invalid(format string, args ...any) error {
	return errors.Wrap(ErrInvalidConfig, fmt.Sprintf(format, args...))
}
