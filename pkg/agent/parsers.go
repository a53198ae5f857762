package agent

import (
	"github.com/tmc/langchaingo/outputparser"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
)

const promptTemplate = "{{.input}}\n{{.formatInstructions}}"

// selectParser returns the single parser as-is, combines two or more, and
// returns nil when there are none.
func selectParser(parsers []schema.OutputParser[any]) schema.OutputParser[any] {
	switch len(parsers) {
	case 0:
		return nil
	case 1:
		return parsers[0]
	default:
		return outputparser.NewCombining(parsers)
	}
}

// newPromptTemplate appends the parser's format instructions to the input.
func newPromptTemplate(parser schema.OutputParser[any]) prompts.PromptTemplate {
	return prompts.PromptTemplate{
		Template:       promptTemplate,
		InputVariables: []string{"input"},
		TemplateFormat: prompts.TemplateFormatGoTemplate,
		PartialVariables: map[string]any{
			"formatInstructions": parser.GetFormatInstructions(),
		},
	}
}
