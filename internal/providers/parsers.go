package providers

import (
	"regexp"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/outputparser"
	"github.com/tmc/langchaingo/schema"

	"github.com/avi3tal/functionsagent/internal/config"
)

// NewOutputParsers builds the configured parsers in order.
func NewOutputParsers(defs []config.OutputParser) ([]schema.OutputParser[any], error) {
	out := make([]schema.OutputParser[any], 0, len(defs))
	for i, def := range defs {
		p, err := newOutputParser(def)
		if err != nil {
			return nil, errors.Wrapf(err, "outputParsers[%d]", i)
		}
		out = append(out, p)
	}
	return out, nil
}

func newOutputParser(def config.OutputParser) (schema.OutputParser[any], error) {
	switch def.Type {
	case config.ParserStructured:
		fields := make([]outputparser.ResponseSchema, 0, len(def.Fields))
		for _, f := range def.Fields {
			fields = append(fields, outputparser.ResponseSchema{Name: f.Name, Description: f.Description})
		}
		return outputparser.NewStructured(fields), nil
	case config.ParserRegex:
		if _, err := regexp.Compile(def.Expression); err != nil {
			return nil, errors.Wrap(err, "regex")
		}
		return outputparser.NewRegexParser(def.Expression), nil
	case config.ParserRegexDict:
		for key, format := range def.Formats {
			if _, err := regexp.Compile("(?:" + format + ")"); err != nil {
				return nil, errors.Wrapf(err, "regexDict %s", key)
			}
		}
		return outputparser.NewRegexDict(def.Formats, def.NoUpdate), nil
	case config.ParserBoolean:
		return outputparser.NewBooleanParser(), nil
	case config.ParserList:
		return listParser{}, nil
	case config.ParserSimple:
		return outputparser.NewSimple(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownParser, "%q", def.Type)
	}
}

// listParser exposes the comma separated list parser as an OutputParser[any].
type listParser struct {
	list outputparser.CommaSeparatedList
}

var _ schema.OutputParser[any] = listParser{}

func (p listParser) GetFormatInstructions() string {
	return p.list.GetFormatInstructions()
}

func (p listParser) Parse(text string) (any, error) {
	return p.list.Parse(text)
}

func (p listParser) ParseWithPrompt(text string, prompt llms.PromptValue) (any, error) {
	return p.list.ParseWithPrompt(text, prompt)
}

func (p listParser) Type() string {
	return p.list.Type()
}
