package providers

import (
	"regexp"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/duckduckgo"
	"github.com/tmc/langchaingo/tools/wikipedia"

	"github.com/avi3tal/functionsagent/internal/config"
)

const duckDuckGoMaxResults = 5

var invalidFunctionChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// NewTools builds the named tools in order.
func NewTools(names []string, handler callbacks.Handler) ([]tools.Tool, error) {
	out := make([]tools.Tool, 0, len(names))
	for _, name := range names {
		t, err := newTool(name, handler)
		if err != nil {
			return nil, err
		}
		out = append(out, functionSafe(t))
	}
	return out, nil
}

func newTool(name string, handler callbacks.Handler) (tools.Tool, error) {
	switch name {
	case config.ToolCalculator:
		return tools.Calculator{CallbacksHandler: handler}, nil
	case config.ToolWikipedia:
		w := wikipedia.New(UserAgent)
		w.CallbacksHandler = handler
		return w, nil
	case config.ToolDuckDuckGo:
		d, err := duckduckgo.New(duckDuckGoMaxResults, UserAgent)
		if err != nil {
			return nil, errors.Wrap(err, "duckduckgo")
		}
		d.CallbacksHandler = handler
		return d, nil
	default:
		return nil, errors.Wrapf(ErrUnknownTool, "%q", name)
	}
}

// functionSafe renames tools whose names are not valid function-call identifiers.
func functionSafe(t tools.Tool) tools.Tool {
	safe := invalidFunctionChars.ReplaceAllString(t.Name(), "_")
	if safe == t.Name() {
		return t
	}
	return renamedTool{Tool: t, name: safe}
}

type renamedTool struct {
	tools.Tool
	name string
}

func (t renamedTool) Name() string {
	return t.name
}
