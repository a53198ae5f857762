package agent

// RunMode selects how many times the agent runs per invocation.
type RunMode string

const (
	// RunOnceForEachItem runs the agent once per input item.
	RunOnceForEachItem RunMode = "runOnceForEachItem"
	// RunOnceForAllItems runs the agent once for the whole batch, reading
	// the text of the first item only.
	RunOnceForAllItems RunMode = "runOnceForAllItems"
)

// Known reports whether m is one of the recognized run modes.
func (m RunMode) Known() bool {
	return m == RunOnceForEachItem || m == RunOnceForAllItems
}

// ParseRunMode converts a raw parameter value into a RunMode. Anything but
// RunOnceForAllItems iterates per item; ok is false for unrecognized values.
func ParseRunMode(v any) (mode RunMode, ok bool) {
	s, _ := v.(string)
	switch RunMode(s) {
	case RunOnceForAllItems:
		return RunOnceForAllItems, true
	case RunOnceForEachItem:
		return RunOnceForEachItem, true
	case "":
		return RunOnceForEachItem, true
	default:
		return RunOnceForEachItem, false
	}
}
