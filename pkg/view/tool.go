package view

import (
	"strings"

	"github.com/matzehuels/kintree/pkg/errors"
)

// Tool is the active interaction mode.
type Tool int

const (
	ToolPan Tool = iota
	ToolSelect
	ToolJumpTo
	ToolHome
)

var toolNames = [...]string{"pan", "select", "jump", "home"}

// String returns the lower-case tool name.
func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return "unknown"
	}
	return toolNames[t]
}

// ParseTool parses a tool name as printed by [Tool.String].
func ParseTool(s string) (Tool, error) {
	for i, name := range toolNames {
		if strings.EqualFold(s, name) {
			return Tool(i), nil
		}
	}
	return ToolPan, errors.New(errors.ErrCodeInvalidTool, "unknown tool %q", s)
}
