package view

import (
	"strings"

	"github.com/matzehuels/kintree/pkg/geom"
)

// Suggestion is a jump-to candidate.
type Suggestion struct {
	ID      string
	Label   string
	Kinship string
}

type jumpState struct {
	query       string
	suggestions []Suggestion
	cursor      int
}

// JumpQuery returns the current jump-to query.
func (c *Controller) JumpQuery() string { return c.jump.query }

// Suggestions returns the persons matching the jump-to query.
func (c *Controller) Suggestions() []Suggestion { return c.jump.suggestions }

// JumpCursor returns the index of the highlighted suggestion, or -1.
func (c *Controller) JumpCursor() int { return c.jump.cursor }

// SetJumpQuery filters persons whose name contains q, ignoring case, in
// render-list order, and highlights the first. It does nothing outside the
// jump-to tool.
func (c *Controller) SetJumpQuery(q string) {
	if c.tool != ToolJumpTo {
		return
	}
	c.jump = jumpState{query: q, cursor: -1}
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle != "" {
		for _, n := range c.scene.Nodes() {
			if strings.Contains(strings.ToLower(n.Label), needle) {
				c.jump.suggestions = append(c.jump.suggestions,
					Suggestion{ID: n.ID(), Label: n.Label, Kinship: n.Kinship})
			}
		}
	}
	if len(c.jump.suggestions) > 0 {
		c.jump.cursor = 0
	}
	c.highlightSuggestion()
}

// JumpNext highlights the next suggestion, wrapping to the first.
func (c *Controller) JumpNext() { c.stepJump(1) }

// JumpPrev highlights the previous suggestion, wrapping to the last.
func (c *Controller) JumpPrev() { c.stepJump(-1) }

func (c *Controller) stepJump(d int) {
	n := len(c.jump.suggestions)
	if n == 0 {
		return
	}
	c.jump.cursor = ((c.jump.cursor+d)%n + n) % n
	c.highlightSuggestion()
}

// JumpCommit asks the host to re-center on the highlighted suggestion and
// returns its identifier.
func (c *Controller) JumpCommit() (string, bool) {
	if c.jump.cursor < 0 || c.jump.cursor >= len(c.jump.suggestions) {
		return "", false
	}
	id := c.jump.suggestions[c.jump.cursor].ID
	if c.hooks.OnRecenter != nil {
		c.hooks.OnRecenter(id)
	}
	return id, true
}

// highlightSuggestion hovers the highlighted person and brings it into view.
func (c *Controller) highlightSuggestion() {
	if c.jump.cursor < 0 {
		c.scene.SetHover("")
		c.changed()
		return
	}
	id := c.jump.suggestions[c.jump.cursor].ID
	c.scene.SetHover(id)
	if n, ok := c.scene.Node(id); ok {
		c.cam.CenterOn(n.Bounds().Center(), geom.Point{X: c.width / 2, Y: c.height / 2})
	}
	c.changed()
}

func (c *Controller) clearJump() {
	c.jump = jumpState{cursor: -1}
	c.scene.SetHover("")
}
