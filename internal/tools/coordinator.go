package tools

import (
	"log/slog"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/logging"
)

// Actions are the non-tool commands a tool:select message can carry.
type Actions struct {
	Undo  func()
	Redo  func()
	Clear func()
}

// Coordinator keeps exactly one tool enabled and routes pointer input to it.
type Coordinator struct {
	tools   map[string]Tool
	order   []Tool
	active  Tool
	actions Actions
	logger  *slog.Logger
}

// NewCoordinator registers tools in order and enables the first one. When b
// is non-nil it follows tool:select messages.
func NewCoordinator(b *bus.Bus, actions Actions, logger *slog.Logger, tools ...Tool) *Coordinator {
	c := &Coordinator{
		tools:   make(map[string]Tool, len(tools)),
		actions: actions,
		logger:  logging.Component(logger, "tools"),
	}
	for _, t := range tools {
		c.tools[t.Name()] = t
		c.order = append(c.order, t)
	}
	if len(c.order) > 0 {
		c.Use(c.order[0].Name())
	}
	if b != nil {
		b.Subscribe(bus.ToolSelect, func(payload any) {
			if sel, ok := payload.(ToolSelect); ok {
				c.Select(sel.Tool)
			}
		})
	}
	return c
}

// Select handles a toolbar choice: a registered tool name switches tools,
// "undo", "redo" and "clear" run the matching action.
func (c *Coordinator) Select(name string) {
	switch name {
	case "undo":
		run(c.actions.Undo)
	case "redo":
		run(c.actions.Redo)
	case "clear":
		run(c.actions.Clear)
	default:
		c.Use(name)
	}
}

func run(fn func()) {
	if fn != nil {
		fn()
	}
}

// Use enables the named tool and disables every other one. Unknown names are
// ignored.
func (c *Coordinator) Use(name string) bool {
	next, ok := c.tools[name]
	if !ok {
		c.logger.Debug("unknown tool", "tool", name)
		return false
	}
	for _, t := range c.order {
		if t != next {
			t.Disable()
		}
	}
	next.Enable()
	c.active = next
	c.logger.Debug("tool selected", "tool", name)
	return true
}

// Active returns the enabled tool, or nil when none is registered.
func (c *Coordinator) Active() Tool {
	return c.active
}

func (c *Coordinator) PointerDown(e PointerEvent) {
	if c.active != nil {
		c.active.PointerDown(e)
	}
}

func (c *Coordinator) PointerMove(e PointerEvent) {
	if c.active != nil {
		c.active.PointerMove(e)
	}
}

// PointerUp is delivered to every tool so a release always terminates a
// stroke, whichever tool owns it.
func (c *Coordinator) PointerUp(e PointerEvent) {
	for _, t := range c.order {
		t.PointerUp(e)
	}
}

func (c *Coordinator) PointerCancel(e PointerEvent) {
	for _, t := range c.order {
		t.PointerCancel(e)
	}
}
