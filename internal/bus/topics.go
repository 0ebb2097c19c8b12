package bus

// Topics published inside the overlay. Payload types live with the package
// that publishes them.
const (
	StrokeFinished = "canvas:stroke:finished"
	CanvasClear    = "canvas:clear"
	CanvasCleared  = "canvas:cleared"

	HistoryChanged = "history:changed"
	HistoryUndo    = "history:undo"
	HistoryRedo    = "history:redo"
	HistoryCleared = "history:cleared"

	ToolColor       = "tool:color"
	ToolPenWidth    = "tool:penWidth"
	ToolEraserWidth = "tool:eraserWidth"
	ToolSelect      = "tool:select"

	SelectHit = "select:hit"
)
