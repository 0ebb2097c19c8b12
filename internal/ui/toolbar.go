package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/gogpu/gg"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/tools"
)

// Palette is the set of swatches offered by the toolbar.
var Palette = []string{"#000000", "#ff0000", "#00c000", "#0066ff", "#ffcc00", "#ffffff"}

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(gg.Hex(s.Hex).Color())
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// ToolbarState seeds the sliders.
type ToolbarState struct {
	PenWidth    float64
	EraserWidth float64
}

// NewToolbar builds the tool strip. Every control only publishes on b; the
// tools and history react to the messages.
func NewToolbar(b *bus.Bus, init ToolbarState, extra ...widget.ToolbarItem) fyne.CanvasObject {
	selectTool := func(name string) func() {
		return func() { b.Publish(bus.ToolSelect, tools.ToolSelect{Tool: name}) }
	}
	items := []widget.ToolbarItem{
		widget.NewToolbarAction(theme.DocumentCreateIcon(), selectTool("pen")),
		widget.NewToolbarAction(theme.ContentRemoveIcon(), selectTool("eraser")),
		widget.NewToolbarAction(theme.SearchIcon(), selectTool("select")),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), selectTool("undo")),
		widget.NewToolbarAction(theme.ContentRedoIcon(), selectTool("redo")),
		widget.NewToolbarAction(theme.DeleteIcon(), selectTool("clear")),
	}
	if len(extra) > 0 {
		items = append(items, widget.NewToolbarSeparator())
		items = append(items, extra...)
	}
	tb := widget.NewToolbar(items...)

	onColor := func(hex string) {
		b.Publish(bus.ToolColor, tools.ColorChange{Color: hex})
	}
	swatches := container.NewHBox()
	for _, hex := range Palette {
		swatches.Add(newColorSwatch(hex, onColor))
	}

	pen := widget.NewSlider(tools.PenMinWidth, tools.PenMaxWidth)
	pen.SetValue(init.PenWidth)
	pen.OnChanged = func(v float64) {
		b.Publish(bus.ToolPenWidth, tools.WidthChange{Width: v})
	}
	eraser := widget.NewSlider(tools.EraserMinWidth, tools.EraserMaxWidth)
	eraser.SetValue(init.EraserWidth)
	eraser.OnChanged = func(v float64) {
		b.Publish(bus.ToolEraserWidth, tools.WidthChange{Width: v})
	}
	sliderSize := fyne.NewSize(120, 35)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Pen:"),
		container.New(layout.NewGridWrapLayout(sliderSize), pen),
		widget.NewLabel("Eraser:"),
		container.New(layout.NewGridWrapLayout(sliderSize), eraser),
		layout.NewSpacer(),
	)
}
