package ui

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/session"
	"ScreenNote/internal/tools"
)

// mousePointer is the pointer id used for the primary mouse button. Fyne
// reports a single mouse, so one id is enough.
const mousePointer = 1

// OverlayWidget shows the session surface and feeds pointer input to the
// session's tool coordinator.
type OverlayWidget struct {
	widget.BaseWidget
	session *session.Session
	raster  *canvas.Raster

	dragging bool
	last     fyne.Position
}

var _ fyne.Widget = (*OverlayWidget)(nil)
var _ fyne.Draggable = (*OverlayWidget)(nil)
var _ desktop.Mouseable = (*OverlayWidget)(nil)

func NewOverlayWidget(s *session.Session) *OverlayWidget {
	o := &OverlayWidget{session: s}
	o.raster = canvas.NewRaster(func(int, int) image.Image {
		return s.Surface.Image()
	})
	o.ExtendBaseWidget(o)

	repaint := func(any) { o.raster.Refresh() }
	for _, topic := range []string{bus.HistoryUndo, bus.HistoryRedo, bus.CanvasCleared} {
		s.Bus.Subscribe(topic, repaint)
	}
	return o
}

func event(pos fyne.Position) tools.PointerEvent {
	return tools.PointerEvent{
		PointerID: mousePointer,
		X:         float64(pos.X),
		Y:         float64(pos.Y),
		Time:      time.Now(),
	}
}

func (o *OverlayWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	o.last = e.Position
	o.session.Tools.PointerDown(event(e.Position))
	o.raster.Refresh()
}

func (o *OverlayWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	o.release(e.Position)
}

func (o *OverlayWidget) Dragged(e *fyne.DragEvent) {
	o.dragging = true
	o.last = e.Position
	o.session.Tools.PointerMove(event(e.Position))
	o.raster.Refresh()
}

// DragEnd fires when a drag leaves the window or is released; either way
// the stroke is sealed.
func (o *OverlayWidget) DragEnd() {
	if o.dragging {
		o.release(o.last)
	}
}

func (o *OverlayWidget) release(pos fyne.Position) {
	o.dragging = false
	o.session.Tools.PointerUp(event(pos))
	o.raster.Refresh()
}

func (o *OverlayWidget) CreateRenderer() fyne.WidgetRenderer {
	return &overlayRenderer{overlay: o}
}

// scale reports the display factor of the canvas holding the overlay.
func (o *OverlayWidget) scale() float64 {
	app := fyne.CurrentApp()
	if app == nil {
		return 1
	}
	if c := app.Driver().CanvasForObject(o); c != nil && c.Scale() > 0 {
		return float64(c.Scale())
	}
	return 1
}

type overlayRenderer struct {
	overlay *OverlayWidget
}

func (r *overlayRenderer) Layout(size fyne.Size) {
	o := r.overlay
	o.raster.Resize(size)
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	w, h, scale := o.session.Surface.Size()
	next := o.scale()
	if w != float64(size.Width) || h != float64(size.Height) || scale != next {
		o.session.Resize(float64(size.Width), float64(size.Height), next)
		o.raster.Refresh()
	}
}

func (r *overlayRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *overlayRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.overlay.raster}
}

func (r *overlayRenderer) Refresh() {
	r.overlay.raster.Refresh()
}

func (r *overlayRenderer) Destroy() {}
