// Package ui hosts a session in a Fyne window.
package ui

import (
	"fmt"
	"io"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/export"
	"ScreenNote/internal/logging"
	"ScreenNote/internal/session"
	"ScreenNote/internal/state"
)

type Options struct {
	Title string
	// ShareLink is shown in the status bar when the bridge is running.
	ShareLink   string
	Width       float32
	Height      float32
	PenWidth    float64
	EraserWidth float64
	Logger      *slog.Logger
}

// Dispatch runs fn on the Fyne main goroutine.
func Dispatch(fn func()) { fyne.Do(fn) }

// NewApp creates the Fyne application. Call it before building a session
// that other goroutines will reach through Dispatch.
func NewApp() fyne.App {
	return app.NewWithID("io.screennote.overlay")
}

// RunApp shows the overlay window and blocks until it is closed.
func RunApp(a fyne.App, s *session.Session, opts Options) {
	logger := logging.Component(opts.Logger, "ui")
	if opts.Title == "" {
		opts.Title = "ScreenNote"
	}
	w := a.NewWindow(opts.Title)
	if opts.Width > 0 && opts.Height > 0 {
		w.Resize(fyne.NewSize(opts.Width, opts.Height))
	}

	overlay := NewOverlayWidget(s)
	status := widget.NewLabel(statusText(s.Counts(), opts.ShareLink))
	refresh := func(any) { status.SetText(statusText(s.Counts(), opts.ShareLink)) }
	for _, topic := range []string{bus.HistoryChanged, bus.HistoryUndo, bus.HistoryRedo} {
		s.Bus.Subscribe(topic, refresh)
	}

	save := func(ext string, write func(io.Writer) error) func() {
		return func() {
			d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
				if err != nil || wc == nil {
					return
				}
				defer func() {
					if err := wc.Close(); err != nil {
						logger.Warn("closing export failed", "err", err)
					}
				}()
				if err := write(wc); err != nil {
					logger.Error("export failed", "uri", wc.URI().String(), "err", err)
					dialog.ShowError(err, w)
					return
				}
				logger.Info("exported", "uri", wc.URI().String())
			}, w)
			d.SetFileName("screennote" + ext)
			d.Show()
		}
	}
	exportPDF := save(".pdf", func(out io.Writer) error {
		width, height, _ := s.Surface.Size()
		return export.PDF(out, s.History.Past(), width, height)
	})
	exportPNG := save(".png", func(out io.Writer) error {
		return export.PNG(out, s.Surface)
	})

	toolbar := NewToolbar(s.Bus, ToolbarState{PenWidth: opts.PenWidth, EraserWidth: opts.EraserWidth},
		widget.NewToolbarAction(theme.DocumentSaveIcon(), exportPDF),
		widget.NewToolbarAction(theme.FileImageIcon(), exportPNG),
	)

	c := w.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { s.Undo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift},
		func(fyne.Shortcut) { s.Redo() })
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault},
		func(fyne.Shortcut) { s.Redo() })

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, overlay))
	w.SetOnClosed(func() {
		if err := s.Close(); err != nil {
			logger.Warn("closing session failed", "err", err)
		}
	})
	w.ShowAndRun()
}

func statusText(c state.HistoryCounts, link string) string {
	text := fmt.Sprintf("%d strokes, %d undone", c.Past, c.Future)
	if link != "" {
		text += "  |  toolbar: " + link
	}
	return text
}
