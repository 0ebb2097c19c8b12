package net

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/state"
	"ScreenNote/internal/tools"
)

// uiThread collects dispatched work so the test goroutine can run it, the way
// a desktop main loop would.
type uiThread chan func()

func (u uiThread) dispatch(fn func()) { u <- fn }

func (u uiThread) runOne(t *testing.T) {
	t.Helper()
	select {
	case fn := <-u:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched work")
	}
}

type fixture struct {
	bus    *bus.Bus
	ui     uiThread
	bridge *Bridge
	counts state.HistoryCounts
	conn   *websocket.Conn
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{bus: bus.New(nil), ui: make(uiThread, 16)}
	f.bridge = NewBridge(f.bus, func() state.HistoryCounts { return f.counts }, f.ui.dispatch, nil)
	srv := httptest.NewServer(f.bridge.Handler())
	t.Cleanup(func() {
		_ = f.bridge.Close()
		srv.Close()
	})

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	f.conn = conn

	// The greeting is dispatched once the client is registered.
	f.ui.runOne(t)
	if ev := f.read(t); ev.Type != bus.HistoryChanged {
		t.Fatalf("greeting = %+v, want history:changed", ev)
	}
	return f
}

func (f *fixture) read(t *testing.T) Event {
	t.Helper()
	_ = f.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := f.conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return ev
}

func TestBridge_CommandsReachBus(t *testing.T) {
	f := newFixture(t)
	var got []any
	for _, topic := range []string{bus.ToolSelect, bus.ToolColor, bus.ToolPenWidth, bus.ToolEraserWidth, bus.CanvasClear} {
		f.bus.Subscribe(topic, func(p any) { got = append(got, topic, p) })
	}

	cmds := []Command{
		{Type: "tool:select", Tool: "eraser"},
		{Type: "tool:color", Color: "#00ff00"},
		{Type: "tool:penWidth", Width: 7},
		{Type: "tool:eraserWidth", Width: 30},
		{Type: "canvas:clear"},
	}
	for _, c := range cmds {
		if err := f.conn.WriteJSON(c); err != nil {
			t.Fatalf("WriteJSON() error = %v", err)
		}
	}
	for range cmds {
		f.ui.runOne(t)
	}

	want := []any{
		bus.ToolSelect, tools.ToolSelect{Tool: "eraser"},
		bus.ToolColor, tools.ColorChange{Color: "#00ff00"},
		bus.ToolPenWidth, tools.WidthChange{Width: 7},
		bus.ToolEraserWidth, tools.WidthChange{Width: 30},
		bus.CanvasClear, nil,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestBridge_UnknownCommandDropped(t *testing.T) {
	f := newFixture(t)
	published := 0
	f.bus.Subscribe(bus.ToolSelect, func(any) { published++ })

	_ = f.conn.WriteJSON(Command{Type: "tool:explode"})
	_ = f.conn.WriteJSON(Command{Type: "tool:select"})
	_ = f.conn.WriteJSON(Command{Type: "tool:select", Tool: "pen"})
	f.ui.runOne(t)

	if published != 1 {
		t.Errorf("published %d, want only the valid command", published)
	}
	select {
	case <-f.ui:
		t.Error("invalid commands should not be dispatched")
	default:
	}
}

func TestBridge_BroadcastsHistoryAndClears(t *testing.T) {
	f := newFixture(t)

	f.counts = state.HistoryCounts{Past: 3, Future: 1}
	f.bus.Publish(bus.HistoryUndo, state.Entry{})
	if ev := f.read(t); ev.Type != bus.HistoryChanged || ev.Past != 3 || ev.Future != 1 {
		t.Errorf("got %+v, want history:changed 3/1", ev)
	}

	f.bus.Publish(bus.CanvasCleared, nil)
	if ev := f.read(t); ev.Type != bus.CanvasCleared {
		t.Errorf("got %+v, want canvas:cleared", ev)
	}
}

func TestBridge_CloseDetaches(t *testing.T) {
	f := newFixture(t)
	if f.bridge.Clients() != 1 {
		t.Fatalf("Clients() = %d, want 1", f.bridge.Clients())
	}
	before := f.bus.Count(bus.HistoryChanged)

	if err := f.bridge.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if f.bus.Count(bus.HistoryChanged) != before-1 {
		t.Error("bridge still subscribed after Close")
	}
	if f.bridge.Clients() != 0 {
		t.Errorf("Clients() = %d after Close", f.bridge.Clients())
	}
	_ = f.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := f.conn.ReadMessage(); err == nil {
		t.Error("expected the connection to be closed")
	}
}

func TestBridge_Start(t *testing.T) {
	b := bus.New(nil)
	br := NewBridge(b, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr, err := br.Start(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer br.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr.String()+"/ws", nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil || ev.Type != bus.HistoryChanged || ev.Past != 0 {
		t.Errorf("greeting = %+v err=%v", ev, err)
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		cmd     Command
		topic   string
		payload any
		wantErr bool
	}{
		{Command{Type: "tool:select", Tool: "undo"}, bus.ToolSelect, tools.ToolSelect{Tool: "undo"}, false},
		{Command{Type: "tool:penWidth", Width: 2}, bus.ToolPenWidth, tools.WidthChange{Width: 2}, false},
		{Command{Type: "canvas:clear"}, bus.CanvasClear, nil, false},
		{Command{Type: "tool:select"}, "", nil, true},
		{Command{Type: "history:changed"}, "", nil, true},
	}
	for _, tt := range tests {
		topic, payload, err := translate(tt.cmd)
		if (err != nil) != tt.wantErr {
			t.Errorf("translate(%+v) err = %v, wantErr %v", tt.cmd, err, tt.wantErr)
			continue
		}
		if topic != tt.topic || payload != tt.payload {
			t.Errorf("translate(%+v) = %q %#v, want %q %#v", tt.cmd, topic, payload, tt.topic, tt.payload)
		}
	}
}
