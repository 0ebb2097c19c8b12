package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ScreenNote/internal/bus"
	"ScreenNote/internal/logging"
	"ScreenNote/internal/state"
	"ScreenNote/internal/tools"
)

// Dispatcher runs fn on the goroutine that owns the session. fyne.Do is one.
type Dispatcher func(fn func())

// Command is an inbound toolbar message.
type Command struct {
	Type  string  `json:"type"`
	Tool  string  `json:"tool,omitempty"`
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Event is an outbound notification.
type Event struct {
	Type   string `json:"type"`
	Past   int    `json:"past"`
	Future int    `json:"future"`
}

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Bridge exposes the tool coordinator to remote toolbars over a WebSocket.
// Construct and Close it on the session goroutine; connections run on their
// own goroutines and reach the bus only through the dispatcher.
type Bridge struct {
	bus      *bus.Bus
	counts   func() state.HistoryCounts
	dispatch Dispatcher
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	unsubs  []func()
	server  *http.Server
}

// NewBridge subscribes to history and clear notifications on b. A nil
// dispatch runs commands on the connection goroutine.
func NewBridge(b *bus.Bus, counts func() state.HistoryCounts, dispatch Dispatcher, logger *slog.Logger) *Bridge {
	if dispatch == nil {
		dispatch = func(fn func()) { fn() }
	}
	br := &Bridge{
		bus:      b,
		counts:   counts,
		dispatch: dispatch,
		logger:   logging.Component(logger, "bridge"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local toolbars are served from file:// or other ports.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	changed := func(any) { br.broadcastCounts() }
	br.unsubs = []func(){
		b.Subscribe(bus.HistoryChanged, changed),
		b.Subscribe(bus.HistoryUndo, changed),
		b.Subscribe(bus.HistoryRedo, changed),
		b.Subscribe(bus.CanvasCleared, func(any) { br.Broadcast(Event{Type: bus.CanvasCleared}) }),
	}
	return br
}

// Handler serves the WebSocket endpoint at /ws.
func (br *Bridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", br.serveWS)
	return mux
}

// Start listens on addr and serves until ctx is done or Close is called. The
// bound address is returned so callers can advertise the real port.
func (br *Bridge) Start(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bridge listen %s: %w", addr, err)
	}
	srv := &http.Server{Handler: br.Handler(), ReadHeaderTimeout: 5 * time.Second}
	br.mu.Lock()
	br.server = srv
	br.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			br.logger.Error("bridge stopped", "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	br.logger.Info("bridge listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

func (br *Bridge) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := br.upgrader.Upgrade(w, r, nil)
	if err != nil {
		br.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	br.add(c)
	go br.writeLoop(c)

	// Greet with the current counts, read on the session goroutine.
	br.dispatch(func() { br.sendTo(c, br.countsEvent()) })
	br.readLoop(c)
}

func (br *Bridge) add(c *client) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.clients[c] = struct{}{}
	br.logger.Info("toolbar connected", "remote", c.conn.RemoteAddr().String())
}

func (br *Bridge) remove(c *client) {
	br.mu.Lock()
	defer br.mu.Unlock()
	if _, ok := br.clients[c]; !ok {
		return
	}
	delete(br.clients, c)
	close(c.send)
	_ = c.conn.Close()
	br.logger.Info("toolbar disconnected", "remote", c.conn.RemoteAddr().String())
}

func (br *Bridge) readLoop(c *client) {
	defer br.remove(c)
	for {
		var cmd Command
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				br.logger.Debug("read failed", "remote", c.conn.RemoteAddr().String(), "err", err)
			}
			return
		}
		topic, payload, err := translate(cmd)
		if err != nil {
			br.logger.Warn("dropping command", "type", cmd.Type, "err", err)
			continue
		}
		br.dispatch(func() { br.bus.Publish(topic, payload) })
	}
}

func (br *Bridge) writeLoop(c *client) {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			br.logger.Debug("write failed", "remote", c.conn.RemoteAddr().String(), "err", err)
			_ = c.conn.Close()
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = c.conn.Close()
}

// translate maps a toolbar command onto a bus topic and payload.
func translate(cmd Command) (string, any, error) {
	switch cmd.Type {
	case bus.ToolSelect:
		if cmd.Tool == "" {
			return "", nil, errors.New("missing tool")
		}
		return bus.ToolSelect, tools.ToolSelect{Tool: cmd.Tool}, nil
	case bus.ToolColor:
		return bus.ToolColor, tools.ColorChange{Color: cmd.Color}, nil
	case bus.ToolPenWidth, bus.ToolEraserWidth:
		return cmd.Type, tools.WidthChange{Width: cmd.Width}, nil
	case bus.CanvasClear:
		return bus.CanvasClear, nil, nil
	default:
		return "", nil, fmt.Errorf("unknown command %q", cmd.Type)
	}
}

func (br *Bridge) countsEvent() Event {
	ev := Event{Type: bus.HistoryChanged}
	if br.counts != nil {
		c := br.counts()
		ev.Past, ev.Future = c.Past, c.Future
	}
	return ev
}

func (br *Bridge) broadcastCounts() {
	br.Broadcast(br.countsEvent())
}

// Broadcast queues ev for every connected toolbar. Slow clients miss events
// rather than stall the caller.
func (br *Bridge) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		br.logger.Error("encode event", "type", ev.Type, "err", err)
		return
	}
	br.mu.RLock()
	defer br.mu.RUnlock()
	for c := range br.clients {
		br.queue(c, data)
	}
}

func (br *Bridge) sendTo(c *client, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	br.mu.RLock()
	defer br.mu.RUnlock()
	if _, ok := br.clients[c]; ok {
		br.queue(c, data)
	}
}

// queue must be called with br.mu held.
func (br *Bridge) queue(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		br.logger.Warn("toolbar too slow, dropping event", "remote", c.conn.RemoteAddr().String())
	}
}

// Clients reports how many toolbars are connected.
func (br *Bridge) Clients() int {
	br.mu.RLock()
	defer br.mu.RUnlock()
	return len(br.clients)
}

// Close detaches from the bus, drops every connection and stops the server
// started by Start.
func (br *Bridge) Close() error {
	for _, u := range br.unsubs {
		u()
	}
	br.unsubs = nil

	br.mu.Lock()
	srv := br.server
	br.server = nil
	for c := range br.clients {
		delete(br.clients, c)
		close(c.send)
	}
	br.mu.Unlock()

	if srv != nil {
		return srv.Close()
	}
	return nil
}
