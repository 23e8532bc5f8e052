package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"todont/internal/service"
)

// MsgItems is the websocket message type carrying the full item list.
const MsgItems = "ITEMS"

const (
	pingInterval = 20 * time.Second
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
)

// Message is a websocket message sent to browsers and watchers.
type Message struct {
	Type string       `json:"type"`
	Data service.Data `json:"data"`
}

// hub tracks websocket clients and broadcasts item lists to them.
type hub struct {
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func newHub(logger *log.Logger) *hub {
	return &hub{
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:  make(map[*websocket.Conn]bool),
	}
}

// broadcast sends items to every connected client and returns how many
// received it. Clients that fail a write are dropped.
func (h *hub) broadcast(items []service.Item) int {
	if items == nil {
		items = []service.Item{}
	}
	b, err := json.Marshal(Message{Type: MsgItems, Data: service.Data{Items: items}})
	if err != nil {
		h.logger.Error("marshal broadcast", "err", err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.logger.Debug("ws write failed", "err", err)
			_ = c.Close()
			delete(h.clients, c)
			continue
		}
		n++
	}
	h.logger.Debug("broadcast", "type", MsgItems, "clients", n)
	return n
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) remove(c *websocket.Conn) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	return len(h.clients)
}

// closeAll disconnects every client.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
}

// serveWS upgrades the request, sends the current list and then keeps the
// connection alive until the client goes away.
func (h *hub) serveWS(w http.ResponseWriter, r *http.Request, items []service.Item) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("ws upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	if items != nil {
		b, _ := json.Marshal(Message{Type: MsgItems, Data: service.Data{Items: items}})
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
	h.mu.Unlock()
	h.logger.Debug("ws connected", "clients", total)

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				h.mu.Lock()
				err := c.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout))
				h.mu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	c.SetReadLimit(1024)
	_ = c.SetReadDeadline(time.Now().Add(readTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			total = h.remove(c)
			_ = c.Close()
			h.logger.Debug("ws disconnected", "clients", total)
			return
		}
	}
}
