// Package live pushes refreshed forecast reports to websocket subscribers.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/i474232898/weather-forecast-aggregation/internal/weather"
)

// Event is the message written to subscribers.
type Event struct {
	Type        string         `json:"type"`
	LocationKey string         `json:"locationKey"`
	Report      weather.Report `json:"report"`
}

type message struct {
	key     string
	payload []byte
}

type client struct {
	id     string
	conn   *websocket.Conn
	filter string // empty means every location

	mu sync.Mutex
}

func (c *client) write(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// Hub fans forecast reports out to websocket clients. It implements
// weather.Publisher.
type Hub struct {
	upgrader  websocket.Upgrader
	clients   sync.Map // id -> *client
	broadcast chan message
	done      chan struct{}
	stopOnce  sync.Once

	server *http.Server
}

// NewHub builds a hub serving /ws on port. A port <= 0 disables it and
// returns nil.
func NewHub(port int) *Hub {
	if port <= 0 {
		return nil
	}

	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		broadcast: make(chan message, 64),
		done:      make(chan struct{}),
	}
	h.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     h.Handler(),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
	return h
}

// Handler exposes the websocket endpoint.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.wsHandler)
	return mux
}

// Start runs the broadcast loop and the listener.
func (h *Hub) Start() {
	if h == nil {
		return
	}

	go h.run()

	go func() {
		log.Printf("INFO: live updates listening on %s", h.server.Addr)
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("ERROR: live server: %v", err)
		}
	}()
}

// Stop closes every client and shuts the listener down.
func (h *Hub) Stop(ctx context.Context) error {
	if h == nil {
		return nil
	}

	h.stopOnce.Do(func() { close(h.done) })

	h.clients.Range(func(key, value any) bool {
		value.(*client).conn.Close()
		return true
	})

	return h.server.Shutdown(ctx)
}

// Publish queues r for delivery. It never blocks; if the queue is full the
// report is dropped and subscribers get the next one.
func (h *Hub) Publish(r weather.Report) {
	if h == nil {
		return
	}

	key := r.Location.Key()
	payload, err := json.Marshal(Event{Type: "forecast", LocationKey: key, Report: r})
	if err != nil {
		log.Printf("ERROR: live encode %s: %v", key, err)
		return
	}

	select {
	case h.broadcast <- message{key: key, payload: payload}:
	case <-h.done:
	default:
		log.Printf("live: queue full, dropping update for %s", key)
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	n := 0
	h.clients.Range(func(key, value any) bool {
		n++
		return true
	})
	return n
}

func (h *Hub) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade: %v", err)
		return
	}

	c := &client{
		id:     uuid.NewString(),
		conn:   conn,
		filter: strings.ToLower(strings.TrimSpace(r.URL.Query().Get("location"))),
	}
	h.clients.Store(c.id, c)
	log.Printf("live: client %s connected (filter=%q, total=%d)", c.id, c.filter, h.Clients())

	defer func() {
		h.clients.Delete(c.id)
		conn.Close()
		log.Printf("live: client %s disconnected (total=%d)", c.id, h.Clients())
	}()

	// Clients only send close and ping frames; reading drives those handlers.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ERROR: websocket %s: %v", c.id, err)
			}
			return
		}
	}
}

func (h *Hub) run() {
	for {
		select {
		case msg := <-h.broadcast:
			h.deliver(msg)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) deliver(msg message) {
	key := strings.ToLower(msg.key)
	h.clients.Range(func(_, value any) bool {
		c := value.(*client)
		if c.filter != "" && c.filter != key {
			return true
		}
		if err := c.write(msg.payload); err != nil {
			log.Printf("ERROR: websocket write %s: %v", c.id, err)
			c.conn.Close()
			h.clients.Delete(c.id)
		}
		return true
	})
}
