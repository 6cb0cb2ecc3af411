package dashboard

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

const (
	defaultHistorySize = 100
	clientBuffer       = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type subscription struct {
	client     *client
	requestIDs []string
}

// Hub fans status updates out to websocket clients. All client state is
// owned by the Run goroutine.
type Hub struct {
	historySize int
	history     []events.StatusUpdate
	clients     map[*client]struct{}

	register   chan *client
	unregister chan *client
	subscribe  chan subscription
	broadcast  chan events.StatusUpdate
	done       chan struct{}

	log *logger.Logger
}

// NewHub keeps the last historySize updates for replay to new clients
func NewHub(historySize int) *Hub {
	if historySize <= 0 {
		historySize = defaultHistorySize
	}
	return &Hub{
		historySize: historySize,
		clients:     map[*client]struct{}{},
		register:    make(chan *client),
		unregister:  make(chan *client),
		subscribe:   make(chan subscription),
		broadcast:   make(chan events.StatusUpdate),
		done:        make(chan struct{}),
		log:         logger.Get().With("component", "dashboard_hub"),
	}
}

// Run is the hub loop. It returns when ctx is cancelled, disconnecting every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			metrics.DashboardClients.Set(float64(len(h.clients)))
			h.replay(c)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.client]; !ok {
				continue
			}
			sub.client.setFilter(sub.requestIDs)
			h.replay(sub.client)

		case update := <-h.broadcast:
			h.remember(update)
			for c := range h.clients {
				if !c.wants(update) {
					continue
				}
				select {
				case c.send <- update:
				default:
					h.log.Warnw("Dropping slow dashboard client", "remote", c.remote)
					h.drop(c)
				}
			}
		}
	}
}

// Broadcast queues update for delivery. It is dropped once the hub has stopped.
func (h *Hub) Broadcast(ctx context.Context, update events.StatusUpdate) {
	select {
	case h.broadcast <- update:
	case <-h.done:
	case <-ctx.Done():
	}
}

// ServeHTTP upgrades the request to a websocket client
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("Websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan events.StatusUpdate, clientBuffer),
		remote: r.RemoteAddr,
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) remember(update events.StatusUpdate) {
	h.history = append(h.history, update)
	if len(h.history) > h.historySize {
		h.history = h.history[len(h.history)-h.historySize:]
	}
}

func (h *Hub) replay(c *client) {
	for _, update := range h.history {
		if !c.wants(update) {
			continue
		}
		select {
		case c.send <- update:
		default:
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	metrics.DashboardClients.Set(float64(len(h.clients)))
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) requestSubscription(sub subscription) {
	select {
	case h.subscribe <- sub:
	case <-h.done:
	}
}
