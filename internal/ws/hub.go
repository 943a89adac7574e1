package ws

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

type Client struct {
	ID   string
	Send chan []byte
}

func NewClient(buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{Send: make(chan []byte, buffer)}
}

// Hub é dono do mapa de clientes; só a goroutine de Run escreve nele.
// Send de um cliente é fechado exatamente uma vez, pelo hub.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	register chan *Client
	unreg    chan *Client
	sendAll  chan []byte

	log     *slog.Logger
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		sendAll:  make(chan []byte, 1024),
		log:      log.With("cmp", "ws.hub"),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	return fmt.Sprintf("c%d", h.nextID.Add(1))
}

func (h *Hub) Run() {
	h.log.Info("hub_run_start")
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client_registered", "id", c.ID, "total", total)

		case c := <-h.unreg:
			if c == nil || c.ID == "" {
				continue
			}
			if h.drop(c.ID) {
				h.log.Info("client_unregistered", "id", c.ID, "total", h.ClientCount())
			}

		case msg := <-h.sendAll:
			var slow []string
			h.mu.RLock()
			for id, c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					slow = append(slow, id)
				}
			}
			h.mu.RUnlock()
			// cliente lento é derrubado para não travar o hub
			for _, id := range slow {
				if h.drop(id) {
					h.log.Warn("client_dropped_slow", "id", id)
				}
			}

		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			h.log.Info("hub_run_stop")
			return
		}
	}
}

func (h *Hub) drop(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[id]
	if !ok {
		return false
	}
	delete(h.clients, id)
	close(c.Send)
	return true
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

// Register atribui o ID antes de entregar o cliente ao hub. Devolve false se
// o hub já parou; nesse caso o cliente não foi registrado.
func (h *Hub) Register(c *Client) bool {
	if c.ID == "" {
		c.ID = h.newID()
	}
	select {
	case <-h.stopped:
		return false
	default:
	}
	select {
	case h.register <- c:
		return true
	case <-h.stopped:
		return false
	}
}

// Unregister e Broadcast não bloqueiam depois que o hub parou.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.stopped:
	}
}

func (h *Hub) Broadcast(b []byte) {
	select {
	case h.sendAll <- b:
	case <-h.stopped:
	}
}
