package server

import (
	"encoding/binary"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/morph"
)

const writeTimeout = 2 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EncodeFrame serializes a field for the renderer: a little-endian uint32
// particle count, then 3P float32 positions, then 3P float32 colors.
func EncodeFrame(dst []byte, f *morph.Field) []byte {
	n := 4 + 4*(len(f.Positions)+len(f.Colors))
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	binary.LittleEndian.PutUint32(dst, uint32(f.Len()))
	off := 4
	for _, v := range f.Positions {
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
		off += 4
	}
	for _, v := range f.Colors {
		binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(v))
		off += 4
	}
	return dst
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub fans field frames out to WebSocket clients. Each client holds at most
// one pending frame; a slow client only ever sees the newest one.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	buf     []byte
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*client),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish encodes f and queues it for every client. It never blocks.
func (h *Hub) Publish(f *morph.Field) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	h.buf = EncodeFrame(h.buf, f)
	for _, c := range h.clients {
		msg := append([]byte(nil), h.buf...)
		select {
		case c.send <- msg:
		default:
			// Drop the stale frame and queue the fresh one.
			select {
			case <-c.send:
			default:
			}
			select {
			case c.send <- msg:
			default:
			}
		}
	}
}

// ServeHTTP upgrades the request and streams frames until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, 1),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
	log.Printf("Field client %s connected", c.id)

	done := make(chan struct{})
	go h.writeLoop(c, done)

	// Reads only detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	close(done)
	conn.Close()
	log.Printf("Field client %s disconnected", c.id)
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}
