package http

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"trivia-arena-service/internal/app"
	"trivia-arena-service/internal/domain"
)

// WSHandler wires websocket connections into the round coordinator.
type WSHandler struct {
	coordinator *app.Coordinator
	upgrader    websocket.Upgrader
}

func NewWSHandler(coordinator *app.Coordinator) *WSHandler {
	return &WSHandler{
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Index *int   `json:"index"`
	Genre string `json:"genre"`
}

type stateMessage struct {
	Type  string           `json:"type"`
	State domain.StateView `json:"state"`
}

var errConnClosed = errors.New("connection closed")

// client owns the outbound half of one websocket. A single writer goroutine
// drains send, so broadcasts never write to the socket concurrently.
type client struct {
	conn *websocket.Conn
	send chan stateMessage
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan stateMessage, 16),
		done: make(chan struct{}),
	}
}

// Send enqueues a snapshot without blocking the broadcast path. Under
// pressure the oldest pending snapshot is dropped; only the latest state
// matters to a client.
func (c *client) Send(view domain.StateView) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	msg := stateMessage{Type: "state", State: view}
	select {
	case c.send <- msg:
		return nil
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.done:
		return errConnClosed
	}
}

func (c *client) writeLoop() {
	defer c.close()
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// ServeWS upgrades the request and runs the read loop. Malformed messages
// are no-ops; the connection stays open for subsequent valid ones.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	c := newClient(conn)
	go c.writeLoop()
	defer c.close()

	var participantID string
	defer func() {
		if participantID != "" {
			h.coordinator.Leave(participantID)
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		switch inbound.Type {
		case "join":
			if participantID != "" {
				continue
			}
			name := inbound.Name
			if name == "" {
				name = "Guest"
			}
			participantID = h.coordinator.Join(name, c).ID
		case "answer":
			if participantID == "" || inbound.Index == nil {
				continue
			}
			h.coordinator.SubmitAnswer(participantID, *inbound.Index)
		case "genre":
			if inbound.Genre != "" {
				h.coordinator.SetTopic(inbound.Genre)
			}
		}
	}
}
