package live

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yerassyl04/rhythm-duel/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// SnapshotMessage is the frame pushed to viewers on every committed mutation.
type SnapshotMessage struct {
	Type    string             `json:"type"`
	Payload *models.MatchState `json:"payload"`
	MatchID string             `json:"match_id"`
}

// Client is one live viewer connection, owned by the hub from registration
// until close, error or failed send.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
	Room string
	ID   string

	mu     sync.Mutex
	closed bool
}

func (c *Client) markClosed() (alreadyClosed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	c.closed = true
	close(c.Send)
	return false
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Hub fans committed snapshots out to every viewer of a match. Rooms are
// keyed by match id; the latest serialized snapshot per room is kept so a
// freshly registered viewer receives state immediately.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu     sync.RWMutex
	rooms  map[string]map[*Client]bool
	latest map[string][]byte
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		latest:     make(map[string][]byte),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			total := len(h.rooms[client.Room])
			failed := false
			if snapshot := h.latest[client.Room]; snapshot != nil {
				select {
				case client.Send <- snapshot:
				default:
					// Could not even queue the initial snapshot: drop the
					// connection rather than leave a half-registered viewer.
					failed = true
				}
			}
			h.mu.Unlock()
			if failed {
				h.drop(client)
			} else {
				log.Printf("viewer %s registered to match %s (%d connected)", client.ID, client.Room, total)
			}

		case client := <-h.Unregister:
			h.remove(client)
		}
	}
}

// BroadcastSnapshot serializes the snapshot once and pushes it to every
// viewer of the match. Dead viewers are collected during the iteration and
// dropped afterwards; a failure on one connection never blocks the others
// and never reaches the caller that committed the mutation.
func (h *Hub) BroadcastSnapshot(matchID string, snapshot *models.MatchState) {
	message, err := json.Marshal(SnapshotMessage{
		Type:    "MATCH_STATE",
		Payload: snapshot,
		MatchID: matchID,
	})
	if err != nil {
		log.Printf("error marshalling snapshot for match %s: %v", matchID, err)
		return
	}

	h.mu.Lock()
	h.latest[matchID] = message
	roomClients := h.rooms[matchID]
	var failed []*Client
	for client := range roomClients {
		if client.isClosed() {
			failed = append(failed, client)
			continue
		}
		select {
		case client.Send <- message:
		default:
			failed = append(failed, client)
		}
	}
	h.mu.Unlock()

	for _, client := range failed {
		h.drop(client)
	}
}

// drop closes a failed connection best effort and removes it from its room.
func (h *Hub) drop(client *Client) {
	h.remove(client)
	client.Conn.Close()
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.Room]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	client.markClosed()
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.Room)
		log.Printf("match %s room closed, no viewers left", client.Room)
	}
}

// RoomSize reports the number of live viewers of a match.
func (h *Hub) RoomSize(matchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[matchID])
}

// ReadPump drains inbound frames. Viewers send nothing meaningful; reads
// exist only to detect closes and keep pong handling alive.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("viewer %s read error: %v", c.ID, err)
			}
			return
		}
	}
}

// WritePump delivers queued frames and pings the peer.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("viewer %s write error: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
