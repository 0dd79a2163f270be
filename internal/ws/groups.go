package ws

import (
	"encoding/json"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	wire "github.com/DoyleJ11/devine-backend/internal/types"
)

// client is one live websocket as seen by the fan-out side. out is never
// closed; done is closed once the connection must go away.
type client struct {
	id   string
	out  chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) kick() { c.once.Do(func() { close(c.done) }) }

// Groups tracks connections and the room broadcast group each one is in.
// Sends never block: a connection whose outbox is full gets kicked.
type Groups struct {
	mu      sync.RWMutex
	clients map[string]*client
	rooms   map[string]map[string]struct{}
	log     *zap.Logger
}

func NewGroups(log *zap.Logger) *Groups {
	return &Groups{
		clients: make(map[string]*client),
		rooms:   make(map[string]map[string]struct{}),
		log:     log,
	}
}

func (g *Groups) register(id string, outbox int) *client {
	c := &client{id: id, out: make(chan []byte, outbox), done: make(chan struct{})}
	g.mu.Lock()
	g.clients[id] = c
	g.mu.Unlock()
	return c
}

// unregister drops id from every group it is in.
func (g *Groups) unregister(id string) {
	g.mu.Lock()
	c := g.clients[id]
	delete(g.clients, id)
	for roomID, members := range g.rooms {
		delete(members, id)
		if len(members) == 0 {
			delete(g.rooms, roomID)
		}
	}
	g.mu.Unlock()
	if c != nil {
		c.kick()
	}
}

func (g *Groups) JoinGroup(roomID, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.clients[connID]; !ok {
		return
	}
	members := g.rooms[roomID]
	if members == nil {
		members = make(map[string]struct{})
		g.rooms[roomID] = members
	}
	members[connID] = struct{}{}
}

func (g *Groups) LeaveGroup(roomID, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	members := g.rooms[roomID]
	delete(members, connID)
	if len(members) == 0 {
		delete(g.rooms, roomID)
	}
}

func (g *Groups) MembersOf(roomID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Sorted(maps.Keys(g.rooms[roomID]))
}

func (g *Groups) EmitToRoom(roomID, event string, payload any, exclude ...string) {
	frame, err := json.Marshal(wire.ServerMessage{Type: event, Data: payload})
	if err != nil {
		g.log.Error("encode frame", zap.String("event", event), zap.Error(err))
		return
	}

	g.mu.RLock()
	targets := make([]*client, 0, len(g.rooms[roomID]))
	for id := range g.rooms[roomID] {
		if slices.Contains(exclude, id) {
			continue
		}
		if c := g.clients[id]; c != nil {
			targets = append(targets, c)
		}
	}
	g.mu.RUnlock()

	for _, c := range targets {
		g.push(c, frame)
	}
}

func (g *Groups) EmitTo(connID, event string, payload any) {
	g.deliver(connID, wire.ServerMessage{Type: event, Data: payload})
}

func (g *Groups) deliver(connID string, msg wire.ServerMessage) {
	frame, err := json.Marshal(msg)
	if err != nil {
		g.log.Error("encode frame", zap.String("event", msg.Type), zap.Error(err))
		return
	}
	g.mu.RLock()
	c := g.clients[connID]
	g.mu.RUnlock()
	if c != nil {
		g.push(c, frame)
	}
}

func (g *Groups) push(c *client, frame []byte) {
	select {
	case <-c.done:
	case c.out <- frame:
	default:
		g.log.Warn("outbox full, dropping connection", zap.String("conn", c.id))
		c.kick()
	}
}
