package hub

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"

	"github.com/DoyleJ11/devine-backend/internal/room"
)

var ErrShutdown = errors.New("hub shut down")

// Factory builds the actor for a room id the hub has never seen.
type Factory func(ctx context.Context, id string) *room.Room

type HubMsg interface{ isHubMsg() }

type GetRoom struct {
	ID    string
	Reply chan *room.Room
}

type EnsureRoom struct {
	ID    string
	Reply chan *room.Room
}

// RemoveRoom deletes ID only while it still maps to Room.
type RemoveRoom struct {
	ID   string
	Room *room.Room
}

type ListRooms struct {
	Reply chan []*room.Room
}

type ShutdownHub struct{}

func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (ListRooms) isHubMsg()   {}
func (ShutdownHub) isHubMsg() {}

// Hub is the room registry. A single goroutine owns the id -> room map and
// remembers insertion order, which is the order matchmaking scans rooms in.
type Hub struct {
	inbox   chan HubMsg
	rooms   map[string]*room.Room
	order   []string
	factory Factory
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, factory Factory, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		rooms:   make(map[string]*room.Room),
		factory: factory,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetRoom:
				msg.Reply <- h.live(msg.ID) // May be nil

			case EnsureRoom:
				if r := h.live(msg.ID); r != nil {
					msg.Reply <- r
					break
				}
				r := h.factory(h.ctx, msg.ID)
				h.rooms[msg.ID] = r
				h.order = append(h.order, msg.ID)
				h.log.Debug("room created", zap.String("room", msg.ID))
				msg.Reply <- r

			case RemoveRoom:
				if r := h.rooms[msg.ID]; r == nil || r != msg.Room {
					break
				}
				h.evict(msg.ID)
				msg.Room.Close()
				h.log.Debug("room removed", zap.String("room", msg.ID))

			case ListRooms:
				out := make([]*room.Room, 0, len(h.order))
				for _, id := range slices.Clone(h.order) {
					if r := h.live(id); r != nil {
						out = append(out, r)
					}
				}
				msg.Reply <- out

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

// live returns the room for id unless it closed itself, in which case the
// entry is dropped so Ensure can start a fresh instance.
func (h *Hub) live(id string) *room.Room {
	r := h.rooms[id]
	if r == nil {
		return nil
	}
	select {
	case <-r.Done():
		h.evict(id)
		return nil
	default:
		return r
	}
}

func (h *Hub) evict(id string) {
	delete(h.rooms, id)
	h.order = slices.DeleteFunc(h.order, func(o string) bool { return o == id })
}

func (h *Hub) shutdown() {
	for _, r := range h.rooms {
		r.Close()
	}
	clear(h.rooms)
	h.order = nil
}

// Get returns the room for id, or nil.
func (h *Hub) Get(ctx context.Context, id string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	return request(ctx, h, GetRoom{ID: id, Reply: reply}, reply)
}

// Ensure returns the room for id, creating it when absent.
func (h *Hub) Ensure(ctx context.Context, id string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	return request(ctx, h, EnsureRoom{ID: id, Reply: reply}, reply)
}

// Rooms lists rooms in creation order.
func (h *Hub) Rooms(ctx context.Context) ([]*room.Room, error) {
	reply := make(chan []*room.Room, 1)
	return request(ctx, h, ListRooms{Reply: reply}, reply)
}

func (h *Hub) Remove(id string, r *room.Room) {
	select {
	case h.inbox <- RemoveRoom{ID: id, Room: r}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.ctx.Done():
	}
}

func request[T any](ctx context.Context, h *Hub, msg HubMsg, reply <-chan T) (T, error) {
	var zero T
	select {
	case h.inbox <- msg:
	case <-h.ctx.Done():
		return zero, ErrShutdown
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case v := <-reply:
		return v, nil
	case <-h.ctx.Done():
		return zero, ErrShutdown
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
