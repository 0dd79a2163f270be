package room

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/devine-backend/internal/engine"
	"github.com/DoyleJ11/devine-backend/internal/store"
	"github.com/DoyleJ11/devine-backend/internal/words"
	"github.com/DoyleJ11/devine-backend/pkg/types"
)

var ErrClosed = errors.New("room closed")

// Broadcaster delivers events to connections. Implementations must not
// block: the room loop calls them inline.
type Broadcaster interface {
	EmitToRoom(roomID, event string, payload any, exclude ...string)
	EmitTo(connID, event string, payload any)
}

// Membership is the transport's view of who is in a room's broadcast group.
// It is the source of truth for seat occupancy.
type Membership interface {
	MembersOf(roomID string) []string
}

type Deps struct {
	Bus         Broadcaster
	Members     Membership
	Words       words.Source
	Recorder    store.Recorder
	MaxAttempts int
	Log         *zap.Logger
}

type Seat struct {
	Role engine.Role
	Name string
}

// Occupancy is a pruned read of who holds which seat.
type Occupancy struct {
	ID          string
	Status      engine.Status
	GiverID     string
	GuesserID   string
	GiverName   string
	GuesserName string
}

type Msg interface{ isRoomMsg() }

type claim struct {
	connID string
	role   engine.Role
	name   string
	reply  chan claimResult
}

type claimResult struct {
	view types.StateView
	err  error
}

type release struct {
	connID string
	role   engine.Role
	reap   bool
	reply  chan bool // true once nobody is left
}

type command struct {
	from  string
	cmd   engine.Command
	reply chan error
}

type occupancy struct{ reply chan Occupancy }

type snapshot struct{ reply chan engine.State }

func (claim) isRoomMsg()     {}
func (release) isRoomMsg()   {}
func (command) isRoomMsg()   {}
func (occupancy) isRoomMsg() {}
func (snapshot) isRoomMsg()  {}

// Room owns the game state of one room. Every mutation runs on its own
// goroutine, one message at a time.
type Room struct {
	id     string
	inbox  chan Msg
	state  engine.State
	seats  map[string]Seat
	deps   Deps
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, id string, deps Deps) *Room {
	ctx, cancel := context.WithCancel(parent)
	if deps.Recorder == nil {
		deps.Recorder = store.Discard{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	r := &Room{
		id:     id,
		inbox:  make(chan Msg, 64),
		state:  engine.NewState(deps.Words.Pick(words.DefaultPick), deps.MaxAttempts),
		seats:  make(map[string]Seat),
		deps:   deps,
		log:    deps.Log.With(zap.String("room", id)),
		ctx:    ctx,
		cancel: cancel,
	}

	go r.loop()
	return r
}

func (r *Room) ID() string { return r.id }

// Close stops the loop. Pending and later calls fail with ErrClosed.
func (r *Room) Close() { r.cancel() }

func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case m := <-r.inbox:
			if r.ctx.Err() != nil {
				return
			}
			switch msg := m.(type) {
			case claim:
				view, err := r.claim(msg.connID, msg.role, msg.name)
				msg.reply <- claimResult{view: view, err: err}

			case release:
				r.state = r.state.Release(msg.role, msg.connID)
				delete(r.seats, msg.connID)
				members := r.prune()
				empty := r.state.Empty() && len(members) == 0
				msg.reply <- empty
				if empty && msg.reap {
					// Close before taking another message: a claim queued
					// behind this release must fail with ErrClosed.
					r.log.Debug("room emptied, closing")
					r.cancel()
					return
				}

			case command:
				msg.reply <- r.apply(msg.from, msg.cmd)

			case occupancy:
				r.prune()
				msg.reply <- r.occupancy()

			case snapshot:
				// test-only: reflect internal state without data races
				msg.reply <- r.state
			}
		}
	}
}

// prune drops seats held by connections that left the broadcast group and
// returns the live members.
func (r *Room) prune() []string {
	members := r.deps.Members.MembersOf(r.id)
	r.state = r.state.PruneGhosts(members)

	live := make(map[string]bool, len(members))
	for _, id := range members {
		live[id] = true
	}
	for id := range r.seats {
		if !live[id] {
			delete(r.seats, id)
		}
	}
	return members
}

func (r *Room) claim(connID string, role engine.Role, name string) (types.StateView, error) {
	r.prune()
	next, err := r.state.Claim(role, connID)
	if err != nil {
		return types.StateView{}, err
	}
	r.state = next
	r.seats[connID] = Seat{Role: role, Name: name}
	r.log.Debug("seat claimed", zap.String("conn", connID), zap.String("role", string(role)))
	return r.viewFor(connID), nil
}

func (r *Room) apply(from string, cmd engine.Command) error {
	before := r.state
	if cmd.Type == engine.CmdStart && strings.TrimSpace(cmd.Text) == "" {
		cmd.Text = r.deps.Words.Pick(words.DefaultPick)
	}

	events, next, err := engine.Apply(r.state, cmd)
	r.state = next
	if err != nil {
		return err
	}

	for _, ev := range events {
		r.publish(from, before, ev)
	}
	return nil
}

func (r *Room) publish(from string, before engine.State, ev engine.Event) {
	switch ev.Type {
	case engine.EvtRoundStarted:
		for _, id := range r.deps.Members.MembersOf(r.id) {
			r.deps.Bus.EmitTo(id, types.EventState, r.viewFor(id))
		}

	case engine.EvtHintAccepted:
		r.deps.Bus.EmitToRoom(r.id, types.EventHint, ev.Text, from)

	case engine.EvtGuessed:
		r.deps.Bus.EmitToRoom(r.id, types.EventGuess, types.GuessResult{Guess: ev.Text, Correct: ev.Correct})

	case engine.EvtRoundEnded:
		r.deps.Bus.EmitToRoom(r.id, types.EventState, types.Outcome{
			Status:      string(r.state.Status),
			Reason:      string(ev.Reason),
			Word:        r.state.Word,
			Attempts:    r.state.Attempts,
			MaxAttempts: r.state.MaxAttempts,
		})
		if before.Status != engine.StatusEnded {
			r.record(ev.Reason)
		}
		r.log.Info("round ended",
			zap.String("reason", string(ev.Reason)),
			zap.Int("attempts", r.state.Attempts))
	}
}

func (r *Room) record(reason engine.Reason) {
	occ := r.occupancy()
	r.deps.Recorder.Record(store.RoundResult{
		RoomID:      r.id,
		Word:        r.state.Word,
		Reason:      string(reason),
		Attempts:    r.state.Attempts,
		MaxAttempts: r.state.MaxAttempts,
		Giver:       occ.GiverName,
		Guesser:     occ.GuesserName,
		EndedAt:     time.Now().UTC(),
	})
}

func (r *Room) occupancy() Occupancy {
	return Occupancy{
		ID:          r.id,
		Status:      r.state.Status,
		GiverID:     r.state.GiverID,
		GuesserID:   r.state.GuesserID,
		GiverName:   r.seats[r.state.GiverID].Name,
		GuesserName: r.seats[r.state.GuesserID].Name,
	}
}

func (r *Room) viewFor(connID string) types.StateView {
	seat := r.seats[connID]
	view := types.StateView{
		RoomID:      r.id,
		Role:        string(seat.Role),
		Status:      string(r.state.Status),
		Guesses:     []string{},
		Attempts:    r.state.Attempts,
		MaxAttempts: r.state.MaxAttempts,
	}
	if seat.Role == engine.RoleGiver {
		word := r.state.Word
		view.Word = &word
	}
	return view
}
