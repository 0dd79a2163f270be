package room

import (
	"context"

	"github.com/DoyleJ11/devine-backend/internal/engine"
	"github.com/DoyleJ11/devine-backend/pkg/types"
)

// Claim prunes ghost seats, then seats connID in role. It fails with
// engine.ErrRoleTaken when the role is held or the room is full.
func (r *Room) Claim(ctx context.Context, connID string, role engine.Role, name string) (types.StateView, error) {
	reply := make(chan claimResult, 1)
	if err := r.send(ctx, claim{connID: connID, role: role, name: name, reply: reply}); err != nil {
		return types.StateView{}, err
	}
	res, err := await(ctx, r, reply)
	if err != nil {
		return types.StateView{}, err
	}
	return res.view, res.err
}

// Release frees the seat connID holds in role and reports whether the room
// is now empty: no seat taken and nobody left in its broadcast group. With
// reap set, an empty room closes itself in the same step.
func (r *Room) Release(ctx context.Context, connID string, role engine.Role, reap bool) (bool, error) {
	reply := make(chan bool, 1)
	if err := r.send(ctx, release{connID: connID, role: role, reap: reap, reply: reply}); err != nil {
		return false, err
	}
	return await(ctx, r, reply)
}

// Start begins a new round; an empty word draws one from the word source.
func (r *Room) Start(ctx context.Context, word string) error {
	return r.do(ctx, "", engine.Command{Type: engine.CmdStart, Text: word})
}

func (r *Room) Hint(ctx context.Context, from, text string) error {
	return r.do(ctx, from, engine.Command{Type: engine.CmdHint, Text: text})
}

func (r *Room) Guess(ctx context.Context, from, text string) error {
	return r.do(ctx, from, engine.Command{Type: engine.CmdGuess, Text: text})
}

func (r *Room) GiveUp(ctx context.Context) error {
	return r.do(ctx, "", engine.Command{Type: engine.CmdGiveUp})
}

func (r *Room) Occupancy(ctx context.Context) (Occupancy, error) {
	reply := make(chan Occupancy, 1)
	if err := r.send(ctx, occupancy{reply: reply}); err != nil {
		return Occupancy{}, err
	}
	return await(ctx, r, reply)
}

// Snapshot returns a copy of the game state.
func (r *Room) Snapshot(ctx context.Context) (engine.State, error) {
	reply := make(chan engine.State, 1)
	if err := r.send(ctx, snapshot{reply: reply}); err != nil {
		return engine.State{}, err
	}
	return await(ctx, r, reply)
}

func (r *Room) do(ctx context.Context, from string, cmd engine.Command) error {
	reply := make(chan error, 1)
	if err := r.send(ctx, command{from: from, cmd: cmd, reply: reply}); err != nil {
		return err
	}
	res, err := await(ctx, r, reply)
	if err != nil {
		return err
	}
	return res
}

func (r *Room) send(ctx context.Context, m Msg) error {
	if r.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case r.inbox <- m:
		return nil
	case <-r.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, r *Room, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-r.ctx.Done():
		// the last reply may land just before the room closes
		select {
		case v := <-reply:
			return v, nil
		default:
		}
		return zero, ErrClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
