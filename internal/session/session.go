// Package session coordinates players and rooms: who sits where, which room
// a join lands in, and routing game commands to room actors.
package session

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/devine-backend/internal/engine"
	"github.com/DoyleJ11/devine-backend/internal/hub"
	"github.com/DoyleJ11/devine-backend/internal/room"
	"github.com/DoyleJ11/devine-backend/pkg/types"
)

var ErrNoRoom = errors.New("room not found")

const maxJoinAttempts = 16

// Transport is what the coordinator needs from the connection layer:
// broadcast groups and fan-out.
type Transport interface {
	room.Broadcaster
	room.Membership
	JoinGroup(roomID, connID string)
	LeaveGroup(roomID, connID string)
}

type Session struct {
	RoomID string
	Role   engine.Role
	Name   string
}

type Options struct {
	// ReapEmptyRooms deletes a room as soon as a disconnect leaves it with
	// no seat taken and no member.
	ReapEmptyRooms bool
}

type JoinResult struct {
	State          types.StateView
	RedirectedFrom string
}

type Service struct {
	hub       *hub.Hub
	transport Transport
	match     *Matchmaker
	opts      Options
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[string]Session
}

func NewService(h *hub.Hub, t Transport, opts Options, log *zap.Logger) *Service {
	return &Service{
		hub:       h,
		transport: t,
		match:     NewMatchmaker(h, Salons),
		opts:      opts,
		log:       log,
		sessions:  make(map[string]Session),
	}
}

// Join seats connID in roomID, or in the room the matchmaker picks when
// that seat is unavailable.
func (s *Service) Join(ctx context.Context, connID, roomID string, role engine.Role, name string) (JoinResult, error) {
	if roomID == "" || !role.Valid() {
		return JoinResult{}, engine.ErrBadInput
	}
	s.vacate(ctx, connID, false)

	target := roomID
	for range maxJoinAttempts {
		r, err := s.hub.Ensure(ctx, target)
		if err != nil {
			return JoinResult{}, err
		}

		// Enter the broadcast group first so a concurrent prune never takes
		// the new seat for a ghost.
		s.transport.JoinGroup(target, connID)
		view, err := r.Claim(ctx, connID, role, name)
		if err == nil {
			s.mu.Lock()
			s.sessions[connID] = Session{RoomID: target, Role: role, Name: name}
			s.mu.Unlock()

			res := JoinResult{State: view}
			if target != roomID {
				res.RedirectedFrom = roomID
			}
			s.log.Info("joined",
				zap.String("conn", connID),
				zap.String("room", target),
				zap.String("role", string(role)),
				zap.String("redirectedFrom", res.RedirectedFrom))
			return res, nil
		}
		s.transport.LeaveGroup(target, connID)

		switch {
		case errors.Is(err, room.ErrClosed):
			// reaped between Ensure and Claim; Ensure recreates it
		case errors.Is(err, engine.ErrRoleTaken):
			target, err = s.match.Assign(ctx, role)
			if err != nil {
				return JoinResult{}, err
			}
		default:
			return JoinResult{}, err
		}
	}
	return JoinResult{}, ErrNoRoom
}

// Start launches a round in an existing room. Rooms are only created by a
// join: a start for an unknown id has nobody to play and is dropped.
func (s *Service) Start(ctx context.Context, roomID, word string) {
	if roomID == "" {
		return
	}
	r, err := s.hub.Get(ctx, roomID)
	if err != nil || r == nil {
		s.log.Debug("start ignored", zap.String("room", roomID), zap.Error(err))
		return
	}
	if err := r.Start(ctx, word); err != nil {
		s.log.Debug("start ignored", zap.String("room", roomID), zap.Error(err))
	}
}

// Hint is the only game command with an error the sender gets to see.
func (s *Service) Hint(ctx context.Context, connID, roomID, text string) error {
	if roomID == "" || text == "" {
		return engine.ErrBadInput
	}
	r, err := s.hub.Get(ctx, roomID)
	if err != nil || r == nil {
		return ErrNoRoom
	}
	err = r.Hint(ctx, connID, text)
	if errors.Is(err, room.ErrClosed) {
		return ErrNoRoom
	}
	return err
}

// Guess is fire-and-forget: stale or malformed guesses are dropped.
func (s *Service) Guess(ctx context.Context, connID, roomID, text string) {
	if roomID == "" || text == "" {
		return
	}
	r, err := s.hub.Get(ctx, roomID)
	if err != nil || r == nil {
		return
	}
	if err := r.Guess(ctx, connID, text); err != nil {
		s.log.Debug("guess ignored", zap.String("room", roomID), zap.Error(err))
	}
}

func (s *Service) GiveUp(ctx context.Context, roomID string) {
	if roomID == "" {
		return
	}
	r, err := s.hub.Get(ctx, roomID)
	if err != nil || r == nil {
		return
	}
	if err := r.GiveUp(ctx); err != nil {
		s.log.Debug("give up ignored", zap.String("room", roomID), zap.Error(err))
	}
}

// Disconnect frees whatever seat connID held. Safe to call more than once.
func (s *Service) Disconnect(ctx context.Context, connID string) {
	s.vacate(ctx, connID, s.opts.ReapEmptyRooms)
}

func (s *Service) Session(connID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[connID]
	return sess, ok
}

func (s *Service) vacate(ctx context.Context, connID string, reap bool) {
	s.mu.Lock()
	sess, ok := s.sessions[connID]
	delete(s.sessions, connID)
	s.mu.Unlock()
	if !ok {
		return
	}

	s.transport.LeaveGroup(sess.RoomID, connID)
	r, err := s.hub.Get(ctx, sess.RoomID)
	if err != nil || r == nil {
		return
	}
	// With reap set the room closes itself when it empties, so a join racing
	// this release either lands first and keeps it open, or gets ErrClosed
	// and retries on a fresh instance.
	empty, err := r.Release(ctx, connID, sess.Role, reap)
	if err != nil {
		return
	}
	s.log.Info("left",
		zap.String("conn", connID),
		zap.String("room", sess.RoomID),
		zap.String("role", string(sess.Role)))

	if reap && empty {
		s.hub.Remove(sess.RoomID, r) // drops the registry entry
	}
}

var salonName = regexp.MustCompile(`(?i)^Salon\s+(.+)$`)

// ListRooms returns the open rooms still waiting for a player.
func (s *Service) ListRooms(ctx context.Context) ([]types.RoomInfo, error) {
	rooms, err := s.hub.Rooms(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		occ, err := r.Occupancy(ctx)
		if err != nil || occ.Status == engine.StatusEnded {
			continue
		}

		var waitingFor string
		switch {
		case occ.GiverID == "":
			waitingFor = types.WaitingForGiver
		case occ.GuesserID == "":
			waitingFor = types.WaitingForGuesser
		default:
			continue
		}

		host := occ.GiverName
		if host == "" {
			host = occ.GuesserName
		}
		if host == "" {
			host = "Quelqu’un"
		}

		color := strings.ToLower(occ.ID)
		if m := salonName.FindStringSubmatch(occ.ID); m != nil {
			color = strings.ToLower(m[1])
		}

		out = append(out, types.RoomInfo{ID: occ.ID, Color: color, Host: host, WaitingFor: waitingFor})
	}
	return out, nil
}
