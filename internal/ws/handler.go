package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/devine-backend/internal/engine"
	"github.com/DoyleJ11/devine-backend/internal/session"
	wire "github.com/DoyleJ11/devine-backend/internal/types"
	"github.com/DoyleJ11/devine-backend/pkg/types"
)

const (
	writeTimeout      = 3 * time.Second
	pingInterval      = 30 * time.Second
	disconnectTimeout = 5 * time.Second
)

type Options struct {
	OriginPatterns []string
	EventRate      rate.Limit
	EventBurst     int
	Outbox         int
}

func (o Options) withDefaults() Options {
	if o.EventRate <= 0 {
		o.EventRate = 10
	}
	if o.EventBurst <= 0 {
		o.EventBurst = 20
	}
	if o.Outbox <= 0 {
		o.Outbox = 32
	}
	return o
}

func Handler(svc *session.Service, groups *Groups, opts Options, log *zap.Logger) http.HandlerFunc {
	opts = opts.withDefaults()
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		connID := uuid.NewString()
		clog := log.With(zap.String("conn", connID))
		c := groups.register(connID, opts.Outbox)
		clog.Debug("connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		defer func() {
			groups.unregister(connID)
			dctx, dcancel := context.WithTimeout(context.Background(), disconnectTimeout)
			svc.Disconnect(dctx, connID)
			dcancel()
			clog.Debug("disconnected")
		}()

		// Writer goroutine
		go func() {
			defer cancel()
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-c.done:
					_ = conn.Close(websocket.StatusPolicyViolation, "too slow")
					return
				case frame := <-c.out:
					wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
					err := conn.Write(wctx, websocket.MessageText, frame)
					wcancel()
					if err != nil {
						return
					}
				case <-ticker.C:
					pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
					err := conn.Ping(pctx)
					pcancel()
					if err != nil {
						return
					}
				}
			}
		}()

		d := dispatcher{svc: svc, groups: groups, log: clog}
		limiter := rate.NewLimiter(opts.EventRate, opts.EventBurst)

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if ctx.Err() == nil {
						clog.Debug("read failed", zap.Error(err))
					}
				}
				return
			}

			if !limiter.Allow() {
				groups.EmitTo(connID, types.EventError, types.ErrorMessage{Message: "too many messages"})
				continue
			}

			var msg wire.ClientMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				groups.EmitTo(connID, types.EventError, types.ErrorMessage{Message: "bad json"})
				continue
			}
			d.dispatch(ctx, connID, msg)
		}
	}
}

type dispatcher struct {
	svc    *session.Service
	groups *Groups
	log    *zap.Logger
}

func (d dispatcher) dispatch(ctx context.Context, connID string, msg wire.ClientMessage) {
	switch msg.Type {
	case types.EventJoin:
		var req types.JoinRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			d.ack(connID, msg.ID, fail(engine.ErrBadInput))
			return
		}
		res, err := d.svc.Join(ctx, connID, req.RoomID, engine.Role(req.Role), req.DisplayName())
		if err != nil {
			d.ack(connID, msg.ID, fail(err))
			return
		}
		joined := types.JoinAck{OK: true, State: &res.State}
		if res.RedirectedFrom != "" {
			joined.RedirectedFrom = &res.RedirectedFrom
		}
		d.ack(connID, msg.ID, joined)

	case types.EventStart:
		var req types.StartRequest
		if d.decode(msg, &req) {
			d.svc.Start(ctx, req.RoomID, req.Word)
		}

	case types.EventHint:
		var req types.HintRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			d.ack(connID, msg.ID, fail(engine.ErrBadInput))
			return
		}
		if err := d.svc.Hint(ctx, connID, req.RoomID, req.Hint); err != nil {
			d.ack(connID, msg.ID, fail(err))
			return
		}
		d.ack(connID, msg.ID, types.Ack{OK: true})

	case types.EventGuess:
		var req types.GuessRequest
		if d.decode(msg, &req) {
			d.svc.Guess(ctx, connID, req.RoomID, req.Guess)
		}

	case types.EventGiveUp:
		var req types.GiveUpRequest
		if d.decode(msg, &req) {
			d.svc.GiveUp(ctx, req.RoomID)
		}

	default:
		d.groups.EmitTo(connID, types.EventError, types.ErrorMessage{Message: "unknown type"})
	}
}

func (d dispatcher) decode(msg wire.ClientMessage, v any) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		d.log.Debug("dropping malformed payload", zap.String("type", msg.Type), zap.Error(err))
		return false
	}
	return true
}

func (d dispatcher) ack(connID string, id json.RawMessage, ack any) {
	d.groups.deliver(connID, wire.ServerMessage{Type: types.EventAck, ID: id, Data: ack})
}

func fail(err error) types.Ack {
	code, message := session.Code(err)
	return types.Ack{OK: false, Code: code, Message: message}
}
