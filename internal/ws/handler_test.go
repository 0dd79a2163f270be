package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/devine-backend/internal/hub"
	"github.com/DoyleJ11/devine-backend/internal/room"
	"github.com/DoyleJ11/devine-backend/internal/session"
	"github.com/DoyleJ11/devine-backend/internal/words"
	"github.com/DoyleJ11/devine-backend/pkg/types"
)

type fixedWords string

func (w fixedWords) Pick(words.PickOptions) string { return string(w) }

type frame struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

func newTestServer(t *testing.T) (*httptest.Server, *session.Service) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	groups := NewGroups(zap.NewNop())
	factory := func(ctx context.Context, id string) *room.Room {
		return room.New(ctx, id, room.Deps{Bus: groups, Members: groups, Words: fixedWords("MAISON"), MaxAttempts: 3})
	}
	h := hub.NewHub(ctx, factory, zap.NewNop())
	svc := session.NewService(h, groups, session.Options{ReapEmptyRooms: true}, zap.NewNop())

	srv := httptest.NewServer(Handler(svc, groups, Options{}, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv, svc
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ, id string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	msg := frame{Type: typ, Data: raw}
	if id != "" {
		msg.ID = json.RawMessage(id)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, msg))
}

// next reads frames until one of type typ shows up.
func next(t *testing.T, conn *websocket.Conn, typ string) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		var f frame
		require.NoError(t, wsjson.Read(ctx, conn, &f), "waiting for %s", typ)
		if f.Type == typ {
			return f
		}
	}
}

func decodeAck(t *testing.T, f frame) types.Ack {
	t.Helper()
	var ack types.Ack
	require.NoError(t, json.Unmarshal(f.Data, &ack))
	return ack
}

func decodeJoin(t *testing.T, f frame) types.JoinAck {
	t.Helper()
	var ack types.JoinAck
	require.NoError(t, json.Unmarshal(f.Data, &ack))
	return ack
}

func TestHandler_FullRound(t *testing.T) {
	srv, _ := newTestServer(t)
	giver := dial(t, srv)
	guesser := dial(t, srv)

	send(t, giver, types.EventJoin, "1", types.JoinRequest{RoomID: "R1", Role: "giver", Pseudo: "Alice"})
	f := next(t, giver, types.EventAck)
	assert.JSONEq(t, "1", string(f.ID))
	joined := decodeJoin(t, f)
	require.True(t, joined.OK)
	require.NotNil(t, joined.State.Word)
	assert.Equal(t, "MAISON", *joined.State.Word)

	send(t, guesser, types.EventJoin, "2", types.JoinRequest{RoomID: "R1", Role: "guesser", Pseudo: "Bob"})
	joined = decodeJoin(t, next(t, guesser, types.EventAck))
	require.True(t, joined.OK)
	assert.Nil(t, joined.State.Word)

	send(t, giver, types.EventStart, "", types.StartRequest{RoomID: "R1", Word: "pomme"})
	var view types.StateView
	require.NoError(t, json.Unmarshal(next(t, guesser, types.EventState).Data, &view))
	assert.Equal(t, "running", view.Status)
	assert.Nil(t, view.Word)
	require.NoError(t, json.Unmarshal(next(t, giver, types.EventState).Data, &view))
	require.NotNil(t, view.Word)
	assert.Equal(t, "POMME", *view.Word)

	send(t, giver, types.EventHint, "3", types.HintRequest{RoomID: "R1", Hint: "des pommes"})
	ack := decodeAck(t, next(t, giver, types.EventAck))
	assert.False(t, ack.OK)
	assert.Equal(t, session.CodeHintWordIncluded, ack.Code)

	send(t, giver, types.EventHint, "4", types.HintRequest{RoomID: "R1", Hint: "fruit"})
	ack = decodeAck(t, next(t, giver, types.EventAck))
	assert.True(t, ack.OK)
	var hint string
	require.NoError(t, json.Unmarshal(next(t, guesser, types.EventHint).Data, &hint))
	assert.Equal(t, "fruit", hint)

	send(t, guesser, types.EventGuess, "", types.GuessRequest{RoomID: "R1", Guess: "Pommé"})
	var guess types.GuessResult
	require.NoError(t, json.Unmarshal(next(t, giver, types.EventGuess).Data, &guess))
	assert.True(t, guess.Correct)

	var outcome types.Outcome
	require.NoError(t, json.Unmarshal(next(t, guesser, types.EventState).Data, &outcome))
	assert.Equal(t, types.Outcome{Status: "ended", Reason: "win", Word: "POMME", Attempts: 0, MaxAttempts: 3}, outcome)
}

func TestHandler_JoinAckCarriesRedirect(t *testing.T) {
	srv, _ := newTestServer(t)
	first := dial(t, srv)
	second := dial(t, srv)

	send(t, first, types.EventJoin, "1", types.JoinRequest{RoomID: "R1", Role: "giver", Pseudo: "Alice"})
	f := next(t, first, types.EventAck)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(f.Data, &raw))
	require.Contains(t, raw, "redirectedFrom")
	assert.Equal(t, "null", string(raw["redirectedFrom"]))
	assert.Nil(t, decodeJoin(t, f).RedirectedFrom)

	send(t, second, types.EventJoin, "1", types.JoinRequest{RoomID: "R1", Role: "giver", Pseudo: "Carol"})
	joined := decodeJoin(t, next(t, second, types.EventAck))
	require.True(t, joined.OK)
	require.NotNil(t, joined.RedirectedFrom)
	assert.Equal(t, "R1", *joined.RedirectedFrom)
	assert.NotEqual(t, "R1", joined.State.RoomID)
}

func TestHandler_JoinErrors(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, types.EventJoin, `"a"`, types.JoinRequest{RoomID: "", Role: "giver"})
	ack := decodeAck(t, next(t, conn, types.EventAck))
	assert.False(t, ack.OK)
	assert.Equal(t, session.CodeBadInput, ack.Code)

	send(t, conn, types.EventHint, `"b"`, types.HintRequest{RoomID: "nowhere", Hint: "fruit"})
	ack = decodeAck(t, next(t, conn, types.EventAck))
	assert.Equal(t, session.CodeNoRoom, ack.Code)
	assert.NotEmpty(t, ack.Message)
}

func TestHandler_RejectsUnknownAndMalformed(t *testing.T) {
	srv, _ := newTestServer(t)
	conn := dial(t, srv)

	send(t, conn, "game:dance", "", struct{}{})
	var em types.ErrorMessage
	require.NoError(t, json.Unmarshal(next(t, conn, types.EventError).Data, &em))
	assert.Equal(t, "unknown type", em.Message)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))
	require.NoError(t, json.Unmarshal(next(t, conn, types.EventError).Data, &em))
	assert.Equal(t, "bad json", em.Message)
}

func TestHandler_DisconnectFreesSeat(t *testing.T) {
	srv, svc := newTestServer(t)
	giver := dial(t, srv)
	guesser := dial(t, srv)

	send(t, giver, types.EventJoin, "1", types.JoinRequest{RoomID: "R1", Role: "giver", Pseudo: "Alice"})
	require.True(t, decodeAck(t, next(t, giver, types.EventAck)).OK)
	send(t, guesser, types.EventJoin, "1", types.JoinRequest{RoomID: "R1", Role: "guesser", Pseudo: "Bob"})
	require.True(t, decodeAck(t, next(t, guesser, types.EventAck)).OK)

	require.NoError(t, giver.Close(websocket.StatusNormalClosure, "bye"))

	require.Eventually(t, func() bool {
		rooms, err := svc.ListRooms(context.Background())
		return err == nil && len(rooms) == 1 && rooms[0].WaitingFor == types.WaitingForGiver
	}, 2*time.Second, 20*time.Millisecond)

	rooms, err := svc.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bob", rooms[0].Host)
}
