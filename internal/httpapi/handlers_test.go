package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/devine-backend/internal/store"
	"github.com/DoyleJ11/devine-backend/internal/words"
	"github.com/DoyleJ11/devine-backend/pkg/types"
)

type fakeRooms struct {
	rooms []types.RoomInfo
	err   error
}

func (f fakeRooms) ListRooms(context.Context) ([]types.RoomInfo, error) { return f.rooms, f.err }

type fakeArchive struct {
	gotLimit int
}

func (f *fakeArchive) Recent(_ context.Context, limit int) ([]store.RoundResult, error) {
	f.gotLimit = limit
	return []store.RoundResult{{RoomID: "R1", Word: "POMME", Reason: "win"}}, nil
}

func newRouter(d Deps) http.Handler {
	if d.Rooms == nil {
		d.Rooms = fakeRooms{}
	}
	if d.Words == nil {
		d.Words = words.NewCorpus([]string{"maison", "jardin", "bateau", "parlerions", "porte-clé"}, 1)
	}
	d.Socket = http.NotFoundHandler()
	d.PublicURL = "https://devine.example/"
	d.Log = zap.NewNop()
	return SetupRoutes(d)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h := newRouter(Deps{})
	assert.Equal(t, http.StatusOK, get(t, h, "/healthz").Code)

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		OK   bool   `json:"ok"`
		Time string `json:"time"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.OK)
	assert.NotEmpty(t, body.Time)
}

func TestRooms(t *testing.T) {
	info := types.RoomInfo{ID: "Salon Kiwi", Color: "kiwi", Host: "Alice", WaitingFor: types.WaitingForGuesser}
	rec := get(t, newRouter(Deps{Rooms: fakeRooms{rooms: []types.RoomInfo{info}}}), "/api/rooms")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"rooms":[{"id":"Salon Kiwi","color":"kiwi","host":"Alice","waitingFor":"devineur"}]}`, rec.Body.String())

	rec = get(t, newRouter(Deps{}), "/api/rooms")
	assert.JSONEq(t, `{"rooms":[]}`, rec.Body.String())

	rec = get(t, newRouter(Deps{Rooms: fakeRooms{err: errors.New("boom")}}), "/api/rooms")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWords(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"defaults keep hyphens, drop conjugations", "", []string{"bateau", "jardin", "maison", "porte-clé"}},
		{"no hyphen", "?allowHyphen=false", []string{"bateau", "jardin", "maison"}},
		{"uncommon keeps conjugations", "?common=false&allowHyphen=false", []string{"bateau", "jardin", "maison", "parlerions"}},
		{"exclude is case-insensitive", "?allowHyphen=false&exclude=MAISON,%20jardin", []string{"bateau"}},
		{"count caps output", "?allowHyphen=false&count=2", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newRouter(Deps{}), "/api/words"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)
			var body struct {
				Count int      `json:"count"`
				Words []string `json:"words"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, len(body.Words), body.Count)
			if tt.want == nil {
				assert.Len(t, body.Words, 2)
				return
			}
			assert.ElementsMatch(t, tt.want, body.Words)
		})
	}
}

func TestWords_ModeSelectsCoreVocabulary(t *testing.T) {
	corpus := words.NewCorpus([]string{"bateau"}, 1).WithCore([]string{"maison", "jardin"})
	h := newRouter(Deps{Words: corpus})

	decode := func(rec *httptest.ResponseRecorder) []string {
		var body struct {
			Words []string `json:"words"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		return body.Words
	}

	assert.ElementsMatch(t, []string{"bateau", "jardin", "maison"}, decode(get(t, h, "/api/words")))
	assert.ElementsMatch(t, []string{"bateau", "jardin", "maison"}, decode(get(t, h, "/api/words?mode=core")))
	assert.Equal(t, []string{"bateau"}, decode(get(t, h, "/api/words?mode=all")))
}

func TestRoomQR(t *testing.T) {
	rec := get(t, newRouter(Deps{}), "/api/rooms/Salon%20Kiwi/qr")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])
}

func TestRounds(t *testing.T) {
	rec := get(t, newRouter(Deps{}), "/api/rounds")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"rounds":[]}`, rec.Body.String())

	archive := &fakeArchive{}
	rec = get(t, newRouter(Deps{Archive: archive}), "/api/rounds?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, archive.gotLimit)

	var body struct {
		Rounds []store.RoundResult `json:"rounds"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Rounds, 1)
	assert.Equal(t, "POMME", body.Rounds[0].Word)
}
