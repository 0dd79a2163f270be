package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/DoyleJ11/devine-backend/internal/store"
	"github.com/DoyleJ11/devine-backend/internal/words"
	"github.com/DoyleJ11/devine-backend/pkg/types"
)

const (
	defaultWordCount = 5000
	maxWordCount     = 20000
	qrSize           = 320
)

type RoomLister interface {
	ListRooms(ctx context.Context) ([]types.RoomInfo, error)
}

type Sampler interface {
	Sample(opts words.SampleOptions) []string
}

// RoundLister serves the round archive; nil means no archive is configured.
type RoundLister interface {
	Recent(ctx context.Context, limit int) ([]store.RoundResult, error)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		OK   bool   `json:"ok"`
		Time string `json:"time"`
	}{OK: true, Time: time.Now().UTC().Format(time.RFC3339Nano)})
}

func Rooms(rooms RoomLister, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := rooms.ListRooms(r.Context())
		if err != nil {
			log.Warn("listing rooms", zap.Error(err))
			http.Error(w, "rooms unavailable", http.StatusServiceUnavailable)
			return
		}
		if list == nil {
			list = []types.RoomInfo{}
		}
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, struct {
			Rooms []types.RoomInfo `json:"rooms"`
		}{Rooms: list})
	}
}

func Words(src Sampler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := words.SampleOptions{
			Count:          min(intParam(q, "count", defaultWordCount), maxWordCount),
			MinLen:         intParam(q, "minLen", 6),
			MaxLen:         intParam(q, "maxLen", 10),
			AllowHyphen:    q.Get("allowHyphen") != "false",
			Common:         q.Get("common") == "" || q.Get("common") == "true",
			OnlyInfinitive: q.Get("onlyInfinitive") == "true",
			Exclude:        excludeParam(q.Get("exclude")),
			WithCore:       q.Get("mode") != "all",
		}

		list := src.Sample(opts)
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, struct {
			Count int      `json:"count"`
			Words []string `json:"words"`
		}{Count: len(list), Words: list})
	}
}

// RoomQR renders a PNG QR code pointing players at the room.
func RoomQR(publicURL string) http.HandlerFunc {
	base := strings.TrimRight(publicURL, "/")
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "missing room id", http.StatusBadRequest)
			return
		}

		png, err := qrcode.Encode(base+"/?room="+url.QueryEscape(id), qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}
}

func Rounds(archive RoundLister, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := []store.RoundResult{}
		if archive != nil {
			list, err := archive.Recent(r.Context(), intParam(r.URL.Query(), "limit", 0))
			if err != nil {
				log.Warn("reading rounds", zap.Error(err))
				http.Error(w, "archive unavailable", http.StatusServiceUnavailable)
				return
			}
			out = append(out, list...)
		}
		writeJSON(w, http.StatusOK, struct {
			Rounds []store.RoundResult `json:"rounds"`
		}{Rounds: out})
	}
}

// intParam falls back to def when the value is missing, malformed or zero.
func intParam(q url.Values, key string, def int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n == 0 {
		return def
	}
	return n
}

func excludeParam(raw string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Split(raw, ",") {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out[w] = true
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
