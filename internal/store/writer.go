package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Saver is the blocking side of the archive.
type Saver interface {
	Save(ctx context.Context, res RoundResult) error
}

// Writer queues results from room actors and saves them from a single
// goroutine. A full queue drops the result.
type Writer struct {
	saver Saver
	queue chan RoundResult
	log   *zap.Logger
}

func NewWriter(saver Saver, size int, log *zap.Logger) *Writer {
	if size <= 0 {
		size = 64
	}
	return &Writer{
		saver: saver,
		queue: make(chan RoundResult, size),
		log:   log,
	}
}

func (w *Writer) Record(res RoundResult) {
	select {
	case w.queue <- res:
	default:
		w.log.Warn("round archive queue full, dropping result", zap.String("room", res.RoomID))
	}
}

// Run saves queued results until ctx is done, then drains what is left.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case res := <-w.queue:
			w.save(ctx, res)
		case <-ctx.Done():
			w.drain()
			return nil
		}
	}
}

func (w *Writer) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case res := <-w.queue:
			w.save(ctx, res)
		default:
			return
		}
	}
}

func (w *Writer) save(ctx context.Context, res RoundResult) {
	saveCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := w.saver.Save(saveCtx, res); err != nil {
		w.log.Error("archiving round", zap.String("room", res.RoomID), zap.Error(err))
	}
}
