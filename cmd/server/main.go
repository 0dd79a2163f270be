package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/devine-backend/internal/config"
	"github.com/DoyleJ11/devine-backend/internal/httpapi"
	"github.com/DoyleJ11/devine-backend/internal/hub"
	"github.com/DoyleJ11/devine-backend/internal/logging"
	"github.com/DoyleJ11/devine-backend/internal/room"
	"github.com/DoyleJ11/devine-backend/internal/session"
	"github.com/DoyleJ11/devine-backend/internal/store"
	"github.com/DoyleJ11/devine-backend/internal/words"
	"github.com/DoyleJ11/devine-backend/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var recorder store.Recorder = store.Discard{}
	var rounds httpapi.RoundLister
	if cfg.DatabaseURL != "" {
		archive, openErr := store.Open(cfg.DatabaseURL)
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, archive.Close()) }()

		writer := store.NewWriter(archive, 256, log.Named("store"))
		g.Go(func() error { return writer.Run(ctx) })
		recorder, rounds = writer, archive
	} else {
		log.Info("DATABASE_URL not set, rounds will not be archived")
	}

	corpus := words.Default()
	if cfg.WordsFile != "" {
		if corpus, err = words.Load(cfg.WordsFile); err != nil {
			return err
		}
	}
	log.Info("word source ready", zap.Int("words", corpus.Len()))

	groups := ws.NewGroups(log.Named("ws"))
	roomLog := log.Named("room")
	factory := func(ctx context.Context, id string) *room.Room {
		return room.New(ctx, id, room.Deps{
			Bus:         groups,
			Members:     groups,
			Words:       corpus,
			Recorder:    recorder,
			MaxAttempts: cfg.MaxAttempts,
			Log:         roomLog,
		})
	}

	// Rooms outlive the signal until the HTTP server has drained.
	h := hub.NewHub(context.Background(), factory, log.Named("hub"))
	svc := session.NewService(h, groups, session.Options{ReapEmptyRooms: cfg.ReapEmptyRooms}, log.Named("session"))

	socket := ws.Handler(svc, groups, ws.Options{
		OriginPatterns: cfg.AllowedOrigins,
		EventRate:      rate.Limit(cfg.EventRate),
		EventBurst:     cfg.EventBurst,
	}, log.Named("ws"))

	handler := httpapi.SetupRoutes(httpapi.Deps{
		Rooms:     svc,
		Words:     corpus,
		Archive:   rounds,
		Socket:    socket,
		PublicURL: cfg.PublicURL,
		Log:       log.Named("http"),
	})

	// Hijacked websocket connections ignore Shutdown; cancelling their base
	// context ends the read loops.
	connCtx, closeConns := context.WithCancel(context.Background())
	defer closeConns()
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return connCtx },
	}

	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		closeConns()
		h.Shutdown()
		return err
	})

	return g.Wait()
}
