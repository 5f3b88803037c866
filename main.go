package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jackaroo-server/api"
	"jackaroo-server/config"
	"jackaroo-server/loghandler"
	"jackaroo-server/ratelimit"
	"jackaroo-server/room"
	"jackaroo-server/session"
	"jackaroo-server/storage"
	"jackaroo-server/ws"
)

func main() {
	slog.SetDefault(slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo)))

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; using environment variables", "tag", "main")
	}

	cfg := config.Load()
	slog.Info("configuration loaded", "tag", "main",
		"trackLen", cfg.TrackLen, "homePathLen", cfg.HomePathLen,
		"turnLimitSec", cfg.TurnLimitSec, "reconnectGraceSec", cfg.ReconnectGraceSec,
		"wsPort", cfg.WSPort)

	if cfg.AuthBaseURL == "" {
		slog.Info("AUTH_BASE_URL not set; connections are anonymous", "tag", "main")
	} else {
		slog.Info("auth configured", "tag", "main", "baseURL", cfg.AuthBaseURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("storage init failed", "tag", "main", "err", err)
		os.Exit(1)
	}
	if store == nil {
		slog.Info("DATABASE_URL not set; match history disabled", "tag", "main")
	}
	defer store.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rooms := room.NewManager(cfg, rng)
	sessions := session.NewManager(time.Duration(cfg.ReconnectGraceSec) * time.Second)
	limiter := ratelimit.New(
		time.Duration(cfg.RateLimit.WindowMS)*time.Millisecond,
		cfg.RateLimit.MaxMessages,
		time.Duration(cfg.RateLimit.CooldownMS)*time.Millisecond,
	)

	rooms.OnFinished = func(r *room.Room, res room.MatchResult) {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.InsertMatchResult(saveCtx, res); err != nil {
			slog.Error("persist match result failed", "tag", "main", "match", res.MatchID, "err", err)
		}
	}
	sessions.OnExpire = func(s *session.Session) {
		if s.RoomCode == "" {
			return
		}
		if r, err := rooms.Get(s.RoomCode); err == nil {
			r.SessionExpired(s.ID)
		}
	}

	go sessions.RunSweeper(30*time.Second, ctx.Done())
	go limiter.RunSweeper(
		time.Duration(cfg.RateLimit.SweepIntervalSec)*time.Second,
		time.Duration(cfg.ReconnectGraceSec)*time.Second,
		ctx.Done())
	go rooms.RunSweeper(30*time.Second, time.Duration(cfg.RoomIdleSweepSec)*time.Second, ctx.Done())

	hub := ws.NewHub(cfg, rooms, sessions, limiter)
	go hub.Run(ctx)

	handler := api.NewHandler(store, rooms, sessions)
	http.HandleFunc("/ws", hub.ServeWS)
	http.HandleFunc("/healthz", handler.Health)
	http.HandleFunc("/api/history", handler.History)

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	server := &http.Server{Addr: addr}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	slog.Info("server listening", "tag", "main", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server stopped", "tag", "main", "err", err)
		os.Exit(1)
	}
}
