package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/catalog"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/config"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/httpapi"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/hub"
)

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var src catalog.Source
	if cfg.MongoURL != "" {
		mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		m, err := catalog.NewMongo(mctx, cfg.MongoURL, cfg.MongoDB)
		cancel()
		if err != nil {
			log.Fatal("connecting problem catalog", zap.Error(err))
		}
		src = m
	} else {
		log.Info("no MONGODB_URL set, serving the builtin problem set")
		src = catalog.NewBuiltin(nil)
	}

	h := hub.NewHub(ctx, log)

	janitor := cron.New()
	ttl := time.Duration(cfg.RoomTTLMin) * time.Minute
	if _, err := janitor.AddFunc("@every 1m", func() {
		h.Inbox() <- hub.SweepIdle{IdleFor: ttl}
	}); err != nil {
		log.Fatal("scheduling room janitor", zap.Error(err))
	}
	janitor.Start()
	defer janitor.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httpapi.SetupRoutes(h, src, log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.Inbox() <- hub.ShutdownHub{}
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
