// A headless reference client: creates or joins a room against a running
// relay server, sits in the waiting room, and follows the battle into the
// tracker. Useful for smoke-testing a deployment end to end without the SPA.
package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/api"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/config"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/presence"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/room"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/session"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/storage"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/tracker"
)

type logNotifier struct{ log *zap.Logger }

func (n logNotifier) Notify(level battle.Level, message string) {
	n.log.Info("toast", zap.String("level", string(level)), zap.String("message", message))
}

type logNavigator struct{ log *zap.Logger }

func (n logNavigator) GoToProblem(problemID string) {
	n.log.Info("navigate", zap.String("to", "problem"), zap.String("problem", problemID))
}

func (n logNavigator) GoToBattleMenu() {
	n.log.Info("navigate", zap.String("to", "battle-menu"))
}

func openBackend(cfg config.Config, log *zap.Logger) (storage.Backend, error) {
	switch {
	case cfg.PostgresDSN != "":
		return storage.NewPostgres(cfg.PostgresDSN)
	case cfg.RedisURL != "":
		return storage.NewRedis(cfg.RedisURL, "", cfg.RedisDB), nil
	default:
		log.Info("using file-backed session store", zap.String("dir", cfg.DataDir))
		return storage.NewFile(cfg.DataDir)
	}
}

func main() {
	var (
		userID   = flag.String("user", "smoke-user", "user id to announce")
		userName = flag.String("name", "Smoke Tester", "display name")
		joinCode = flag.String("join", "", "room code to join; creates a room when empty")
		duration = flag.Int("duration", 30, "battle duration in minutes when creating")
		total    = flag.Int("problems", 2, "problem count when creating")
	)
	flag.Parse()

	cfg := config.Load()
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openBackend(cfg, log)
	if err != nil {
		log.Fatal("opening session backend", zap.Error(err))
	}
	store := session.New(backend, log)
	client := api.NewClient(cfg.ServerURL)
	self := battle.Participant{UserID: *userID, Name: *userName}

	var seed *room.Seed
	if *joinCode == "" {
		resp, err := client.CreateRoom(ctx, api.CreateRoomRequest{
			HostID:   self.UserID,
			HostName: self.Name,
			Duration: *duration,
			Total:    *total,
		})
		if err != nil {
			log.Fatal("creating room", zap.Error(err))
		}
		fmt.Printf("room code: %s\n", resp.RoomID)
		seed = &room.Seed{RoomID: resp.RoomID, Problems: resp.Problems, Metadata: resp.Metadata, Host: resp.Host, IsHost: true}
	} else {
		resp, err := client.JoinRoom(ctx, api.JoinRoomRequest{RoomID: room.NormalizeRoomID(*joinCode), UserID: self.UserID})
		if err != nil {
			log.Fatal("joining room", zap.Error(err))
		}
		seed = &room.Seed{RoomID: resp.RoomID, Problems: resp.Problems, Metadata: resp.Metadata, Host: resp.Host, IsHost: false}
	}

	wsURL := strings.Replace(cfg.ServerURL, "http", "ws", 1) + "/ws?room=" + seed.RoomID
	ch, err := presence.Dial(ctx, wsURL, log)
	if err != nil {
		log.Fatal("dialing presence channel", zap.Error(err))
	}

	ctrl := room.New(room.Config{
		Store:     store,
		Channel:   ch,
		API:       client,
		Self:      self,
		Navigator: logNavigator{log},
		Notifier:  logNotifier{log},
		Logger:    log,
	})

	if seed.IsHost {
		// Auto-start once the opponent shows up.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(500 * time.Millisecond):
					if store.Snapshot().OpponentJoined {
						if err := ctrl.Start(ctx); err != nil {
							log.Warn("auto-start failed", zap.Error(err))
						}
						return
					}
				}
			}
		}()
	}

	if err := ctrl.Run(ctx, seed); err != nil {
		log.Fatal("waiting room", zap.Error(err))
	}

	snap := store.Snapshot()
	if snap.StartTime == 0 {
		log.Info("room ended before the battle started")
		return
	}

	// Battle screen: re-attach and track progress until interrupted.
	ch, err = presence.Dial(ctx, wsURL, log)
	if err != nil {
		log.Fatal("re-dialing presence channel", zap.Error(err))
	}
	defer ch.Close()
	if err := ch.Emit(ctx, presence.Event{
		Type: presence.EvtJoinRoom, RoomID: seed.RoomID,
		UserID: self.UserID, Name: self.Name,
	}); err != nil {
		log.Fatal("rejoining room", zap.Error(err))
	}

	tr := tracker.New(tracker.Config{
		Store:    store,
		Channel:  ch,
		SelfID:   self.UserID,
		Notifier: logNotifier{log},
		Logger:   log,
	})
	if err := tr.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("tracker", zap.Error(err))
	}

	summary := tr.Board().Summary()
	fmt.Printf("solved %d/%d, opponent %d/%d\n",
		summary.SelfSolved, summary.Total, summary.OpponentSolved, summary.Total)
}
