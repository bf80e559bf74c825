package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/catalog"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/hub"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/ws"
)

func SetupRoutes(h *hub.Hub, src catalog.Source, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms/create", CreateRoom(h, src, log))
	r.Post("/rooms/join", JoinRoom(h))
	r.Delete("/rooms/cancel", CancelRoom(h))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, log))
	return r
}
