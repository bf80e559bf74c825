package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/api"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/catalog"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/hub"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/lobby"
)

const codeLength = 8

// GenerateCode returns an 8-character room code.
func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, codeLength)
	for i := 0; i < codeLength; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

func CreateRoom(h *hub.Hub, src catalog.Source, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.HostID == "" {
			writeError(w, http.StatusBadRequest, "missing hostId")
			return
		}
		if req.Total <= 0 {
			req.Total = 2
		}
		if req.Duration <= 0 {
			req.Duration = 30
		}

		problems, err := src.Pick(r.Context(), catalog.Filter{
			Difficulty: req.Difficulty,
			Topics:     req.Topics,
		}, req.Total)
		if err != nil {
			log.Error("picking problems", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "could not assemble a problem set")
			return
		}

		var code string
		for {
			c, err := GenerateCode()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to generate code")
				return
			}
			reply := make(chan *lobby.Lobby, 1)
			h.Inbox() <- hub.GetLobby{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			log.Info("collision on code, regenerating")
		}

		cfg := lobby.Config{
			RoomID: code,
			Host:   battle.Participant{UserID: req.HostID, Name: req.HostName},
			Metadata: battle.Metadata{
				Duration:      req.Duration,
				Difficulty:    req.Difficulty,
				Topics:        req.Topics,
				TotalProblems: req.Total,
			},
			Problems: problems,
		}
		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.CreateLobby{Code: code, Cfg: cfg, Reply: reply}
		if <-reply == nil {
			writeError(w, http.StatusInternalServerError, "failed to create room")
			return
		}

		writeJSON(w, http.StatusCreated, api.RoomResponse{
			RoomID:   code,
			Problems: cfg.Problems,
			Metadata: cfg.Metadata,
			Host:     cfg.Host,
		})
	}
}

func JoinRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.JoinRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: req.RoomID, Reply: reply}
		lb := <-reply
		if lb == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}

		// A cancelled room lingers until the janitor sweeps it; to a joiner
		// it is already gone.
		viewReply := make(chan lobby.View, 1)
		lb.Inbox() <- lobby.GetView{Reply: viewReply}
		if v := <-viewReply; v.Cancelled {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}

		cfg := lb.Config()
		writeJSON(w, http.StatusOK, api.RoomResponse{
			RoomID:   cfg.RoomID,
			Problems: cfg.Problems,
			Metadata: cfg.Metadata,
			Host:     cfg.Host,
		})
	}
}

func CancelRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req api.CancelRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: req.RoomID, Reply: reply}
		lb := <-reply
		if lb == nil {
			writeError(w, http.StatusNotFound, "room not found")
			return
		}
		if lb.Config().Host.UserID != req.Player1 {
			writeError(w, http.StatusForbidden, "only the host may cancel the room")
			return
		}

		// The lobby notifies the guest and marks itself cancelled; the
		// janitor removes it once the notice has gone out.
		lb.Inbox() <- lobby.Cancel{By: req.Player1}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
