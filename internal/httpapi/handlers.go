package httpapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/registry"
)

type createGameResponse struct {
	GameID string `json:"gameId"`
}

type healthResponse struct {
	Status string `json:"status"`
	Games  int    `json:"games"`
}

// CreateGame opens a new lobby, the HTTP twin of the createGame instruction.
func CreateGame(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := reg.CreateMatch()
		if err != nil {
			log.Error("create game", zap.Error(err))
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}
		log.Info("game created", zap.String("game_id", s.ID()))
		writeJSON(w, http.StatusCreated, createGameResponse{GameID: s.ID()})
	}
}

func Healthz(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Games: reg.Len()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
