package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/rps-arena/game"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить Origin доменом фронтенда перед продакшеном
		return true
	},
}

type WebSocketHandler struct {
	hub *game.Hub
}

func NewWebSocketHandler(hub *game.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeRoom подписывает клиента на события комнаты room_<id>.
func (h *WebSocketHandler) ServeRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "missing roomID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой
		slog.Warn("websocket upgrade failed", slog.String("room_id", roomID), slog.Any("error", err))
		return
	}

	client := &game.Client{
		Hub:     h.hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Channel: "room_" + roomID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// ServeTournament подписывает клиента на события турнира tournament_<id>.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")
	if tournamentID == "" {
		http.Error(w, "missing tournamentID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.String("tournament_id", tournamentID), slog.Any("error", err))
		return
	}

	client := &game.Client{
		Hub:     h.hub,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		Channel: "tournament_" + tournamentID,
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
