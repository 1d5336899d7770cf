package handler

import (
	"net/http"
	"tush00nka/taskboard/internal/pkg/auth"
	"tush00nka/taskboard/internal/pkg/httputils"
	"tush00nka/taskboard/internal/repository"
	"tush00nka/taskboard/internal/ws"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"pkt.systems/pslog"
)

// EventsHandler streams a task's attachment events over a websocket.
type EventsHandler struct {
	hub      *ws.Hub
	upgrader *websocket.Upgrader
	tokens   *auth.TokenManager
	tasks    repository.TaskRepository
	logger   pslog.Logger
}

func NewEventsHandler(
	hub *ws.Hub,
	upgrader *websocket.Upgrader,
	tokens *auth.TokenManager,
	tasks repository.TaskRepository,
	logger pslog.Logger,
) *EventsHandler {
	return &EventsHandler{
		hub:      hub,
		upgrader: upgrader,
		tokens:   tokens,
		tasks:    tasks,
		logger:   logger.With("component", "handler.events"),
	}
}

func (h *EventsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/tasks/{id:[0-9]+}", h.subscribe).Methods("GET")
}

// @Summary Subscribe to attachment events
// @Description Websocket stream of attachment.created and attachment.deleted events for a task
// @ID subscribe-attachment-events
// @Tags attachments
// @Param id path int true "Task ID"
// @Param token query string true "Auth Token"
// @Success 101
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /ws/tasks/{id} [get]
func (h *EventsHandler) subscribe(w http.ResponseWriter, r *http.Request) {
	if _, err := h.tokens.ValidateToken(r.URL.Query().Get("token")); err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	taskID, ok := taskIDFromPath(r)
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	exists, err := h.tasks.Exists(r.Context(), taskID)
	if err != nil {
		h.logger.Error("events.task_lookup_failed", "task_id", taskID, "error", err)
		httputils.ResponseError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !exists {
		httputils.ResponseError(w, http.StatusNotFound, "not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Debug("events.upgrade_failed", "error", err)
		return
	}

	if _, err := h.hub.Join(taskID, conn); err != nil {
		conn.Close()
	}
}
