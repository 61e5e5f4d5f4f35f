package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/partyup/partyup/internal/services/notify"
	"github.com/partyup/partyup/internal/web/middleware"
)

// NotificationsHandler serves the polling feed
type NotificationsHandler struct {
	notifyService *notify.Service
	logger        *slog.Logger
}

// NewNotificationsHandler creates a new NotificationsHandler
func NewNotificationsHandler(notifyService *notify.Service, logger *slog.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		notifyService: notifyService,
		logger:        logger,
	}
}

// notificationResponse is the wire form of one feed entry
type notificationResponse struct {
	Name      string         `json:"name"`
	Data      map[string]any `json:"data"`
	Timestamp float64        `json:"timestamp"`
}

// Poll returns the user's notifications newer than the since watermark as
// a JSON array, oldest first
func (h *NotificationsHandler) Poll(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	since := 0.0
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			http.Error(w, "invalid since parameter", http.StatusBadRequest)
			return
		}
		since = parsed
	}

	pending, err := h.notifyService.Poll(r.Context(), user.ID, since)
	if err != nil {
		h.logger.Error("polling notifications", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	response := make([]notificationResponse, 0, len(pending))
	for _, n := range pending {
		response = append(response, notificationResponse{
			Name:      n.Name,
			Data:      n.Payload,
			Timestamp: n.Timestamp,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("encoding notifications", slog.Any("error", err))
	}
}
