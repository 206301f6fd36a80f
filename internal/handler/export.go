package handler

import (
	"net/http"

	"github.com/lifelog/lifelog/internal/service"
)

type ExportHandler struct {
	events *service.EventService
}

func NewExportHandler(events *service.EventService) *ExportHandler {
	return &ExportHandler{events: events}
}

// Export dumps all events with attachment metadata, newest first, without
// pagination.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ExportAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}
