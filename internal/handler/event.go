package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lifelog/lifelog/internal/apperr"
	"github.com/lifelog/lifelog/internal/model"
	"github.com/lifelog/lifelog/internal/repository"
	"github.com/lifelog/lifelog/internal/service"
)

type EventHandler struct {
	events *service.EventService
}

func NewEventHandler(events *service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

type createEventRequest struct {
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	Tags        []string       `json:"tags"`
	Timestamp   *time.Time     `json:"timestamp"`
	Metadata    map[string]any `json:"metadata"`
}

// updateEventRequest distinguishes absent fields (nil, left untouched) from
// explicit zero values (applied). JSON null behaves like an absent field.
type updateEventRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Tags        *[]string       `json:"tags"`
	Timestamp   *time.Time      `json:"timestamp"`
	Metadata    *map[string]any `json:"metadata"`
}

type paginatedEvents struct {
	Items    []*model.Event `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "invalid request body"))
		return
	}

	event, err := h.events.Create(r.Context(), service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Timestamp:   req.Timestamp,
		Metadata:    req.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repository.ListFilter{Query: query.Get("q")}

	if tags := query.Get("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	start, err := parseTimeParam(query.Get("start"))
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "invalid start date"))
		return
	}
	filter.Start = start

	end, err := parseTimeParam(query.Get("end"))
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "invalid end date"))
		return
	}
	filter.End = end

	page, err := parseIntParam(query.Get("page"), 1)
	if err != nil || page < 1 {
		writeError(w, apperr.New(apperr.CodeValidation, "page must be >= 1"))
		return
	}
	pageSize, err := parseIntParam(query.Get("page_size"), 25)
	if err != nil || pageSize < 1 || pageSize > repository.MaxPageSize {
		writeError(w, apperr.Newf(apperr.CodeValidation, "page_size must be between 1 and %d", repository.MaxPageSize))
		return
	}

	sort := repository.SortNewest
	switch query.Get("sort") {
	case "", string(repository.SortNewest):
	case string(repository.SortOldest):
		sort = repository.SortOldest
	default:
		writeError(w, apperr.New(apperr.CodeValidation, "sort must be newest or oldest"))
		return
	}

	items, total, err := h.events.List(r.Context(), filter, sort, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, paginatedEvents{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateEventRequest
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, apperr.New(apperr.CodeValidation, "invalid request body"))
		return
	}

	patch := repository.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Timestamp:   req.Timestamp,
	}
	if req.Tags != nil {
		tags := model.Tags(*req.Tags)
		patch.Tags = &tags
	}
	if req.Metadata != nil {
		metadata := model.Metadata(*req.Metadata)
		patch.Metadata = &metadata
	}

	event, err := h.events.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.events.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func eventID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeValidation, "invalid event id")
	}
	return id, nil
}

func parseTimeParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIntParam(value string, def int) (int, error) {
	if value == "" {
		return def, nil
	}
	return strconv.Atoi(value)
}
