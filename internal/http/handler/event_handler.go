package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/http/middleware"
	"github.com/DevDeP100/Shalom.pt/internal/http/response"
	"github.com/DevDeP100/Shalom.pt/internal/service"
)

// EventHandler serves public event browsing plus the staff lifecycle.
type EventHandler struct {
	events      *service.EventService
	evaluations *service.EvaluationService
	storage     service.StorageService
}

func NewEventHandler(events *service.EventService, evaluations *service.EvaluationService, storage service.StorageService) *EventHandler {
	return &EventHandler{events: events, evaluations: evaluations, storage: storage}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	upcomingOnly := r.URL.Query().Get("upcoming") == "true"
	result, err := h.events.ListPublished(r.Context(), uintQuery(r, "category_id"), upcomingOnly, pageRequest(r))
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, pageEnvelope(result))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "event_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id", nil)
		return
	}
	detail, err := h.events.Get(r.Context(), id)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"event":           detail.Event,
		"available_seats": detail.AvailableSeats,
	})
}

func (h *EventHandler) Home(w http.ResponseWriter, r *http.Request) {
	home, err := h.events.Home(r.Context())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"featured": home.Featured,
		"upcoming": home.Upcoming,
	})
}

func (h *EventHandler) EvaluationSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "event_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id", nil)
		return
	}
	average, count, err := h.evaluations.EventAverage(r.Context(), id)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"event_id":       id,
		"average_rating": average,
		"count":          count,
	})
}

func (h *EventHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.events.ListCategories(r.Context())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, categories)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (h *EventHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category := &domain.Category{Name: req.Name, Description: req.Description, Color: req.Color}
	if err := h.events.CreateCategory(r.Context(), category); err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, category)
}

type eventRequest struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CategoryID     uint      `json:"category_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	Location       string    `json:"location"`
	Address        string    `json:"address"`
	Capacity       int       `json:"capacity"`
	Price          int64     `json:"price_cents"`
	ExternalURL    string    `json:"external_url"`
	UseExternalURL bool      `json:"use_external_url"`
	Featured       bool      `json:"featured"`
}

func (req eventRequest) toInput() service.EventInput {
	return service.EventInput{
		Title:          req.Title,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		Location:       req.Location,
		Address:        req.Address,
		Capacity:       req.Capacity,
		Price:          req.Price,
		ExternalURL:    req.ExternalURL,
		UseExternalURL: req.UseExternalURL,
		Featured:       req.Featured,
	}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	event, err := h.events.Create(r.Context(), middleware.AccountIDFrom(r.Context()), req.toInput())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, event)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "event_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id", nil)
		return
	}
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	event, err := h.events.Update(r.Context(), id, req.toInput())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, event)
}

func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Publish, "published")
}

func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Cancel, "cancelled")
}

func (h *EventHandler) Finish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.Finish, "finished")
}

func (h *EventHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uint) error, status string) {
	id, ok := uintParam(r, "event_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id", nil)
		return
	}
	if err := fn(r.Context(), id); err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"event_id": id, "status": status})
}

func (h *EventHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "event_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id", nil)
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "failed to parse multipart form", nil)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "image file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	objectKey, err := h.storage.UploadEventImage(r.Context(), id, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	if err := h.events.SetImage(r.Context(), id, objectKey); err != nil {
		response.DomainError(w, r, err)
		return
	}
	imageURL, err := h.storage.GenerateURL(r.Context(), objectKey)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to generate image URL", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"object_key": objectKey,
		"image_url":  imageURL,
	})
}
