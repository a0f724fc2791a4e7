package handler

import (
	"net/http"

	"github.com/DevDeP100/Shalom.pt/internal/http/middleware"
	"github.com/DevDeP100/Shalom.pt/internal/http/response"
	"github.com/DevDeP100/Shalom.pt/internal/service"
)

// ArticleHandler serves the news section.
type ArticleHandler struct {
	articles *service.ArticleService
	storage  service.StorageService
}

func NewArticleHandler(articles *service.ArticleService, storage service.StorageService) *ArticleHandler {
	return &ArticleHandler{articles: articles, storage: storage}
}

func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.articles.ListPublished(r.Context(), uintQuery(r, "category_id"), pageRequest(r))
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, pageEnvelope(result))
}

func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "article_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid article id", nil)
		return
	}
	claims, _ := middleware.SessionClaimsFrom(r.Context())
	staff := claims != nil && claims.Staff
	article, err := h.articles.Get(r.Context(), id, staff)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, article)
}

type articleRequest struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Summary    string `json:"summary"`
	Body       string `json:"body"`
	CategoryID uint   `json:"category_id"`
	Featured   bool   `json:"featured"`
	Tags       string `json:"tags"`
}

func (req articleRequest) toInput() service.ArticleInput {
	return service.ArticleInput{
		Title:      req.Title,
		Subtitle:   req.Subtitle,
		Summary:    req.Summary,
		Body:       req.Body,
		CategoryID: req.CategoryID,
		Featured:   req.Featured,
		Tags:       req.Tags,
	}
}

func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	article, err := h.articles.Create(r.Context(), middleware.AccountIDFrom(r.Context()), req.toInput())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, article)
}

func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "article_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid article id", nil)
		return
	}
	var req articleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	article, err := h.articles.Update(r.Context(), id, req.toInput())
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, article)
}

func (h *ArticleHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "article_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid article id", nil)
		return
	}
	if err := h.articles.Publish(r.Context(), id); err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"article_id": id, "status": "published"})
}

func (h *ArticleHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "article_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid article id", nil)
		return
	}
	if err := h.articles.Archive(r.Context(), id); err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"article_id": id, "status": "archived"})
}

func (h *ArticleHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "article_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid article id", nil)
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

	objectKey, err := h.storage.UploadArticleImage(r.Context(), id, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	if err := h.articles.SetImage(r.Context(), id, objectKey); err != nil {
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
