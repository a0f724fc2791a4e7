package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/http/middleware"
	"github.com/DevDeP100/Shalom.pt/internal/http/response"
	"github.com/DevDeP100/Shalom.pt/internal/service"
)

// AccountHandler serves the authenticated member's own account and profile.
type AccountHandler struct {
	accounts *service.AccountService
	storage  service.StorageService
}

func NewAccountHandler(accounts *service.AccountService, storage service.StorageService) *AccountHandler {
	return &AccountHandler{accounts: accounts, storage: storage}
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFrom(r.Context())
	account, err := h.accounts.Get(r.Context(), accountID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, account)
}

type profileRequest struct {
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	BirthDate  *time.Time `json:"birth_date"`
	Address    string     `json:"address"`
	PostalCode string     `json:"postal_code"`
	City       string     `json:"city"`
	District   string     `json:"district"`
	Bio        string     `json:"bio"`
	Newsletter bool       `json:"newsletter"`
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFrom(r.Context())
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.accounts.UpdateProfile(r.Context(), accountID, service.ProfileInput{
		FullName:   req.FullName,
		Phone:      req.Phone,
		BirthDate:  req.BirthDate,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		City:       req.City,
		District:   req.District,
		Bio:        req.Bio,
		Newsletter: req.Newsletter,
	})
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, account)
}

func (h *AccountHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountIDFrom(r.Context())

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "failed to parse multipart form", nil)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "photo file is required", nil)
		return
	}
	defer func() { _ = file.Close() }()

	objectKey, err := h.storage.UploadProfilePhoto(r.Context(), accountID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		writeStorageError(w, r, err)
		return
	}
	if err := h.accounts.SetPhotoKey(r.Context(), accountID, objectKey); err != nil {
		response.DomainError(w, r, err)
		return
	}
	photoURL, err := h.storage.GenerateURL(r.Context(), objectKey)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to generate photo URL", nil)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{
		"object_key": objectKey,
		"photo_url":  photoURL,
	})
}

func writeStorageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrFileTooBig):
		response.Error(w, r, http.StatusBadRequest, "FILE_TOO_LARGE", "file size exceeds 5MB limit", nil)
	case errors.Is(err, service.ErrInvalidFileType):
		response.Error(w, r, http.StatusBadRequest, "INVALID_FILE_TYPE", "only JPEG and PNG images are allowed", nil)
	default:
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to store file", nil)
	}
}
