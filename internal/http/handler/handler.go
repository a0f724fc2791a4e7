// Package handler maps the HTTP surface onto the service layer.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/DevDeP100/Shalom.pt/internal/http/response"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
)

func uintParam(r *http.Request, name string) (uint, bool) {
	raw := chi.URLParam(r, name)
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}

func uintQuery(r *http.Request, name string) uint {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func pageRequest(r *http.Request) repository.PageRequest {
	return repository.PageRequest{
		Page:     int(uintQuery(r, "page")),
		PageSize: int(uintQuery(r, "page_size")),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body", nil)
		return false
	}
	return true
}

func pageEnvelope[T any](result repository.PageResult[T]) response.Page {
	return response.Page{
		Items:      result.Items,
		Page:       result.Page,
		PageSize:   result.PageSize,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	}
}
