package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/DevDeP100/Shalom.pt/internal/http/middleware"
	"github.com/DevDeP100/Shalom.pt/internal/http/response"
	"github.com/DevDeP100/Shalom.pt/internal/service"
)

// EnrollmentHandler covers the participation lifecycle: member-side enroll,
// cancel and evaluation, staff-side confirm, presence and certificates.
type EnrollmentHandler struct {
	enrollments  *service.EnrollmentService
	certificates *service.CertificateService
	evaluations  *service.EvaluationService
}

func NewEnrollmentHandler(
	enrollments *service.EnrollmentService,
	certificates *service.CertificateService,
	evaluations *service.EvaluationService,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments:  enrollments,
		certificates: certificates,
		evaluations:  evaluations,
	}
}

func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uintParam(r, "event_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id", nil)
		return
	}
	enrollment, err := h.enrollments.Enroll(r.Context(), middleware.AccountIDFrom(r.Context()), eventID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, enrollment)
}

func (h *EnrollmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uintParam(r, "event_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id", nil)
		return
	}
	if err := h.enrollments.Cancel(r.Context(), middleware.AccountIDFrom(r.Context()), eventID); err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"event_id": eventID, "status": "cancelled"})
}

func (h *EnrollmentHandler) MyEnrollments(w http.ResponseWriter, r *http.Request) {
	result, err := h.enrollments.ListMine(r.Context(), middleware.AccountIDFrom(r.Context()), pageRequest(r))
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, pageEnvelope(result))
}

func (h *EnrollmentHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := uintParam(r, "event_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id", nil)
		return
	}
	enrollments, err := h.enrollments.ListForEvent(r.Context(), eventID)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, enrollments)
}

func (h *EnrollmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "enrollment_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid enrollment id", nil)
		return
	}
	if err := h.enrollments.Confirm(r.Context(), id); err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"enrollment_id": id, "status": "confirmed"})
}

func (h *EnrollmentHandler) MarkPresent(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "enrollment_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid enrollment id", nil)
		return
	}
	if err := h.enrollments.MarkPresent(r.Context(), id); err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"enrollment_id": id, "status": "present"})
}

func (h *EnrollmentHandler) IssueCertificate(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "enrollment_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid enrollment id", nil)
		return
	}
	certificate, err := h.certificates.Issue(r.Context(), id)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, certificate)
}

func (h *EnrollmentHandler) LookupCertificate(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "certificate code is required", nil)
		return
	}
	certificate, err := h.certificates.Lookup(r.Context(), code)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, certificate)
}

type evaluationRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *EnrollmentHandler) SubmitEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := uintParam(r, "enrollment_id")
	if !ok {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid enrollment id", nil)
		return
	}
	// Members may only rate their own participation.
	enrollment, err := h.enrollments.Get(r.Context(), id)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	claims, _ := middleware.SessionClaimsFrom(r.Context())
	if enrollment.AccountID != middleware.AccountIDFrom(r.Context()) && (claims == nil || !claims.Staff) {
		response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "evaluation belongs to another account", nil)
		return
	}
	var req evaluationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	evaluation, err := h.evaluations.Submit(r.Context(), id, req.Rating, req.Comment)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, evaluation)
}
