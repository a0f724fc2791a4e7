package handler

import (
	"net/http"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/http/response"
	"github.com/DevDeP100/Shalom.pt/internal/security"
	"github.com/DevDeP100/Shalom.pt/internal/service"
)

// AuthHandler owns registration, email verification and login.
type AuthHandler struct {
	accounts *service.AccountService
	sessions *security.SessionManager
	cookies  *security.CookieManager
}

func NewAuthHandler(accounts *service.AccountService, sessions *security.SessionManager, cookies *security.CookieManager) *AuthHandler {
	return &AuthHandler{accounts: accounts, sessions: sessions, cookies: cookies}
}

type registerRequest struct {
	Handle          string `json:"handle"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FullName        string `json:"full_name"`
	Phone           string `json:"phone"`
	Newsletter      bool   `json:"newsletter"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Handle:          req.Handle,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FullName:        req.FullName,
		Phone:           req.Phone,
		Newsletter:      req.Newsletter,
	})
	if err != nil {
		// The account may exist even when the verification mail failed;
		// tell the client so it can fall back to a resend.
		if account != nil && domain.IsKind(err, domain.KindDependency) {
			response.JSON(w, r, http.StatusCreated, map[string]any{
				"account":    account,
				"email_sent": false,
			})
			return
		}
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"account":    account,
		"email_sent": true,
	})
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.accounts.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	// A successful verification logs the member in right away.
	token, err := h.sessions.Sign(account.ID, account.Staff, true)
	if err != nil {
		response.DomainError(w, r, err)
		return
	}
	h.cookies.SetSessionCookie(w, token, h.sessions.TTL())
	response.JSON(w, r, http.StatusOK, map[string]any{
		"account":    account,
		"token":      token,
		"expires_at": time.Now().UTC().Add(h.sessions.TTL()),
	})
}

type resendCodeRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var req resendCodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.accounts.ResendCode(r.Context(), req.Email); err != nil {
		response.DomainError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"email_sent": true})
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account, token, err := h.accounts.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		if domain.IsKind(err, domain.KindValidation) {
			response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
			return
		}
		response.DomainError(w, r, err)
		return
	}
	h.cookies.SetSessionCookie(w, token, h.sessions.TTL())
	response.JSON(w, r, http.StatusOK, map[string]any{
		"account":    account,
		"token":      token,
		"expires_at": time.Now().UTC().Add(h.sessions.TTL()),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSessionCookie(w)
	response.JSON(w, r, http.StatusOK, map[string]any{"logged_out": true})
}
