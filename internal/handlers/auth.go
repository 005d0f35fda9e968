package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/SagarCoder007/modern-banking-system/internal/accounts"
	"github.com/SagarCoder007/modern-banking-system/internal/auth"
	"github.com/SagarCoder007/modern-banking-system/internal/httputil"
	"github.com/SagarCoder007/modern-banking-system/internal/middleware"
	"github.com/SagarCoder007/modern-banking-system/internal/models"
)

type AuthHandler struct {
	auth     *auth.Service
	accounts *accounts.Service
}

func NewAuthHandler(authSvc *auth.Service, accountsSvc *accounts.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc, accounts: accountsSvc}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
		"user":       viewUser(user),
	})
}

type registerRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	AccountType    string `json:"account_type"`
	OpeningDeposit string `json:"opening_deposit"`
}

// Register signs up a customer and opens their account in one step.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accountType := models.TypeSavings
	if req.AccountType != "" {
		parsed, err := models.ParseAccountType(req.AccountType)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		accountType = parsed
	}

	opening := decimal.Zero
	if req.OpeningDeposit != "" {
		parsed, err := parseAmount(req.OpeningDeposit)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		opening = parsed
	}

	user, err := h.auth.Register(r.Context(), auth.RegisterParams{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	account, err := h.accounts.Open(r.Context(), user.ID, accountType, opening)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"user":    viewUser(user),
		"account": viewAccount(account),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if err := h.auth.Revoke(r.Context(), token.Token); err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if err := h.auth.RevokeAll(r.Context(), user.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out everywhere"})
}

// Verify reports the identity behind the presented token. Reaching this
// handler at all means the middleware accepted it.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	token, _ := middleware.TokenFrom(r.Context())
	if user == nil || token == nil {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user":       viewUser(user),
		"expires_at": token.ExpiresAt,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if err := h.auth.Refresh(r.Context(), token); err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"token":      token.Token,
		"expires_at": token.ExpiresAt,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req changePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password changed, all sessions revoked",
	})
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, viewUser(user))
}

type updateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req updateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.auth.UpdateProfile(r.Context(), user, auth.UpdateProfileParams{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, viewUser(user))
}
