package handlers

import (
	"net/http"

	"github.com/Varun5711/taskapi/internal/logger"
	"github.com/Varun5711/taskapi/internal/middleware"
	usermodel "github.com/Varun5711/taskapi/internal/models/user"
	"github.com/Varun5711/taskapi/internal/service"
)

type AuthHandler struct {
	users *service.UserService
	log   *logger.Logger
}

func NewAuthHandler(users *service.UserService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		users: users,
		log:   log,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Token  string `json:"token"`
}

func toAuthResponse(resp *usermodel.AuthResponse) AuthResponse {
	return AuthResponse{
		UserID: resp.UserID,
		Email:  resp.Email,
		Name:   resp.Name,
		Token:  resp.Token,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Debug("Failed to decode register request: %v", err)
		respondError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	resp, err := h.users.Register(r.Context(), &usermodel.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusCreated, "User registered successfully", toAuthResponse(resp))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log.Debug("Failed to decode login request: %v", err)
		respondError(w, http.StatusBadRequest, MsgInvalidBody)
		return
	}

	resp, err := h.users.Login(r.Context(), &usermodel.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, "Login successful", toAuthResponse(resp))
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.GetProfile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}

	respondData(w, http.StatusOK, "", profile)
}
