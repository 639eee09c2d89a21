package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

// POST /api/users/register
func (h *Handler) Register(c *gin.Context) {
	const op = "handler.Register"

	log := h.log.With(slog.String("op", op))

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to read request body", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "wrong request format")

		return
	}

	user, token, err := h.serviceLayer.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		log.Error("failed to register user", slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	setTokenCookie(c, token, int(h.issuer.TTL().Seconds()))

	c.JSON(http.StatusCreated, apiResponse{
		Data:    authResponse{User: user, Token: token},
		Message: "user registered successfully",
	})
}

// POST /api/users/login
func (h *Handler) Login(c *gin.Context) {
	const op = "handler.Login"

	log := h.log.With(slog.String("op", op))

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to read request body", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "wrong request format")

		return
	}

	user, token, err := h.serviceLayer.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		log.Error("failed to login user", slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	setTokenCookie(c, token, int(h.issuer.TTL().Seconds()))

	c.JSON(http.StatusOK, apiResponse{
		Data:    authResponse{User: user, Token: token},
		Message: "user logged in successfully",
	})
}

// GET /api/users/current-user
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "invalid token")

		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Data:    user,
		Message: "user profile retrieved successfully",
	})
}

// GET /api/users/logout
func (h *Handler) Logout(c *gin.Context) {
	const op = "handler.Logout"

	log := h.log.With(slog.String("op", op))

	token := currentToken(c)
	if token == "" {
		newErrorResponse(c, http.StatusUnauthorized, "access denied, token missing")

		return
	}

	if err := h.serviceLayer.Logout(c.Request.Context(), token); err != nil {
		log.Error("failed to revoke token", slog.Any("error", err))

		newErrorResponse(c, http.StatusInternalServerError, "internal error")

		return
	}

	clearTokenCookie(c)

	c.JSON(http.StatusOK, apiResponse{Message: "user logged out successfully"})
}

// POST /api/users/update-profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	const op = "handler.UpdateProfile"

	log := h.log.With(slog.String("op", op))

	user, ok := currentUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "invalid token")

		return
	}

	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to read request body", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "wrong request format")

		return
	}

	updated, err := h.serviceLayer.UpdateProfile(c.Request.Context(), user.ID, req.Name, req.Email, req.Password)
	if err != nil {
		log.Error("failed to update user", slog.Any("user_id", user.ID), slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Data:    updated,
		Message: "user updated successfully",
	})
}

// GET /api/users/transactions/all
func (h *Handler) GetAllTransactions(c *gin.Context) {
	h.transactions(c, "handler.GetAllTransactions", false)
}

// GET /api/users/transactions/general
func (h *Handler) GetGeneralTransactions(c *gin.Context) {
	h.transactions(c, "handler.GetGeneralTransactions", true)
}

func (h *Handler) transactions(c *gin.Context, op string, generalOnly bool) {
	log := h.log.With(slog.String("op", op))

	user, ok := currentUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "invalid token")

		return
	}

	transactions, err := h.serviceLayer.Transactions(c.Request.Context(), user.ID, generalOnly)
	if err != nil {
		log.Error("failed to list transactions", slog.Any("user_id", user.ID), slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Data:    transactions,
		Message: "transactions retrieved successfully",
	})
}
