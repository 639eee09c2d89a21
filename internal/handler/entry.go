package handler

import (
	"log/slog"
	"net/http"

	"fintrack/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type entryRequest struct {
	ID        string  `json:"id"`
	Tag       string  `json:"tag"`
	Amount    float64 `json:"amount"`
	Category  string  `json:"category"`
	ProjectID string  `json:"project_id"`
	UserID    string  `json:"user_id"`
}

// POST /api/{incomes,expenses}/create
func (h *Handler) CreateEntry(kind models.EntryKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "handler.CreateEntry"

		log := h.log.With(slog.String("op", op), slog.String("kind", string(kind)))

		user, ok := currentUser(c)
		if !ok {
			newErrorResponse(c, http.StatusUnauthorized, "invalid token")

			return
		}

		var req entryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Error("failed to read request body", slog.Any("error", err))

			newErrorResponse(c, http.StatusBadRequest, "wrong request format")

			return
		}

		var projectID *uuid.UUID
		if req.ProjectID != "" {
			id, err := uuid.FromString(req.ProjectID)
			if err != nil {
				newErrorResponse(c, http.StatusBadRequest, "invalid project id")

				return
			}
			projectID = &id
		}

		entry, err := h.serviceLayer.CreateEntry(c.Request.Context(), kind, user.ID, req.Tag, req.Category, req.Amount, projectID)
		if err != nil {
			log.Error("failed to create entry", slog.Any("user_id", user.ID), slog.Any("error", err))

			respondError(c, log, err)

			return
		}

		c.JSON(http.StatusCreated, apiResponse{
			Data:    entry,
			Message: string(kind) + " created successfully",
		})
	}
}

// POST /api/{incomes,expenses}/delete
func (h *Handler) DeleteEntry(kind models.EntryKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "handler.DeleteEntry"

		log := h.log.With(slog.String("op", op), slog.String("kind", string(kind)))

		var req entryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Error("failed to read request body", slog.Any("error", err))

			newErrorResponse(c, http.StatusBadRequest, "wrong request format")

			return
		}

		entryID, err := uuid.FromString(req.ID)
		if err != nil {
			newErrorResponse(c, http.StatusBadRequest, "invalid entry id")

			return
		}

		if err := h.serviceLayer.DeleteEntry(c.Request.Context(), kind, entryID); err != nil {
			log.Error("failed to delete entry", slog.Any("entry_id", entryID), slog.Any("error", err))

			respondError(c, log, err)

			return
		}

		c.JSON(http.StatusOK, apiResponse{Message: string(kind) + " deleted successfully"})
	}
}

// POST /api/{incomes,expenses}/get-total
//
// Scope resolution follows the original aggregation endpoints:
// an explicit user_id wins, then project_id, otherwise the caller's
// general (projectless) bucket.
func (h *Handler) GetEntriesTotal(kind models.EntryKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "handler.GetEntriesTotal"

		log := h.log.With(slog.String("op", op), slog.String("kind", string(kind)))

		user, ok := currentUser(c)
		if !ok {
			newErrorResponse(c, http.StatusUnauthorized, "invalid token")

			return
		}

		var req entryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Error("failed to read request body", slog.Any("error", err))

			newErrorResponse(c, http.StatusBadRequest, "wrong request format")

			return
		}

		var total float64
		var err error
		switch {
		case req.UserID != "":
			var userID uuid.UUID
			if userID, err = uuid.FromString(req.UserID); err != nil {
				newErrorResponse(c, http.StatusBadRequest, "invalid user id")

				return
			}
			total, err = h.serviceLayer.TotalForUser(c.Request.Context(), kind, userID)
		case req.ProjectID != "":
			var projectID uuid.UUID
			if projectID, err = uuid.FromString(req.ProjectID); err != nil {
				newErrorResponse(c, http.StatusBadRequest, "invalid project id")

				return
			}
			total, err = h.serviceLayer.TotalForProject(c.Request.Context(), kind, projectID)
		default:
			total, err = h.serviceLayer.TotalGeneral(c.Request.Context(), kind, user.ID)
		}
		if err != nil {
			log.Error("failed to compute total", slog.Any("error", err))

			respondError(c, log, err)

			return
		}

		c.JSON(http.StatusOK, apiResponse{
			Data:    total,
			Message: "total " + string(kind),
		})
	}
}

// POST /api/incomes/get-incomes, /api/expenses/get-expenses
func (h *Handler) GetEntries(kind models.EntryKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "handler.GetEntries"

		log := h.log.With(slog.String("op", op), slog.String("kind", string(kind)))

		user, ok := currentUser(c)
		if !ok {
			newErrorResponse(c, http.StatusUnauthorized, "invalid token")

			return
		}

		var req entryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			log.Error("failed to read request body", slog.Any("error", err))

			newErrorResponse(c, http.StatusBadRequest, "wrong request format")

			return
		}

		var entries []models.Entry
		var err error
		if req.ProjectID != "" {
			var projectID uuid.UUID
			if projectID, err = uuid.FromString(req.ProjectID); err != nil {
				newErrorResponse(c, http.StatusBadRequest, "invalid project id")

				return
			}
			entries, err = h.serviceLayer.ProjectEntries(c.Request.Context(), kind, projectID)
		} else {
			entries, err = h.serviceLayer.GeneralEntries(c.Request.Context(), kind, user.ID)
		}
		if err != nil {
			log.Error("failed to list entries", slog.Any("error", err))

			respondError(c, log, err)

			return
		}

		c.JSON(http.StatusOK, apiResponse{
			Data:    entries,
			Message: string(kind) + " entries",
		})
	}
}

// POST /api/{incomes,expenses}/{user,all}/get-*
func (h *Handler) GetUserEntries(kind models.EntryKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "handler.GetUserEntries"

		log := h.log.With(slog.String("op", op), slog.String("kind", string(kind)))

		user, ok := currentUser(c)
		if !ok {
			newErrorResponse(c, http.StatusUnauthorized, "invalid token")

			return
		}

		entries, err := h.serviceLayer.UserEntries(c.Request.Context(), kind, user.ID)
		if err != nil {
			log.Error("failed to list entries", slog.Any("user_id", user.ID), slog.Any("error", err))

			respondError(c, log, err)

			return
		}

		c.JSON(http.StatusOK, apiResponse{
			Data:    entries,
			Message: "user " + string(kind) + " entries",
		})
	}
}
