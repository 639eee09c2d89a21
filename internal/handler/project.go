package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

type projectRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// POST /api/projects/create
func (h *Handler) CreateProject(c *gin.Context) {
	const op = "handler.CreateProject"

	log := h.log.With(slog.String("op", op))

	user, ok := currentUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "invalid token")

		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to read request body", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "wrong request format")

		return
	}

	project, err := h.serviceLayer.CreateProject(c.Request.Context(), user.ID, req.Name, req.Description)
	if err != nil {
		log.Error("failed to create project", slog.Any("user_id", user.ID), slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	c.JSON(http.StatusCreated, apiResponse{
		Data:    project,
		Message: "project created successfully",
	})
}

// GET /api/projects/get/:projectId
func (h *Handler) GetProject(c *gin.Context) {
	const op = "handler.GetProject"

	log := h.log.With(slog.String("op", op))

	projectID, err := uuid.FromString(c.Param("projectId"))
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid project id")

		return
	}

	project, err := h.serviceLayer.GetProject(c.Request.Context(), projectID)
	if err != nil {
		log.Error("failed to get project", slog.Any("project_id", projectID), slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Data:    project,
		Message: "project fetched successfully",
	})
}

// GET /api/projects/get-all
func (h *Handler) GetAllProjects(c *gin.Context) {
	const op = "handler.GetAllProjects"

	log := h.log.With(slog.String("op", op))

	user, ok := currentUser(c)
	if !ok {
		newErrorResponse(c, http.StatusUnauthorized, "invalid token")

		return
	}

	projects, err := h.serviceLayer.ListProjects(c.Request.Context(), user.ID)
	if err != nil {
		log.Error("failed to list projects", slog.Any("user_id", user.ID), slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Data:    projects,
		Message: "projects fetched successfully",
	})
}

// POST /api/projects/update
func (h *Handler) UpdateProject(c *gin.Context) {
	const op = "handler.UpdateProject"

	log := h.log.With(slog.String("op", op))

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to read request body", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "wrong request format")

		return
	}

	projectID, err := uuid.FromString(req.ID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid project id")

		return
	}

	if err := h.serviceLayer.UpdateProject(c.Request.Context(), projectID, req.Name, req.Description); err != nil {
		log.Error("failed to update project", slog.Any("project_id", projectID), slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	c.JSON(http.StatusOK, apiResponse{Message: "project details updated successfully"})
}

// POST /api/projects/delete
func (h *Handler) DeleteProject(c *gin.Context) {
	const op = "handler.DeleteProject"

	log := h.log.With(slog.String("op", op))

	var req struct {
		ProjectID string `json:"project_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to read request body", slog.Any("error", err))

		newErrorResponse(c, http.StatusBadRequest, "wrong request format")

		return
	}

	projectID, err := uuid.FromString(req.ProjectID)
	if err != nil {
		newErrorResponse(c, http.StatusBadRequest, "invalid project id")

		return
	}

	if err := h.serviceLayer.DeleteProject(c.Request.Context(), projectID); err != nil {
		log.Error("failed to delete project", slog.Any("project_id", projectID), slog.Any("error", err))

		respondError(c, log, err)

		return
	}

	c.JSON(http.StatusOK, apiResponse{Message: "project deleted successfully"})
}
