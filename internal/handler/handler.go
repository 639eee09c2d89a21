package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/blacklist"
	"fintrack/internal/models"
	"fintrack/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	serviceLayer service.Service
	issuer       *auth.Issuer
	blacklist    blacklist.Blacklist
	log          *slog.Logger
}

func NewHandler(srvc service.Service, issuer *auth.Issuer, bl blacklist.Blacklist, lgr *slog.Logger) *Handler {
	return &Handler{
		serviceLayer: srvc,
		issuer:       issuer,
		blacklist:    bl,
		log:          lgr,
	}
}

type errorResponse struct {
	Message string `json:"message"`
}

type apiResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

func newErrorResponse(c *gin.Context, statusCode int, errMessage string) {
	c.AbortWithStatusJSON(statusCode, errorResponse{Message: errMessage})
}

// respondError translates service sentinels into HTTP statuses.
// Anything unrecognized is logged with detail and surfaced as a
// bare 500.
func respondError(c *gin.Context, log *slog.Logger, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		newErrorResponse(c, http.StatusBadRequest, validationErr.Reason)
	case errors.Is(err, service.ErrEmailTaken):
		newErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		newErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound):
		newErrorResponse(c, http.StatusNotFound, "not found")
	default:
		log.Error("request failed", slog.Any("error", err))
		newErrorResponse(c, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, apiResponse{Message: "server is running"})
	})

	api := router.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)

		users.Use(h.AuthMiddleware())
		users.GET("/current-user", h.GetCurrentUser)
		users.GET("/logout", h.Logout)
		users.POST("/update-profile", h.UpdateProfile)
		users.GET("/transactions/all", h.GetAllTransactions)
		users.GET("/transactions/general", h.GetGeneralTransactions)
	}

	projects := api.Group("/projects")
	projects.Use(h.AuthMiddleware())
	{
		projects.POST("/create", h.CreateProject)
		projects.GET("/get/:projectId", h.GetProject)
		projects.GET("/get-all", h.GetAllProjects)
		projects.POST("/update", h.UpdateProject)
		projects.POST("/delete", h.DeleteProject)
	}

	incomes := api.Group("/incomes")
	incomes.Use(h.AuthMiddleware())
	h.initEntryRoutes(incomes, models.EntryIncome, "get-incomes")

	expenses := api.Group("/expenses")
	expenses.Use(h.AuthMiddleware())
	h.initEntryRoutes(expenses, models.EntryExpense, "get-expenses")

	return router
}

// initEntryRoutes wires the income/expense route set; the two
// resources are identical apart from the table behind them.
func (h *Handler) initEntryRoutes(group *gin.RouterGroup, kind models.EntryKind, listPath string) {
	group.POST("/create", h.CreateEntry(kind))
	group.POST("/delete", h.DeleteEntry(kind))
	group.POST("/get-total", h.GetEntriesTotal(kind))
	group.POST("/"+listPath, h.GetEntries(kind))
	group.POST("/user/"+listPath, h.GetUserEntries(kind))
	group.POST("/all/"+listPath, h.GetUserEntries(kind))
}
