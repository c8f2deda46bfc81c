package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/timesheet-server/internal/models"
	"github.com/rongwang/timesheet-server/internal/service"
	"github.com/rongwang/timesheet-server/internal/timesheet"
	"github.com/rongwang/timesheet-server/internal/utils"
)

// Error codes returned in ErrorResponse.Code
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeDuplicate    = "DUPLICATE"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
)

// Handler handles HTTP requests
type Handler struct {
	svc    service.Service
	logger *utils.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, logger *utils.Logger) *Handler {
	if logger == nil {
		logger = utils.NopLogger()
	}
	return &Handler{
		svc:    svc,
		logger: logger.WithComponent(utils.ComponentHTTP),
	}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)

	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(AuthMiddleware())
	{
		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)

		protected.GET("/dashboard", h.Dashboard)

		protected.GET("/timesheets", h.ListTimesheets)
		protected.POST("/timesheets", h.CreateTimesheet)
		protected.GET("/timesheets/:id", h.GetTimesheet)
		protected.DELETE("/timesheets/:id", h.DeleteTimesheet)
		protected.GET("/timesheets/:id/export", h.ExportTimesheet)

		protected.POST("/timesheets/:id/entries", h.AddEntry)
		protected.DELETE("/timesheets/:id/entries/:entryId", h.DeleteEntry)
	}
}

// Health reports whether the server can reach its database
func (h *Handler) Health(c *gin.Context) {
	if err := h.svc.Health(c.Request.Context()); err != nil {
		h.logger.LogError(c.Request.Context(), "health check failed", err)
		c.JSON(http.StatusServiceUnavailable, models.StatusResponse{Status: "error", Message: "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, models.StatusResponse{Status: "ok"})
}

// Authentication handlers
func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Profile handlers
func (h *Handler) GetProfile(c *gin.Context) {
	resp, err := h.svc.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.svc.UpdateProfile(c.Request.Context(), userID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Dashboard serves the statistics for ?month=&year=, defaulting to the current period
func (h *Handler) Dashboard(c *gin.Context) {
	month, ok := h.queryInt(c, "month")
	if !ok {
		return
	}
	year, ok := h.queryInt(c, "year")
	if !ok {
		return
	}

	resp, err := h.svc.Dashboard(c.Request.Context(), userID(c), month, year)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Timesheet handlers
func (h *Handler) ListTimesheets(c *gin.Context) {
	resp, err := h.svc.ListTimesheets(c.Request.Context(), userID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateTimesheet(c *gin.Context) {
	var req models.CreateTimesheetRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.svc.CreateTimesheet(c.Request.Context(), userID(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) GetTimesheet(c *gin.Context) {
	resp, err := h.svc.GetTimesheet(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteTimesheet(c *gin.Context) {
	if err := h.svc.DeleteTimesheet(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Timesheet deleted successfully",
	})
}

// ExportTimesheet streams the timesheet as a CSV attachment
func (h *Handler) ExportTimesheet(c *gin.Context) {
	export, err := h.svc.ExportTimesheet(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	c.Status(http.StatusOK)

	if err := WriteCSV(c.Writer, export.Rows); err != nil {
		h.logger.LogError(c.Request.Context(), "error writing export", err,
			utils.FieldTimesheetID, c.Param("id"),
		)
	}
}

// Entry handlers
func (h *Handler) AddEntry(c *gin.Context) {
	var req models.AddEntryRequest
	if !h.bind(c, &req) {
		return
	}

	resp, err := h.svc.AddEntry(c.Request.Context(), userID(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// DeleteEntry succeeds whether or not the entry existed in the timesheet
func (h *Handler) DeleteEntry(c *gin.Context) {
	err := h.svc.DeleteEntry(c.Request.Context(), userID(c), c.Param("id"), c.Param("entryId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Status:  "success",
		Message: "Entry deleted",
	})
}

// WriteCSV renders rows as CSV with CRLF line endings
func WriteCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true
	return writer.WriteAll(rows)
}

// Helpers

func userID(c *gin.Context) string {
	return c.GetString("userId")
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    CodeValidation,
			Message: "Invalid request: " + err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    CodeValidation,
			Message: fmt.Sprintf("invalid %s: %q is not a number", key, raw),
		})
		return 0, false
	}
	return v, true
}

// respondError maps a service error to its HTTP status and error code
func (h *Handler) respondError(c *gin.Context, err error) {
	status, code, message := http.StatusInternalServerError, CodeInternal, "Internal server error"

	var vErr *timesheet.ValidationError
	switch {
	case errors.As(err, &vErr):
		status, code, message = http.StatusBadRequest, CodeValidation, vErr.Error()
	case errors.Is(err, timesheet.ErrValidation):
		status, code, message = http.StatusBadRequest, CodeValidation, err.Error()
	case errors.Is(err, timesheet.ErrDuplicate):
		status, code, message = http.StatusConflict, CodeDuplicate, "Resource already exists"
	case errors.Is(err, timesheet.ErrNotFound):
		status, code, message = http.StatusNotFound, CodeNotFound, "Resource not found"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, CodeUnauthorized, "Invalid email or password"
	default:
		h.logger.LogError(c.Request.Context(), "request failed", err,
			utils.FieldMethod, c.Request.Method,
			utils.FieldPath, c.FullPath(),
		)
	}

	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}
