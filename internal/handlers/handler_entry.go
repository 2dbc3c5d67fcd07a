package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sebenza-books/sebenza_ledger/internal/apperrors"
	portssvc "github.com/sebenza-books/sebenza_ledger/internal/core/ports/services"
	"github.com/sebenza-books/sebenza_ledger/internal/core/services"
	"github.com/sebenza-books/sebenza_ledger/internal/dto"
	"github.com/sebenza-books/sebenza_ledger/internal/middleware"
)

// entryHandler handles HTTP requests related to ledger entries.
type entryHandler struct {
	entryService portssvc.EntrySvcFacade
}

// newEntryHandler creates a new entryHandler.
func newEntryHandler(es portssvc.EntrySvcFacade) *entryHandler {
	return &entryHandler{
		entryService: es,
	}
}

// registerEntryRoutes registers routes related to ledger entries.
func registerEntryRoutes(rg *gin.RouterGroup, entryService portssvc.EntrySvcFacade) {
	h := newEntryHandler(entryService)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.createEntry)
		entries.GET("", h.listEntries)
		entries.POST("/validate", h.validateEntry)
		entries.GET("/:entryID", h.getEntry)
		entries.PUT("/:entryID", h.updateEntry)
		entries.DELETE("/:entryID", h.deleteEntry)
		entries.POST("/:entryID/post", h.postEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}
}

// parseEntryID reads the numeric entry ID path parameter. It writes a 400
// response and returns false when the parameter is not a number.
func parseEntryID(c *gin.Context) (int64, bool) {
	entryID, err := strconv.ParseInt(c.Param("entryID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return 0, false
	}
	return entryID, true
}

// respondEntryError translates service errors into HTTP responses shared by
// the write endpoints.
func respondEntryError(c *gin.Context, logger *slog.Logger, err error) {
	var vErr *apperrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "errors": vErr.Errors})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
	case errors.Is(err, services.ErrEntryNotEditable):
		c.JSON(http.StatusConflict, gin.H{"error": "Entry is posted or reversed and cannot be modified"})
	case errors.Is(err, services.ErrEntryNotDraft):
		c.JSON(http.StatusConflict, gin.H{"error": "Entry must be in draft status"})
	case errors.Is(err, services.ErrEntryNotPosted):
		c.JSON(http.StatusConflict, gin.H{"error": "Entry must be posted before it can be reversed"})
	case errors.Is(err, services.ErrAccountNotFound), errors.Is(err, services.ErrAccountInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("Entry operation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// createEntry godoc
// @Summary Create a new ledger entry
// @Description Validates and saves a new double-entry ledger entry in draft status
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.SaveEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]interface{} "Invalid input format or validation errors"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to create entry"
// @Security BearerAuth
// @Router /entries [post]
func (h *entryHandler) createEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SaveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondEntryError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a ledger entry by ID
// @Description Retrieves an entry with all of its lines
// @Tags entries
// @Produce  json
// @Param   entryID path int true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 404 {object} map[string]string "Entry not found"
// @Security BearerAuth
// @Router /entries/{entryID} [get]
func (h *entryHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	entry, err := h.entryService.GetEntryByID(c.Request.Context(), entryID)
	if err != nil {
		respondEntryError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List ledger entries
// @Description Retrieves a page of entries, newest transaction date first
// @Tags entries
// @Produce  json
// @Param   limit query int false "Page size (default 20, max 100)"
// @Param   nextToken query string false "Opaque pagination token from the previous page"
// @Param   sourceModule query string false "Filter by originating subsystem"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /entries [get]
func (h *entryHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.entryService.ListEntries(c.Request.Context(), params)
	if err != nil {
		respondEntryError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// updateEntry godoc
// @Summary Update a draft ledger entry
// @Description Validates and replaces a draft entry's header and lines. Posted and reversed entries are read only.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entryID path int true "Entry ID"
// @Param   entry body dto.SaveEntryRequest true "Updated entry details"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]interface{} "Validation errors"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not editable"
// @Security BearerAuth
// @Router /entries/{entryID} [put]
func (h *entryHandler) updateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	var req dto.SaveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.UpdateEntry(c.Request.Context(), entryID, req, userID)
	if err != nil {
		respondEntryError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// deleteEntry godoc
// @Summary Delete a draft ledger entry
// @Description Removes a draft entry and its lines. Posted and reversed entries cannot be deleted.
// @Tags entries
// @Param   entryID path int true "Entry ID"
// @Success 204 "No content"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not editable"
// @Security BearerAuth
// @Router /entries/{entryID} [delete]
func (h *entryHandler) deleteEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.entryService.DeleteEntry(c.Request.Context(), entryID, userID); err != nil {
		respondEntryError(c, logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// postEntry godoc
// @Summary Post a draft entry to the ledger
// @Description Finalizes a draft entry. Posted entries become immutable.
// @Tags entries
// @Produce  json
// @Param   entryID path int true "Entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 400 {object} map[string]interface{} "Entry no longer passes validation"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not in draft status"
// @Security BearerAuth
// @Router /entries/{entryID}/post [post]
func (h *entryHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	entry, err := h.entryService.PostEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondEntryError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// reverseEntry godoc
// @Summary Reverse a posted entry
// @Description Creates the equal-and-opposite entry and marks the original as reversed
// @Tags entries
// @Produce  json
// @Param   entryID path int true "Entry ID"
// @Success 201 {object} dto.EntryResponse "The reversing entry"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Entry is not posted"
// @Security BearerAuth
// @Router /entries/{entryID}/reverse [post]
func (h *entryHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID, ok := parseEntryID(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	reversal, err := h.entryService.ReverseEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondEntryError(c, logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversal))
}

// validateEntry godoc
// @Summary Dry-run validation of an entry
// @Description Runs the double-entry validator against the payload without saving anything. Editor UIs call this on demand.
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.SaveEntryRequest true "Entry to validate"
// @Success 200 {object} dto.ValidationResultResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Security BearerAuth
// @Router /entries/validate [post]
func (h *entryHandler) validateEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SaveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ValidateEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	res, err := h.entryService.ValidateEntry(req)
	if err != nil {
		respondEntryError(c, logger, err)
		return
	}

	resp := dto.ValidationResultResponse{Valid: res.Valid, Errors: res.Errors}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	c.JSON(http.StatusOK, resp)
}
