package history

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eleven-am/whisper-gateway/internal/dto"
	"github.com/eleven-am/whisper-gateway/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
}

func entryToResponse(e *Entry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:          e.ID,
		Filename:    e.Filename,
		Language:    e.Language,
		Backend:     e.Backend,
		Text:        e.Text,
		Success:     !e.Failed(),
		FailureKind: e.FailureKind,
		Degraded:    e.Degraded,
		Cached:      e.Cached,
		FileSize:    e.InputBytes,
		ElapsedMs:   e.ElapsedMs,
		CreatedAt:   e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// List godoc
// @Summary      List transcription history
// @Description  Returns recorded transcriptions, newest first
// @Tags         history
// @Produce      json
// @Param        limit    query     int     false  "Page size (max 100)"  default(20)
// @Param        offset   query     int     false  "Entries to skip"
// @Param        backend  query     string  false  "Filter by backend name"
// @Success      200      {object}  dto.HistoryListResponse
// @Failure      400      {object}  shared.APIError
// @Failure      500      {object}  shared.APIError
// @Router       /history [get]
func (h *Handler) List(c echo.Context) error {
	opts := ListOptions{Backend: c.QueryParam("backend")}

	var err error
	if v := c.QueryParam("limit"); v != "" {
		if opts.Limit, err = strconv.Atoi(v); err != nil || opts.Limit < 0 {
			return shared.BadRequest("invalid_limit", "limit must be a non-negative integer")
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if opts.Offset, err = strconv.Atoi(v); err != nil || opts.Offset < 0 {
			return shared.BadRequest("invalid_offset", "offset must be a non-negative integer")
		}
	}

	entries, total, err := h.store.List(c.Request().Context(), opts)
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		return shared.InternalError("list_failed", "failed to list history")
	}

	response := make([]dto.HistoryEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = entryToResponse(e)
	}
	return c.JSON(http.StatusOK, dto.HistoryListResponse{Entries: response, Total: total})
}

// Get godoc
// @Summary      Get a transcription
// @Tags         history
// @Produce      json
// @Param        id   path      string  true  "Entry ID"
// @Success      200  {object}  dto.HistoryEntryResponse
// @Failure      404  {object}  shared.APIError
// @Failure      500  {object}  shared.APIError
// @Router       /history/{id} [get]
func (h *Handler) Get(c echo.Context) error {
	entry, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound("not_found", "transcription not found")
	}
	if err != nil {
		h.logger.Error("failed to load history entry", "error", err)
		return shared.InternalError("get_failed", "failed to load transcription")
	}
	return c.JSON(http.StatusOK, entryToResponse(entry))
}
