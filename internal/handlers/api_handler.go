package handlers

import (
	"errors"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/dto"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/models"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultEntryDays = 14
	maxEntryDays     = 366
)

// APIHandler exposes the signed-in user's data as JSON.
type APIHandler struct {
	tracker *services.TrackerService
}

func NewAPIHandler(tracker *services.TrackerService) *APIHandler {
	return &APIHandler{tracker: tracker}
}

func (h *APIHandler) Metrics(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	m, err := h.tracker.Metrics(c.UserContext(), user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load metrics")
	}
	return c.JSON(dto.NewMetricsResponse(m))
}

func (h *APIHandler) Recommendations(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	goal, recs, err := h.tracker.Recommendations(c.UserContext(), user.ID)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load recommendations")
	}
	return c.JSON(dto.RecommendationsResponse{Goal: goal, Recommendations: recs})
}

// ListEntries returns entries from the last ?days= days (default 14).
func (h *APIHandler) ListEntries(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	days := defaultEntryDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEntryDays {
			return apiError(c, fiber.StatusBadRequest, "days must be between 1 and 366")
		}
		days = n
	}

	entries, since, err := h.tracker.EntriesSince(c.UserContext(), user.ID, days)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to load entries")
	}

	out := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, entryResponse(&entries[i]))
	}
	return c.JSON(dto.EntryListResponse{Entries: out, Since: since.Format(services.DateLayout)})
}

func (h *APIHandler) CreateEntry(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var req dto.CreateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	in, err := h.tracker.ParseEntryRequest(req)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return apiError(c, fiber.StatusBadRequest, verr.Message)
		}
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	entry, err := h.tracker.AddEntry(c.UserContext(), user.ID, in)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "Failed to create entry")
	}
	return c.Status(fiber.StatusCreated).JSON(entryResponse(entry))
}

func entryResponse(e *models.Entry) dto.EntryResponse {
	return dto.EntryResponse{
		ID:          e.ID,
		Date:        e.Date.Format(services.DateLayout),
		CaloriesIn:  e.CaloriesIn,
		CaloriesOut: e.CaloriesOut,
		Net:         e.Net(),
		WeightKG:    e.WeightKG,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
	}
}
