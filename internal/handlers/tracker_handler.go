package handlers

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/dto"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/flash"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/nutrition"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/services"
	"github.com/gofiber/fiber/v2"
)

// TrackerHandler serves the index, profile, dashboard and add-entry pages.
type TrackerHandler struct {
	tracker *services.TrackerService
	flash   *flash.Flasher
}

func NewTrackerHandler(tracker *services.TrackerService, fl *flash.Flasher) *TrackerHandler {
	return &TrackerHandler{tracker: tracker, flash: fl}
}

func (h *TrackerHandler) Index(c *fiber.Ctx) error {
	return render(c, h.flash, "index", "", nil)
}

func (h *TrackerHandler) ProfilePage(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	view, err := h.tracker.ProfileView(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	sex, activity, goal := "", string(nutrition.ModeratelyActive), string(nutrition.GoalMaintain)
	if p := view.Profile; p != nil {
		if p.Sex != nil {
			sex = *p.Sex
		}
		if p.Activity != "" {
			activity = p.Activity
		}
		if p.Goal != "" {
			goal = p.Goal
		}
	}

	return render(c, h.flash, "profile", "Profile", fiber.Map{
		"View":           view,
		"Metrics":        view.Metrics,
		"BMICategory":    view.BMICategory,
		"Sex":            sex,
		"Activity":       activity,
		"Goal":           goal,
		"ActivityLevels": nutrition.ActivityLevels,
	})
}

func (h *TrackerHandler) UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var form dto.ProfileForm
	if err := c.BodyParser(&form); err != nil {
		return h.flash.Redirect(c, "/profile", flash.Error, "Could not read the profile form.")
	}

	if _, err := h.tracker.UpdateProfile(c.UserContext(), user.ID, form); err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return h.flash.Redirect(c, "/profile", flash.Error, verr.Message)
		}
		return err
	}
	return h.flash.Redirect(c, "/dashboard", flash.Success, "Profile updated.")
}

func (h *TrackerHandler) Dashboard(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	d, err := h.tracker.Dashboard(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return render(c, h.flash, "dashboard", "Dashboard", fiber.Map{
		"Dashboard":   d,
		"Metrics":     d.Metrics,
		"BMICategory": d.BMICategory,
	})
}

func (h *TrackerHandler) AddPage(c *fiber.Ctx) error {
	return render(c, h.flash, "add", "Add entry", fiber.Map{
		"Today": h.tracker.Today().Format(services.DateLayout),
	})
}

func (h *TrackerHandler) AddEntry(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	var form dto.EntryForm
	if err := c.BodyParser(&form); err != nil {
		return h.flash.Redirect(c, "/add", flash.Error, "Could not read the entry form.")
	}

	entry, err := h.tracker.ParseEntryForm(form)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return h.flash.Redirect(c, "/add", flash.Error, verr.Message)
		}
		return err
	}
	if _, err := h.tracker.AddEntry(c.UserContext(), user.ID, entry); err != nil {
		return err
	}
	return h.flash.Redirect(c, "/dashboard", flash.Success, "Entry added.")
}
