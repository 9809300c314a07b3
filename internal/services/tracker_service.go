package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/dto"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/events"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/models"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/nutrition"
	"github.com/ahmetcoskunkizilkaya/caltrack/internal/store"
	"github.com/google/uuid"
)

const (
	DateLayout = "2006-01-02"

	recentWindowDays = 14
	weekWindowDays   = 7
	maxAge           = 130
	maxHeightCM      = 275.0
	maxWeightKG      = 650.0
)

// ValidationError is returned for form input that cannot be accepted. Its
// message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// ProfileView is what the profile page shows: the stored profile, its
// metrics, and the stored height/weight converted back to imperial units.
type ProfileView struct {
	Profile     *models.Profile
	Metrics     nutrition.Metrics
	BMICategory string
	HeightFt    string
	HeightIn    string
	WeightLb    string
}

// Dashboard summarises the last two weeks of entries.
type Dashboard struct {
	Recent          []models.Entry
	WeekIn          int
	WeekOut         int
	WeekNet         int
	LatestWeightLb  string
	Metrics         nutrition.Metrics
	BMICategory     string
	Recommendations []nutrition.Recommendation
}

// NewEntry is a validated entry ready to be stored.
type NewEntry struct {
	Date        time.Time
	CaloriesIn  int
	CaloriesOut int
	WeightKG    *float64
	Notes       *string
}

type TrackerService struct {
	store     store.Store
	publisher events.Publisher
	now       func() time.Time
}

func NewTrackerService(st store.Store, publisher events.Publisher) *TrackerService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TrackerService{store: st, publisher: publisher, now: time.Now}
}

// Today returns the current date at midnight UTC.
func (s *TrackerService) Today() time.Time {
	return dateOnly(s.now())
}

func (s *TrackerService) profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return p, nil
}

func (s *TrackerService) ProfileView(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	m := nutrition.CalculateMetrics(p.Nutrition())
	view := &ProfileView{
		Profile:     p,
		Metrics:     m,
		BMICategory: nutrition.BMICategory(m.BMI),
	}
	if p == nil {
		return view, nil
	}
	if p.HeightCM != nil {
		ft, in := nutrition.CMToFeetInches(*p.HeightCM)
		view.HeightFt = strconv.Itoa(ft)
		view.HeightIn = formatFloat(in)
	}
	if p.WeightKG != nil {
		view.WeightLb = formatFloat(round1(nutrition.KGToLbs(*p.WeightKG)))
	}
	return view, nil
}

// UpdateProfile applies the profile form. Zero or empty measurements clear the
// stored value.
func (s *TrackerService) UpdateProfile(ctx context.Context, userID uuid.UUID, form dto.ProfileForm) (*models.Profile, error) {
	ft, err := parseNonNegativeFloat("height_ft", "Height (ft)", form.HeightFt)
	if err != nil {
		return nil, err
	}
	in, err := parseNonNegativeFloat("height_in", "Height (in)", form.HeightIn)
	if err != nil {
		return nil, err
	}
	lb, err := parseNonNegativeFloat("weight_lb", "Weight", form.WeightLb)
	if err != nil {
		return nil, err
	}
	age, err := parseNonNegativeInt("age", "Age", form.Age)
	if err != nil {
		return nil, err
	}
	if age > maxAge {
		return nil, invalid("age", "Age must be a realistic number of years.")
	}

	sex := strings.ToUpper(strings.TrimSpace(form.Sex))
	if sex != "" && sex != nutrition.SexMale && sex != nutrition.SexFemale {
		return nil, invalid("sex", "Sex must be M or F.")
	}

	activity := nutrition.ActivityLevel(strings.ToLower(strings.TrimSpace(form.Activity)))
	if activity == "" {
		activity = nutrition.ModeratelyActive
	}
	if !activity.Valid() {
		return nil, invalid("activity", "Unknown activity level.")
	}

	goal := nutrition.Goal(strings.ToLower(strings.TrimSpace(form.Goal)))
	if goal == "" {
		goal = nutrition.GoalMaintain
	}
	if !goal.Valid() {
		return nil, invalid("goal", "Goal must be maintain or lose.")
	}

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = models.NewProfile(userID)
	}

	cm := nutrition.FeetInchesToCM(ft, in)
	if cm > maxHeightCM {
		return nil, invalid("height_ft", "Height must be a realistic number.")
	}
	kg := nutrition.LbsToKG(lb)
	if kg > maxWeightKG {
		return nil, invalid("weight_lb", "Weight must be a realistic number.")
	}

	p.HeightCM = nil
	if cm > 0 {
		p.HeightCM = &cm
	}
	p.WeightKG = nil
	if kg > 0 {
		p.WeightKG = &kg
	}
	p.Age = nil
	if age > 0 {
		p.Age = &age
	}
	p.Sex = nil
	if sex != "" {
		p.Sex = &sex
	}
	p.Activity = string(activity)
	p.Goal = string(goal)

	if err := s.store.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

// ParseEntryForm validates the add-entry form. Weight is entered in pounds and
// stored in kilograms; an empty date means today.
func (s *TrackerService) ParseEntryForm(form dto.EntryForm) (NewEntry, error) {
	var e NewEntry

	date, err := s.parseDate(form.Date)
	if err != nil {
		return e, err
	}
	e.Date = date

	calIn, err := parseNonNegativeInt("calories_in", "Calories in", form.CaloriesIn)
	if err != nil {
		return e, err
	}
	calOut, err := parseNonNegativeInt("calories_out", "Calories out", form.CaloriesOut)
	if err != nil {
		return e, err
	}
	e.CaloriesIn, e.CaloriesOut = calIn, calOut

	lb, err := parseNonNegativeFloat("weight_lb", "Weight", form.WeightLb)
	if err != nil {
		return e, err
	}
	if kg := nutrition.LbsToKG(lb); kg > maxWeightKG {
		return e, invalid("weight_lb", "Weight must be a realistic number.")
	} else if kg > 0 {
		e.WeightKG = &kg
	}

	e.Notes = optionalText(form.Notes)
	return e, nil
}

// ParseEntryRequest validates a JSON entry; weight is already in kilograms.
func (s *TrackerService) ParseEntryRequest(req dto.CreateEntryRequest) (NewEntry, error) {
	var e NewEntry

	date, err := s.parseDate(req.Date)
	if err != nil {
		return e, err
	}
	if req.CaloriesIn < 0 || req.CaloriesOut < 0 {
		return e, invalid("calories", "Calories cannot be negative.")
	}
	if w := req.WeightKG; w != nil {
		switch {
		case math.IsNaN(*w) || math.IsInf(*w, 0):
			return e, invalid("weight_kg", "Weight must be a number.")
		case *w < 0:
			return e, invalid("weight_kg", "Weight cannot be negative.")
		case *w > maxWeightKG:
			return e, invalid("weight_kg", "Weight must be a realistic number.")
		}
	}

	e.Date = date
	e.CaloriesIn, e.CaloriesOut = req.CaloriesIn, req.CaloriesOut
	if req.WeightKG != nil && *req.WeightKG > 0 {
		e.WeightKG = req.WeightKG
	}
	e.Notes = optionalText(req.Notes)
	return e, nil
}

// AddEntry stores an entry and announces it. A failed announcement is logged
// and does not fail the call.
func (s *TrackerService) AddEntry(ctx context.Context, userID uuid.UUID, in NewEntry) (*models.Entry, error) {
	entry := &models.Entry{
		ID:          uuid.New(),
		UserID:      userID,
		Date:        dateOnly(in.Date),
		CaloriesIn:  in.CaloriesIn,
		CaloriesOut: in.CaloriesOut,
		WeightKG:    in.WeightKG,
		Notes:       in.Notes,
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create entry: %w", err)
	}

	evt := events.EntryLogged{
		Type:        events.EntryLoggedType,
		EntryID:     entry.ID,
		UserID:      userID,
		Date:        entry.Date.Format(DateLayout),
		CaloriesIn:  entry.CaloriesIn,
		CaloriesOut: entry.CaloriesOut,
		WeightKG:    entry.WeightKG,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.publisher.PublishEntryLogged(ctx, evt); err != nil {
		slog.Error("failed to publish entry event", "action", "entry_publish", "user_id", userID.String(), "error", err)
	}
	return entry, nil
}

// EntriesSince lists the user's entries dated within the last days days,
// today included.
func (s *TrackerService) EntriesSince(ctx context.Context, userID uuid.UUID, days int) ([]models.Entry, time.Time, error) {
	since := s.Today().AddDate(0, 0, -(days - 1))
	entries, err := s.store.ListEntriesSince(ctx, userID, since)
	if err != nil {
		return nil, since, err
	}
	return entries, since, nil
}

func (s *TrackerService) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	recent, err := s.store.ListEntriesSince(ctx, userID, today.AddDate(0, 0, -recentWindowDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	d := &Dashboard{Recent: recent}
	weekStart := today.AddDate(0, 0, -(weekWindowDays - 1))
	for _, e := range recent {
		if e.Date.Before(weekStart) {
			continue
		}
		d.WeekIn += e.CaloriesIn
		d.WeekOut += e.CaloriesOut
	}
	d.WeekNet = d.WeekIn - d.WeekOut

	for _, e := range recent {
		if e.WeightKG != nil {
			d.LatestWeightLb = formatFloat(round1(nutrition.KGToLbs(*e.WeightKG)))
			break
		}
	}

	np := p.Nutrition()
	d.Metrics = nutrition.CalculateMetrics(np)
	d.BMICategory = nutrition.BMICategory(d.Metrics.BMI)
	d.Recommendations = nutrition.ExerciseRecommendations(np)
	return d, nil
}

// Metrics returns the derived metrics for the user's current profile.
func (s *TrackerService) Metrics(ctx context.Context, userID uuid.UUID) (nutrition.Metrics, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return nutrition.Metrics{}, err
	}
	return nutrition.CalculateMetrics(p.Nutrition()), nil
}

// Recommendations returns the exercise suggestions for the user's goal.
func (s *TrackerService) Recommendations(ctx context.Context, userID uuid.UUID) (string, []nutrition.Recommendation, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	goal := ""
	if p != nil {
		goal = p.Goal
	}
	return goal, nutrition.ExerciseRecommendations(p.Nutrition()), nil
}

func (s *TrackerService) parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.Today(), nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, invalid("date", "Date must look like YYYY-MM-DD.")
	}
	return d, nil
}

func parseNonNegativeFloat(field, label, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(field, label+" must be a number.")
	}
	if v < 0 {
		return 0, invalid(field, label+" cannot be negative.")
	}
	return v, nil
}

func parseNonNegativeInt(field, label, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(field, label+" must be a whole number.")
	}
	if v < 0 {
		return 0, invalid(field, label+" cannot be negative.")
	}
	return v, nil
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
