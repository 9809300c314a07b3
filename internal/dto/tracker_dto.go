package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/nutrition"
	"github.com/google/uuid"
)

// ProfileForm holds the raw profile page fields. Height is entered in feet
// and inches, weight in pounds.
type ProfileForm struct {
	HeightFt string `form:"height_ft"`
	HeightIn string `form:"height_in"`
	WeightLb string `form:"weight_lb"`
	Age      string `form:"age"`
	Sex      string `form:"sex"`
	Activity string `form:"activity"`
	Goal     string `form:"goal"`
}

// EntryForm holds the raw add-entry page fields.
type EntryForm struct {
	Date        string `form:"date"`
	CaloriesIn  string `form:"calories_in"`
	CaloriesOut string `form:"calories_out"`
	WeightLb    string `form:"weight_lb"`
	Notes       string `form:"notes"`
}

// CreateEntryRequest is the JSON body for POST /api/me/entries. Weight is in
// kilograms.
type CreateEntryRequest struct {
	Date        string   `json:"date"`
	CaloriesIn  int      `json:"calories_in"`
	CaloriesOut int      `json:"calories_out"`
	WeightKG    *float64 `json:"weight_kg"`
	Notes       string   `json:"notes"`
}

// MetricsResponse reports null for every value when the profile is incomplete.
type MetricsResponse struct {
	BMI            *float64 `json:"bmi"`
	BMICategory    string   `json:"bmi_category,omitempty"`
	BMR            *int     `json:"bmr"`
	TDEE           *int     `json:"tdee"`
	TargetCalories *int     `json:"target_calories"`
}

func NewMetricsResponse(m nutrition.Metrics) MetricsResponse {
	if !m.Known {
		return MetricsResponse{}
	}
	return MetricsResponse{
		BMI:            &m.BMI,
		BMICategory:    nutrition.BMICategory(m.BMI),
		BMR:            &m.BMR,
		TDEE:           &m.TDEE,
		TargetCalories: &m.TargetCalories,
	}
}

type RecommendationsResponse struct {
	Goal            string                     `json:"goal"`
	Recommendations []nutrition.Recommendation `json:"recommendations"`
}

type EntryResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	CaloriesIn  int       `json:"calories_in"`
	CaloriesOut int       `json:"calories_out"`
	Net         int       `json:"net"`
	WeightKG    *float64  `json:"weight_kg"`
	Notes       *string   `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
	Since   string          `json:"since"`
}
