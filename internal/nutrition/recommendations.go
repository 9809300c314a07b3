package nutrition

// Category groups recommendations by the kind of training they provide.
type Category string

const (
	Cardio   Category = "cardio"
	Strength Category = "strength"
	Mobility Category = "mobility"
	Habit    Category = "habit"
)

// Recommendation is a suggested activity. Catalog entries carry an Intensity
// label; the appended extras carry a MET value instead.
type Recommendation struct {
	Name        string   `json:"name"`
	Intensity   string   `json:"intensity,omitempty"`
	MET         float64  `json:"met,omitempty"`
	DurationMin int      `json:"duration_min"`
	Category    Category `json:"category"`
	Note        string   `json:"note,omitempty"`
}

var baseCatalog = []Recommendation{
	{Name: "Brisk Walking", Intensity: "Moderate", DurationMin: 30, Category: Cardio},
	{Name: "Jogging", Intensity: "Heavy", DurationMin: 20, Category: Cardio},
	{Name: "Cycling (leisure)", Intensity: "Low", DurationMin: 30, Category: Cardio},
	{Name: "Bodyweight Circuit", Intensity: "Moderate", DurationMin: 25, Category: Strength},
	{Name: "Swimming (moderate)", Intensity: "Moderate", DurationMin: 25, Category: Cardio},
	{Name: "Pilates/core", Intensity: "Low", DurationMin: 30, Category: Mobility},
}

const (
	fatLossExtraMinutes = 10
	fatLossNote         = "Fat-loss focus: try intervals."
)

var postMealWalk = Recommendation{
	Name:        "Walk after meals",
	MET:         3.3,
	DurationMin: 10,
	Category:    Habit,
	Note:        "Light post-meal walk 2-3x/day",
}

var fullBodyStrength = Recommendation{
	Name:        "Full-body strength 2x/week",
	MET:         5.0,
	DurationMin: 40,
	Category:    Strength,
}

// ExerciseRecommendations selects activities for the profile's goal. A nil
// profile yields no recommendations.
func ExerciseRecommendations(p *Profile) []Recommendation {
	if p == nil {
		return []Recommendation{}
	}

	if p.Goal.normalized() == GoalLose {
		out := make([]Recommendation, 0, len(baseCatalog)+1)
		for _, r := range baseCatalog {
			if r.Category != Cardio && r.Category != Strength {
				continue
			}
			r.DurationMin += fatLossExtraMinutes
			r.Note = fatLossNote
			out = append(out, r)
		}
		return append(out, postMealWalk)
	}

	out := make([]Recommendation, 0, len(baseCatalog)+1)
	out = append(out, baseCatalog...)
	return append(out, fullBodyStrength)
}
