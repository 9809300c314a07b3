package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseRecommendationsNilProfile(t *testing.T) {
	recs := ExerciseRecommendations(nil)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestExerciseRecommendationsMaintain(t *testing.T) {
	recs := ExerciseRecommendations(&Profile{Goal: GoalMaintain})

	require.Len(t, recs, 7)
	assert.Equal(t, baseCatalog, recs[:6])

	last := recs[6]
	assert.Equal(t, "Full-body strength 2x/week", last.Name)
	assert.Equal(t, Strength, last.Category)
	assert.Equal(t, 5.0, last.MET)
	assert.Equal(t, 40, last.DurationMin)
}

func TestExerciseRecommendationsUnknownGoalFallsBackToMaintain(t *testing.T) {
	recs := ExerciseRecommendations(&Profile{Goal: "bulk"})
	assert.Len(t, recs, 7)

	recs = ExerciseRecommendations(&Profile{})
	assert.Len(t, recs, 7)
}

func TestExerciseRecommendationsLose(t *testing.T) {
	recs := ExerciseRecommendations(&Profile{Goal: GoalLose})

	require.Len(t, recs, 6)
	byName := map[string]int{}
	for _, r := range baseCatalog {
		byName[r.Name] = r.DurationMin
	}

	for _, r := range recs[:5] {
		assert.Contains(t, []Category{Cardio, Strength}, r.Category)
		assert.Equal(t, byName[r.Name]+10, r.DurationMin, r.Name)
		assert.Equal(t, "Fat-loss focus: try intervals.", r.Note)
	}

	habit := recs[5]
	assert.Equal(t, "Walk after meals", habit.Name)
	assert.Equal(t, Habit, habit.Category)
	assert.Equal(t, 3.3, habit.MET)
	assert.Equal(t, 10, habit.DurationMin)
}

func TestExerciseRecommendationsDoNotMutateCatalog(t *testing.T) {
	before := append([]Recommendation(nil), baseCatalog...)

	ExerciseRecommendations(&Profile{Goal: GoalLose})
	ExerciseRecommendations(&Profile{Goal: GoalLose})

	assert.Equal(t, before, baseCatalog)
	assert.Equal(t, ExerciseRecommendations(&Profile{Goal: GoalLose}), ExerciseRecommendations(&Profile{Goal: GoalLose}))
}
