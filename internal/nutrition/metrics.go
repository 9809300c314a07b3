package nutrition

import (
	"math"
	"strings"
)

// ActivityLevel is one of the five fixed activity levels used to scale BMR.
type ActivityLevel string

const (
	Sedentary        ActivityLevel = "sedentary"
	LightlyActive    ActivityLevel = "lightly_active"
	ModeratelyActive ActivityLevel = "moderately_active"
	VeryActive       ActivityLevel = "very_active"
	ExtraActive      ActivityLevel = "extra_active"
)

// ActivityLevels lists the levels in ascending order.
var ActivityLevels = []ActivityLevel{Sedentary, LightlyActive, ModeratelyActive, VeryActive, ExtraActive}

var activityMultipliers = map[ActivityLevel]float64{
	Sedentary:        1.2,
	LightlyActive:    1.375,
	ModeratelyActive: 1.55,
	VeryActive:       1.725,
	ExtraActive:      1.9,
}

const defaultMultiplier = 1.55

// Valid reports whether l is one of the known activity levels.
func (l ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[l]
	return ok
}

// ActivityMultiplier returns the TDEE multiplier for level, falling back to the
// moderately active multiplier for anything unrecognised.
func ActivityMultiplier(level ActivityLevel) float64 {
	if m, ok := activityMultipliers[ActivityLevel(strings.ToLower(strings.TrimSpace(string(level))))]; ok {
		return m
	}
	return defaultMultiplier
}

// Goal is the user's weight goal.
type Goal string

const (
	GoalMaintain Goal = "maintain"
	GoalLose     Goal = "lose"
)

// Valid reports whether g is maintain or lose.
func (g Goal) Valid() bool {
	return g == GoalMaintain || g == GoalLose
}

func (g Goal) normalized() Goal {
	return Goal(strings.ToLower(strings.TrimSpace(string(g))))
}

// Sex values as stored on a profile. Anything other than SexMale uses the
// female Mifflin-St Jeor constant.
const (
	SexMale   = "M"
	SexFemale = "F"
)

// Profile is the calculator's view of a user's health profile. Zero values
// mean the field is not set.
type Profile struct {
	HeightCM float64
	WeightKG float64
	Age      int
	Sex      string
	Activity ActivityLevel
	Goal     Goal
}

// Complete reports whether every field required for metrics is present.
func (p *Profile) Complete() bool {
	return p != nil && positive(p.HeightCM) && positive(p.WeightKG) && p.Age > 0 && strings.TrimSpace(p.Sex) != ""
}

// positive rejects NaN and infinities along with zero and negatives.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// Metrics holds the derived values for a profile. When Known is false every
// other field is meaningless and should be shown as unknown.
type Metrics struct {
	Known          bool
	BMI            float64
	BMR            int
	TDEE           int
	TargetCalories int
}

// lossDeficit is the daily calorie deficit applied for the "lose" goal.
const lossDeficit = 500

// CalculateMetrics derives BMI, BMR, TDEE and target calories from p.
//
// BMR is rounded to the nearest integer first and TDEE is computed from the
// rounded BMR, so the displayed numbers are consistent with each other. For the
// lose goal the target is never below the BMR.
func CalculateMetrics(p *Profile) Metrics {
	if !p.Complete() {
		return Metrics{}
	}

	heightM := p.HeightCM / 100
	bmi := round1(p.WeightKG / (heightM * heightM))

	bmrRaw := 10*p.WeightKG + 6.25*p.HeightCM - 5*float64(p.Age)
	if strings.EqualFold(strings.TrimSpace(p.Sex), SexMale) {
		bmrRaw += 5
	} else {
		bmrRaw -= 161
	}
	bmr := int(math.Round(bmrRaw))

	tdee := int(math.Round(float64(bmr) * ActivityMultiplier(p.Activity)))

	target := tdee
	if p.Goal.normalized() == GoalLose {
		target = max(tdee-lossDeficit, bmr)
	}

	return Metrics{
		Known:          true,
		BMI:            bmi,
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: target,
	}
}

// BMICategory returns the WHO band for a BMI value.
func BMICategory(bmi float64) string {
	switch {
	case bmi <= 0:
		return ""
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	case bmi < 35.0:
		return "Obesity class I"
	case bmi < 40.0:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}
