package nutrition

import "math"

const (
	cmPerInch   = 2.54
	lbsPerKG    = 2.20462
	inchPerFoot = 12.0
)

func CMToInches(cm float64) float64 { return cm / cmPerInch }

func InchesToCM(inches float64) float64 { return inches * cmPerInch }

func KGToLbs(kg float64) float64 { return kg * lbsPerKG }

func LbsToKG(lbs float64) float64 { return lbs / lbsPerKG }

// FeetInchesToCM converts a height given as feet plus inches to centimeters.
func FeetInchesToCM(feet, inches float64) float64 {
	return InchesToCM(feet*inchPerFoot + inches)
}

// CMToFeetInches splits a centimeter height into whole feet and the remaining
// inches rounded to one decimal place.
func CMToFeetInches(cm float64) (feet int, inches float64) {
	total := CMToInches(cm)
	feet = int(math.Floor(total / inchPerFoot))
	inches = round1(total - float64(feet)*inchPerFoot)
	if inches >= inchPerFoot {
		feet++
		inches = 0
	}
	return feet, inches
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
