package models

// DifficultyLevel is the learner level a word is aimed at.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "Beginner"
	DifficultyIntermediate DifficultyLevel = "Intermediate"
	DifficultyAdvanced     DifficultyLevel = "Advanced"
)

// DifficultyLevels lists the valid levels in ascending order.
var DifficultyLevels = []DifficultyLevel{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func (d DifficultyLevel) String() string { return string(d) }

// IsValid reports whether d is one of the known levels.
func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ParseDifficultyLevel converts a raw value into a DifficultyLevel. Matching
// is exact.
func ParseDifficultyLevel(s string) (DifficultyLevel, error) {
	d := DifficultyLevel(s)
	if !d.IsValid() {
		return "", NewValidationError(invalidDifficulty())
	}
	return d, nil
}
