package domain

// Rating is the grade a learner assigns to a card after reviewing it.
type Rating string

// Valid ratings, from complete failure to effortless recall.
const (
	RatingAgain  Rating = "again"
	RatingHard   Rating = "hard"
	RatingMedium Rating = "medium"
	RatingEasy   Rating = "easy"
)

// IsValid reports whether the rating is one of the four known grades.
// The scheduler itself tolerates unknown ratings (they degrade to Hard);
// this is for request validation at the API boundary.
func (r Rating) IsValid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingMedium, RatingEasy:
		return true
	default:
		return false
	}
}
