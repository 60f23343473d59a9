package srs

// Params defines the tunable parameters of the scheduling algorithm. The
// defaults implement the classic SM-2 ladder; the lapse reset and the minimum
// ease factor are load-bearing for interval monotonicity and should not be
// loosened.
type Params struct {
	// MinEaseFactor is the floor applied after every ease-factor update.
	MinEaseFactor float64

	// SuccessThreshold is the quality score at or above which a review counts
	// as a success. Anything below is a lapse.
	SuccessThreshold int

	// FirstInterval is the interval in days after the first success following
	// creation or a lapse.
	FirstInterval int

	// SecondInterval is the interval in days after the second consecutive
	// success.
	SecondInterval int

	// LapseInterval is the interval in days a lapsed card resets to,
	// regardless of its prior interval.
	LapseInterval int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:    1.3,
		SuccessThreshold: 3,
		FirstInterval:    1,
		SecondInterval:   6,
		LapseInterval:    1,
	}
}
