package classifier

// Prediction is one (label, score) entry of a ranked classification
// result. Scores are in [0, 1]; the top entry's score is treated as the
// confidence of the call.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
