// Package verdict turns a ranked classification into the binary
// response served to clients: one of two fixed prediction strings, a
// confidence percentage and a canned explanation.
package verdict

import (
	"math"
	"strings"

	"github.com/samber/lo"

	"aidetector/internal/apperror"
	"aidetector/internal/classifier"
)

// The two canonical outcome strings. No third value is ever produced.
const (
	PredictionAI   = "AI Generated"
	PredictionReal = "Real"
)

// labelOutcomes maps the model's raw label spellings to canonical
// outcomes. The mapping is validated and fails closed: an unrecognized
// spelling is a model contract violation, not a guess. Swapping
// MODEL_NAME to a model with a different vocabulary must extend this
// table.
var labelOutcomes = map[string]string{
	"artificial": PredictionAI,
	"human":      PredictionReal,
}

type Verdict struct {
	Prediction  string  `json:"prediction"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// FromPredictions maps the highest-scoring entry to the binary verdict.
// The top score becomes the confidence, as a percentage rounded to two
// decimals.
func FromPredictions(preds []classifier.Prediction) (Verdict, error) {
	if len(preds) == 0 {
		return Verdict{}, apperror.ModelContract("")
	}

	top := lo.MaxBy(preds, func(a, b classifier.Prediction) bool {
		return a.Score > b.Score
	})

	outcome, ok := labelOutcomes[strings.ToLower(strings.TrimSpace(top.Label))]
	if !ok {
		return Verdict{}, apperror.ModelContract(top.Label)
	}

	return Verdict{
		Prediction:  outcome,
		Confidence:  math.Round(top.Score*10000) / 100,
		Explanation: Explain(outcome, top.Score),
	}, nil
}
