package verdict

import "fmt"

// Bucket is one row of the explanation policy: an inclusive lower
// bound on the top score and the phrase used for each outcome. The
// percentage is embedded with a single decimal.
type Bucket struct {
	Name string
	Min  float64
	AI   string
	Real string
}

// Buckets is the full explanation policy, evaluated top down. The last
// row has Min 0 so every score lands somewhere.
var Buckets = []Bucket{
	{
		Name: "highly confident",
		Min:  0.90,
		AI:   "The model is highly confident (%.1f%%) this image was created by an AI system. Telltale signs include hyper-smooth textures, unnatural lighting gradients, and structural inconsistencies typical of generative models.",
		Real: "The model is highly confident (%.1f%%) this is a real photograph. Natural noise patterns, authentic lighting, and organic imperfections are consistent with a camera-captured image.",
	},
	{
		Name: "confident",
		Min:  0.70,
		AI:   "The model suspects (%.1f%%) this image is AI-generated. Several subtle artifacts such as irregular edges or blended features are characteristic of diffusion or GAN-based synthesis.",
		Real: "The model believes (%.1f%%) this is a real image. It exhibits mostly authentic photographic characteristics, with only minor ambiguities.",
	},
	{
		Name: "moderately confident",
		Min:  0,
		AI:   "The model leans toward AI-generated (%.1f%%), but with moderate uncertainty. The image has some synthetic-looking qualities, though it shares traits with real photography too.",
		Real: "The model leans toward real (%.1f%%), but is not highly certain. This image sits near the boundary between AI-generated and real photography.",
	},
}

// Explain returns the canned explanation for a prediction at the given
// top score. Pure and deterministic.
func Explain(prediction string, score float64) string {
	row := Buckets[len(Buckets)-1]
	for _, b := range Buckets {
		if score >= b.Min {
			row = b
			break
		}
	}

	text := row.Real
	if prediction == PredictionAI {
		text = row.AI
	}
	return fmt.Sprintf(text, score*100)
}
