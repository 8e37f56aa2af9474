// Package classifier hosts the image-classification pipeline: one model
// loaded at startup, shared read-only by every request. Nothing outside
// this package touches the underlying session.
package classifier

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	ort "github.com/yalue/onnxruntime_go"

	"aidetector/internal/apperror"
	"aidetector/internal/hub"
)

// deviceCPU is the execution device reported to health checks; the CPU
// execution provider is the only one wired into the session.
const deviceCPU = "cpu"

// Tensor names used by standard image-classification ONNX exports.
const (
	inputTensorName  = "pixel_values"
	outputTensorName = "logits"
)

type Options struct {
	ModelName string
	CacheDir  string
	// RuntimeLib optionally points at the onnxruntime shared library.
	RuntimeLib string
	Hub        *hub.Client
	Log        *slog.Logger
}

// Pipeline owns the loaded inference session for the process lifetime.
// It starts not-ready; Load flips it ready on success. A pipeline that
// failed to load keeps serving Ready()==false so health checks can
// report the degraded state instead of the process crash-looping.
type Pipeline struct {
	opts    Options
	meta    metadata
	session *ort.DynamicAdvancedSession
	ready   atomic.Bool
}

func New(opts Options) *Pipeline {
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Pipeline{opts: opts}
}

// Load fetches the model artifacts, parses their metadata and creates
// the inference session. Meant to be called exactly once, before the
// server accepts traffic.
func (p *Pipeline) Load(ctx context.Context) error {
	if err := validateModelName(p.opts.ModelName); err != nil {
		return err
	}
	dir := filepath.Join(p.opts.CacheDir, strings.ReplaceAll(p.opts.ModelName, "/", "--"))

	if err := p.opts.Hub.Ensure(ctx, p.opts.ModelName, dir, artifactFiles); err != nil {
		return fmt.Errorf("fetch model artifacts: %w", err)
	}

	meta, err := loadMetadata(dir)
	if err != nil {
		return err
	}

	if p.opts.RuntimeLib != "" {
		ort.SetSharedLibraryPath(p.opts.RuntimeLib)
	}
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	session, err := ort.NewDynamicAdvancedSession(filepath.Join(dir, onnxFileName),
		[]string{inputTensorName}, []string{outputTensorName}, nil)
	if err != nil {
		return fmt.Errorf("create onnx session: %w", err)
	}

	p.meta = meta
	p.session = session
	p.ready.Store(true)

	p.opts.Log.Info("model ready",
		"model", p.opts.ModelName,
		"classes", meta.labels,
		"input_size", meta.inputSize,
		"device", deviceCPU,
	)
	return nil
}

// validateModelName rejects ids with path tricks. Every /-separated
// component must be a plain name so the derived cache key stays inside
// the cache directory.
func validateModelName(name string) error {
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("invalid model name %q", name)
		}
	}
	return nil
}

// Ready reports whether initialization completed successfully.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Device identifies the execution device for the health check.
func (p *Pipeline) Device() string {
	return deviceCPU
}

// Classify runs one inference over img and returns the full label/score
// list ranked by descending score. Deterministic for a fixed model and
// input. Tensors are created per call, so concurrent classifications
// are safe without locking; the session itself is re-entrant.
func (p *Pipeline) Classify(ctx context.Context, img image.Image) ([]Prediction, error) {
	if !p.ready.Load() {
		return nil, apperror.Unavailable("Model not loaded. Please check server logs.")
	}
	if err := ctx.Err(); err != nil {
		return nil, apperror.Inference(err)
	}

	data := tensorize(flattenRGB(img), p.meta.inputSize, p.meta.mean, p.meta.std)
	edge := int64(p.meta.inputSize)

	input, err := ort.NewTensor(ort.NewShape(1, 3, edge, edge), data)
	if err != nil {
		return nil, apperror.Inference(fmt.Errorf("create input tensor: %w", err))
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(p.meta.labels))))
	if err != nil {
		return nil, apperror.Inference(fmt.Errorf("create output tensor: %w", err))
	}
	defer output.Destroy()

	if err := p.session.Run([]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output}); err != nil {
		return nil, apperror.Inference(fmt.Errorf("run inference: %w", err))
	}

	scores := softmax(output.GetData())
	preds := make([]Prediction, len(scores))
	for i, score := range scores {
		preds[i] = Prediction{Label: p.meta.labels[i], Score: score}
	}
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Score > preds[j].Score })

	return preds, nil
}

// Close releases the session. Safe to call on a pipeline that never
// finished loading.
func (p *Pipeline) Close() {
	p.ready.Store(false)
	if p.session != nil {
		p.session.Destroy()
		p.session = nil
	}
	if ort.IsInitialized() {
		ort.DestroyEnvironment()
	}
}

// softmax maps raw logits to probabilities in [0, 1]. The max is
// subtracted first for numerical stability.
func softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}

	maxLogit := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > maxLogit {
			maxLogit = float64(l)
		}
	}

	scores := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		scores[i] = math.Exp(float64(l) - maxLogit)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
	return scores
}
