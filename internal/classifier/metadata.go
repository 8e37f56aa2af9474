package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Artifact names within a model repository. The network is an ONNX
// export; the two JSON files describe its label vocabulary and input
// preprocessing, in the layout Hugging Face model repos use.
const (
	onnxFileName         = "model.onnx"
	configFileName       = "config.json"
	preprocessorFileName = "preprocessor_config.json"
)

var artifactFiles = []string{onnxFileName, configFileName, preprocessorFileName}

// metadata is everything the pipeline needs besides the network itself.
type metadata struct {
	labels    []string
	inputSize int
	mean      [3]float32
	std       [3]float32
}

func loadMetadata(dir string) (metadata, error) {
	var meta metadata

	rawConfig, err := os.ReadFile(filepath.Join(dir, configFileName))
	if err != nil {
		return meta, fmt.Errorf("read model config: %w", err)
	}
	meta.labels, err = parseLabels(rawConfig)
	if err != nil {
		return meta, fmt.Errorf("parse %s: %w", configFileName, err)
	}

	rawPre, err := os.ReadFile(filepath.Join(dir, preprocessorFileName))
	if err != nil {
		return meta, fmt.Errorf("read preprocessor config: %w", err)
	}
	meta.inputSize, meta.mean, meta.std, err = parsePreprocessor(rawPre)
	if err != nil {
		return meta, fmt.Errorf("parse %s: %w", preprocessorFileName, err)
	}

	return meta, nil
}

// parseLabels turns the config's id2label map into a slice indexed by
// class id, matching the order of the network's output logits.
func parseLabels(raw []byte) ([]string, error) {
	var cfg struct {
		ID2Label map[string]string `json:"id2label"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.ID2Label) == 0 {
		return nil, fmt.Errorf("id2label is missing or empty")
	}

	labels := make([]string, len(cfg.ID2Label))
	for key, label := range cfg.ID2Label {
		idx, err := strconv.Atoi(key)
		if err != nil || idx < 0 || idx >= len(labels) {
			return nil, fmt.Errorf("id2label has non-contiguous class id %q", key)
		}
		if labels[idx] != "" {
			return nil, fmt.Errorf("id2label repeats class id %d", idx)
		}
		if label == "" {
			return nil, fmt.Errorf("id2label has empty label for class id %d", idx)
		}
		labels[idx] = label
	}
	return labels, nil
}

// parsePreprocessor reads the input edge size and per-channel
// normalization. The "size" field varies across exports: a bare number,
// {"height","width"} or {"shortest_edge"} are all accepted.
func parsePreprocessor(raw []byte) (int, [3]float32, [3]float32, error) {
	mean := [3]float32{0.5, 0.5, 0.5}
	std := [3]float32{0.5, 0.5, 0.5}

	var cfg struct {
		Size      json.RawMessage `json:"size"`
		ImageMean []float32       `json:"image_mean"`
		ImageStd  []float32       `json:"image_std"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return 0, mean, std, err
	}

	size, err := parseSize(cfg.Size)
	if err != nil {
		return 0, mean, std, err
	}

	if len(cfg.ImageMean) > 0 {
		if len(cfg.ImageMean) != 3 {
			return 0, mean, std, fmt.Errorf("image_mean must have 3 entries, got %d", len(cfg.ImageMean))
		}
		copy(mean[:], cfg.ImageMean)
	}
	if len(cfg.ImageStd) > 0 {
		if len(cfg.ImageStd) != 3 {
			return 0, mean, std, fmt.Errorf("image_std must have 3 entries, got %d", len(cfg.ImageStd))
		}
		copy(std[:], cfg.ImageStd)
	}
	for _, s := range std {
		if s == 0 {
			return 0, mean, std, fmt.Errorf("image_std must not contain zeros")
		}
	}

	return size, mean, std, nil
}

func parseSize(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("size is missing")
	}

	var edge int
	if err := json.Unmarshal(raw, &edge); err == nil {
		if edge <= 0 {
			return 0, fmt.Errorf("size must be positive, got %d", edge)
		}
		return edge, nil
	}

	var dims struct {
		Height       int `json:"height"`
		Width        int `json:"width"`
		ShortestEdge int `json:"shortest_edge"`
	}
	if err := json.Unmarshal(raw, &dims); err != nil {
		return 0, fmt.Errorf("unsupported size format %s", raw)
	}
	switch {
	case dims.Height > 0 && dims.Height == dims.Width:
		return dims.Height, nil
	case dims.ShortestEdge > 0:
		return dims.ShortestEdge, nil
	default:
		return 0, fmt.Errorf("unsupported size format %s", raw)
	}
}
