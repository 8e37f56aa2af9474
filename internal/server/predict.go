package server

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	_ "golang.org/x/image/webp"

	"aidetector/internal/apperror"
	"aidetector/internal/logging"
	"aidetector/internal/verdict"
)

// MaxUploadBytes caps accepted uploads at 5 MB.
const MaxUploadBytes = 5 << 20

// maxDecodePixels caps decoded width*height; a few-kilobyte upload can
// declare a bitmap in the gigabytes.
const maxDecodePixels = 128 << 20

var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Predict validates the uploaded image and runs it through the model.
// The checks are fail fast: the first violation is reported and the
// model is never invoked for a rejected upload.
func (h *Handler) Predict(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil || header.Filename == "" {
		apperror.Respond(c, apperror.InvalidInput(http.StatusBadRequest, "no file provided"))
		return
	}

	file, err := header.Open()
	if err != nil {
		apperror.Respond(c, apperror.Internal(err))
		return
	}
	defer file.Close()

	if err := checkContentType(header, file); err != nil {
		apperror.Respond(c, err)
		return
	}

	if header.Size > MaxUploadBytes {
		apperror.Respond(c, apperror.InvalidInput(http.StatusUnprocessableEntity, "file too large"))
		return
	}

	img, err := decodeImage(file)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	preds, err := h.host.Classify(c.Request.Context(), img)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	log := logging.FromContext(c.Request.Context())
	log.Debug("raw model output", slog.Any("predictions", preds))

	v, err := verdict.FromPredictions(preds)
	if err != nil {
		apperror.Respond(c, err)
		return
	}

	log.Info("prediction served",
		slog.String("prediction", v.Prediction),
		slog.Float64("confidence", v.Confidence),
	)
	c.JSON(http.StatusOK, v)
}

// checkContentType enforces the format allowlist. The declared part
// type wins when the client sent a meaningful one; clients that send
// application/octet-stream (curl does) or nothing get sniffed instead.
func checkContentType(header *multipart.FileHeader, file multipart.File) error {
	mt := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	if mt == "" || mt == "application/octet-stream" {
		head := make([]byte, 512)
		n, err := io.ReadFull(file, head)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return apperror.Internal(err)
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return apperror.Internal(err)
		}
		mt = mimetype.Detect(head[:n]).String()
	}

	if !allowedTypes[mt] {
		return apperror.InvalidInput(http.StatusUnprocessableEntity, "unsupported format")
	}
	return nil
}

// decodeImage turns the upload into pixels. The dimensions are read
// from the header first so a dimension bomb is rejected before the
// bitmap is allocated.
func decodeImage(file multipart.File) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(file)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxDecodePixels {
		return nil, apperror.InvalidInput(http.StatusUnprocessableEntity, "corrupt image")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, apperror.Internal(err)
	}
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, apperror.InvalidInput(http.StatusUnprocessableEntity, "corrupt image")
	}
	return img, nil
}
