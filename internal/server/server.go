// Package server exposes the HTTP surface: the prediction endpoint,
// the health check and the embedded upload page.
package server

import (
	"context"
	"image"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"aidetector/internal/classifier"
)

// ModelHost is the slice of the classification pipeline the HTTP
// layer depends on.
type ModelHost interface {
	Ready() bool
	Device() string
	Classify(ctx context.Context, img image.Image) ([]classifier.Prediction, error)
}

type Handler struct {
	host ModelHost
}

func NewHandler(host ModelHost) *Handler {
	return &Handler{host: host}
}

// NewRouter builds the engine with the full middleware chain and the
// route table.
func NewRouter(host ModelHost, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(), cors.Default())
	r.MaxMultipartMemory = MaxUploadBytes

	h := NewHandler(host)
	r.GET("/", h.Index)
	r.GET("/health", h.Health)
	r.POST("/predict", h.Predict)

	return r
}
