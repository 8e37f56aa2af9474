package apperror

import (
	"github.com/gin-gonic/gin"

	"aidetector/internal/logging"
)

// Respond converts err into the uniform {"error": "<string>"} body with
// the taxonomy's status code. Server faults are logged with the request
// context; the client only ever sees the safe message.
func Respond(c *gin.Context, err error) {
	appErr := FromError(err)

	if appErr.Status >= 500 {
		logging.FromContext(c.Request.Context()).Error("request failed",
			"kind", string(appErr.Kind),
			"error", appErr.Error(),
		)
	}

	c.JSON(appErr.Status, gin.H{"error": appErr.Message})
}
