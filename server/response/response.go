package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apiError "github.com/waylines/waylines/errors"
)

// JSON writes the uniform response envelope. A non-nil err overrides the
// status with the error's own when it carries one.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	var errMsg interface{}
	if err != nil {
		if apiErr, ok := err.(*apiError.Error); ok {
			errMsg = apiErr.Message
			if apiErr.Status != 0 {
				status = apiErr.Status
			}
		} else {
			errMsg = err.Error()
		}
	}

	c.JSON(status, gin.H{
		"message":   message,
		"data":      data,
		"errors":    errMsg,
		"status":    http.StatusText(status),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
