package apperr

import (
	"github.com/abduss/docshelf/internal/logger"
	"github.com/gin-gonic/gin"
)

// Respond writes err as {"error": ..., "code": ...}. Messages of server-side
// kinds are replaced with fallback so driver details stay in the logs; the
// request's correlation id is returned instead to find them there.
func Respond(c *gin.Context, err error, fallback string) {
	kind := KindOf(err)
	status := HTTPStatus(kind)

	body := gin.H{"error": err.Error(), "code": kind}
	if status >= 500 {
		body["error"] = fallback
		if id := logger.CorrelationID(c); id != "" {
			body["correlation_id"] = id
		}
	}

	_ = c.Error(err)
	c.JSON(status, body)
}
