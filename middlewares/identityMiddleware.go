package middlewares

import (
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderActingIdentity = "X-Acting-Identity"
	HeaderCorrelationId  = "X-Correlation-Id"
)

// IdentityMiddleware lifts the acting identity and correlation id from the
// request headers into the context. The identity is an opaque string; the
// ledger records it verbatim and makes no authorization decision on it.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if actor := c.GetHeader(HeaderActingIdentity); actor != "" {
			ctx = utils.SetActorInContext(ctx, actor)
		}

		correlationId := c.GetHeader(HeaderCorrelationId)
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		c.Writer.Header().Set(HeaderCorrelationId, correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
