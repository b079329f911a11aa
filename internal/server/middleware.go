package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roach88/stakeledger/internal/ledger"
)

const (
	ctxOwner  = "stakeledger.owner"
	ctxCaller = "stakeledger.caller"
)

// requestID echoes a client-supplied X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.DebugContext(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(HeaderRequestID),
		)
	}
}

func ownerParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, err := ledger.ParseIdentity(c.Param("owner"))
		if err != nil {
			abortError(c, http.StatusBadRequest, "INVALID_OWNER", err.Error())
			return
		}
		c.Set(ctxOwner, owner)
		c.Next()
	}
}

func requireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := parseCaller(c); !ok {
			return
		}
		c.Next()
	}
}

// parseCaller reads the caller header into the context, or aborts the
// request with an error response.
func parseCaller(c *gin.Context) (ledger.Identity, bool) {
	raw := c.GetHeader(HeaderCaller)
	if raw == "" {
		abortError(c, http.StatusUnauthorized, "MISSING_CALLER", HeaderCaller+" header is required")
		return ledger.Identity{}, false
	}
	id, err := ledger.ParseIdentity(raw)
	if err != nil {
		abortError(c, http.StatusBadRequest, "INVALID_CALLER", err.Error())
		return ledger.Identity{}, false
	}
	c.Set(ctxCaller, id)
	return id, true
}

func owner(c *gin.Context) ledger.Identity {
	return c.MustGet(ctxOwner).(ledger.Identity)
}

func caller(c *gin.Context) ledger.Identity {
	return c.MustGet(ctxCaller).(ledger.Identity)
}
