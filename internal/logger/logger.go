package logger

import (
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CorrelationIDHeader carries the per-request identifier to clients.
const CorrelationIDHeader = "X-Correlation-ID"

const contextKey = "linedriveCorrelationID"

// Init builds the application logger. The level comes from LOG_LEVEL
// (debug, info, warn, error), defaulting to info.
func Init() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("LOG_LEVEL")))
	return cfg.Build()
}

func parseLevel(raw string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Middleware assigns a correlation ID to every request, reusing the caller's
// header value when present.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextKey, id)
		c.Writer.Header().Set(CorrelationIDHeader, id)
		c.Next()
	}
}

// CorrelationID extracts the request's correlation ID, if any.
func CorrelationID(c *gin.Context) string {
	value, exists := c.Get(contextKey)
	if !exists {
		return ""
	}
	id, _ := value.(string)
	return id
}
