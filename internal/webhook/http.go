package webhook

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/warit/linedrive/internal/line"
)

// RegisterRoutes mounts the webhook endpoint on the router.
func RegisterRoutes(router *gin.Engine, handler *Handler) {
	router.POST("/webhook/line", handler.handleWebhook)
}

// Handler authenticates and parses inbound webhook requests before handing
// the envelope to the pipeline.
type Handler struct {
	pipeline *Pipeline
	secret   string
	logger   *zap.Logger
}

// NewHandler builds the webhook HTTP handler.
func NewHandler(pipeline *Pipeline, channelSecret string, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		secret:   channelSecret,
		logger:   logger,
	}
}

func (h *Handler) handleWebhook(c *gin.Context) {
	// the signature is computed over the raw bytes, so read before decoding
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("read webhook body", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	signature := c.GetHeader(line.SignatureHeader)
	if signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing signature"})
		return
	}
	if !line.ValidateSignature(h.secret, body, signature) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var hook line.Webhook
	if err := json.Unmarshal(body, &hook); err != nil {
		h.logger.Error("decode webhook envelope", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.pipeline.Process(c.Request.Context(), hook)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
