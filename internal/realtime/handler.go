package realtime

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades authenticated HTTP requests into hub connections.
type Handler struct {
	hub      *Hub
	tokenSvc domain.TokenService
	logger   *zap.Logger
}

// NewHandler creates a new websocket handshake handler
func NewHandler(hub *Hub, tokenSvc domain.TokenService, logger *zap.Logger) *Handler {
	return &Handler{
		hub:      hub,
		tokenSvc: tokenSvc,
		logger:   logger,
	}
}

// Handle validates the bearer token and, only on success, upgrades the
// connection. A failed handshake terminates the attempt immediately; no
// room operation is reachable without a resolved account id.
func (h *Handler) Handle(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token required"})
		return
	}

	claims, err := h.tokenSvc.Validate(token)
	if err != nil {
		switch err {
		case domain.ErrTokenExpired:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
		default:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(h.hub, conn, claims.AccountID, h.logger)
	h.logger.Info("websocket connected", zap.Uint("account_id", client.AccountID))

	go client.writePump()
	client.readPump()

	h.logger.Info("websocket disconnected", zap.Uint("account_id", client.AccountID))
}

// bearerToken pulls the session token from the Authorization header or,
// for browser websocket clients that cannot set headers, the token query
// parameter.
func bearerToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Query("token")
}
