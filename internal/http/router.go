package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/wiz0007/WeChat-server/internal/http/handlers"
	"github.com/wiz0007/WeChat-server/internal/http/middleware"
	"github.com/wiz0007/WeChat-server/internal/realtime"
)

func BuildRouter(ah *handlers.AuthHandlers, ch *handlers.ChatHandlers, ws *realtime.Handler, jwtmw *middleware.AuthMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/login", ah.Login)
	auth.POST("/google", ah.GoogleLogin)
	auth.POST("/otp/verify", ah.VerifyOTP)
	auth.POST("/otp/resend", ah.ResendOTP)
	auth.POST("/password/forgot", ah.ForgotPassword)
	auth.POST("/password/reset", ah.ResetPassword)

	// The websocket handler does its own token validation so the handshake
	// can also carry the token as a query parameter.
	r.GET("/ws", ws.Handle)

	v := r.Group("/").Use(jwtmw.WithJWT())
	v.GET("/auth/me", ah.Me)
	v.GET("/users", ch.ListAccounts)
	v.POST("/chats", ch.AccessChat)
	v.GET("/chats/:id/messages", ch.History)
	v.POST("/messages", ch.SendMessage)
	v.POST("/messages/:id/read", ch.MarkRead)

	return r
}
