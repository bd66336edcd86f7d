package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wiz0007/WeChat-server/internal/config"
	httpx "github.com/wiz0007/WeChat-server/internal/http"
	"github.com/wiz0007/WeChat-server/internal/http/handlers"
	"github.com/wiz0007/WeChat-server/internal/http/middleware"
	"github.com/wiz0007/WeChat-server/internal/realtime"
)

func Run(cfg *config.Config, logger *zap.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	container, err := NewContainer(cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	if err := container.RedisClient.Ping(context.Background()); err != nil {
		return err
	}

	authH := handlers.NewAuthHandlers(container.AuthSvc)
	chatH := handlers.NewChatHandlers(container.ChatSvc)
	wsH := realtime.NewHandler(container.Hub, container.TokenSvc, logger)
	jwtMW := middleware.NewAuthMW(container.TokenSvc)

	r := httpx.BuildRouter(authH, chatH, wsH, jwtMW)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}
