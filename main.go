package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"PChat/config"
	"PChat/data/database/mgo/mongoutil"
	"PChat/logger"
	mid "PChat/middleware"
	midsec "PChat/middleware/security"
	chatapi "PChat/module/chat"
	"PChat/module/chat/message"
	"PChat/module/user"
	usersvc "PChat/module/user/service"
	chatsvc "PChat/service/chat"
	jwtsec "PChat/tools/security"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("[Boot] load config failed err=%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1) MongoDB
	mcli, err := mongoutil.NewMongoDB(ctx, &mongoutil.Config{
		Uri:      cfg.MongoURI,
		Database: cfg.MongoDatabase,
	})
	if err != nil {
		logger.Fatalf("[Boot] mongo connect failed err=%v", err)
	}
	logger.Infof("[Boot] MongoDB connected database=%s", cfg.MongoDatabase)

	msgStore := message.NewStore(mcli.GetDB())
	accounts := usersvc.NewStore(mcli.GetDB())

	// 2) Broadcast core
	registry := chatsvc.NewRegistry()
	hub := chatsvc.NewHub(msgStore, registry)
	gateway := chatsvc.NewGateway(hub, chatsvc.GatewayConf{AllowedOrigin: cfg.ClientOrigin})

	// 3) Retention sweeper
	sweeper := chatsvc.NewSweeper(msgStore, chatsvc.SweeperConf{})
	go sweeper.Run(ctx)

	// 4) HTTP + WebSocket routes
	jwtOpts := jwtsec.DefaultOptions([]byte(cfg.JWTSecret))
	userHandler := user.NewHandler(accounts, jwtOpts)
	chatHandler := chatapi.NewHandler(msgStore)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), mid.CORS(cfg.ClientOrigin))

	r.GET("/ws", gateway.HandleWS)

	auth := r.Group("/api/auth")
	auth.POST("/register", userHandler.HandlerRegister)
	auth.POST("/login", userHandler.HandlerLogin)
	auth.GET("/me", midsec.Middleware(midsec.DefaultOptions(jwtOpts)), userHandler.HandlerMe)

	api := r.Group("/api/chat")
	api.GET("/messages", chatHandler.HandlerMessages)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	go func() {
		logger.Infof("[HTTP] Server running on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("[HTTP] server failed err=%v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("[Boot] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	registry.Close()
	_ = mcli.Disconnect(shutdownCtx)
}
