package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"negmdf/adapters/api"
	"negmdf/internal"
	"negmdf/internal/config"
	"negmdf/internal/container"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load application configuration, seeding the environment from .env
	appConfig, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	c, err := container.New(appConfig, logger)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer c.Close()

	// Persistence is optional; without DATABASE_URL the runs endpoints answer 503
	if err := c.InitWithDatabase(ctx); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	server := api.NewServer(c.Service, logger)
	addr := net.JoinHostPort("", appConfig.Server.Port)
	if err := server.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
