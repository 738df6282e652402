package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/theleywin/devconnector/src/config"
	"github.com/theleywin/devconnector/src/lib"
	"github.com/theleywin/devconnector/src/routes"
)

// @title                      DevConnector API
// @version                    1.0
// @description                Developer profiles, posts, likes and comments.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
func main() {
	cfg := config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := lib.ConnectDB(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Error connecting to %s: %v", cfg.DBDriver, err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warnf("Error closing store: %v", err)
		}
	}()
	log.Infof("Connected to %s store", cfg.DBDriver)

	app := routes.NewApp(cfg, st)

	log.Infof("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
