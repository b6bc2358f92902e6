package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"translatehub/auth"
	"translatehub/change"
	"translatehub/config"
	"translatehub/db"
	"translatehub/dialogue"
	"translatehub/httpapi"
	"translatehub/importer"
	"translatehub/project"
	"translatehub/review"
	"translatehub/task"
	"translatehub/translator"
)

func main() {
	configFile := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		log.Fatalf("bootstrap database pool: %v", err)
	}
	defer pool.Close()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, cfg.Auth.JWTSecret)

	projectService := project.NewService(project.NewRepository(pool))

	dialogueRepo := dialogue.NewRepository(pool)
	changeRepo := change.NewRepository(pool)
	taskRepo := task.NewRepository(pool)

	taskService := task.NewService(pool, taskRepo, dialogueRepo, changeRepo)
	reviewService := review.NewService(pool, taskRepo, dialogueRepo, changeRepo)

	var provider translator.Provider = translator.Noop{}
	if cfg.Translator.Provider == config.ProviderOpenAI {
		provider = translator.NewOpenAIClient(cfg.Translator.BaseURL, cfg.Translator.APIKey, cfg.Translator.Model)
	}
	importService := importer.NewService(projectService, taskService, provider)

	server := httpapi.NewServer(authService, projectService, taskService, importService, reviewService)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("api listening on %s", addr)
	if err := server.Router().Run(addr); err != nil {
		log.Fatalf("serve: %v", err)
	}
}
