package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/willianramosdev-stack/todoApp/internal/cache"
	"github.com/willianramosdev-stack/todoApp/internal/config"
	"github.com/willianramosdev-stack/todoApp/internal/database"
	"github.com/willianramosdev-stack/todoApp/internal/handler"
	"github.com/willianramosdev-stack/todoApp/internal/queue"
	"github.com/willianramosdev-stack/todoApp/internal/repository"
	"github.com/willianramosdev-stack/todoApp/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db, cfg.DBName); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := repository.NewUserRepo(db)
	tasks := repository.NewTaskRepo(db)
	tokens := repository.NewTokenRepo(db)
	resets := repository.NewResetRepo(db)

	// Redis is best-effort: a nil client disables the task list cache.
	rdb := config.NewRedisClient(cfg)
	if rdb == nil {
		log.Printf("redis unavailable; task list cache disabled")
	}
	taskCache := cache.NewTaskCache(rdb, 5*time.Minute)

	authH := handler.NewAuthHandler(cfg, users, tokens, resets)
	taskH := handler.NewTaskHandler(tasks, taskCache)
	userH := handler.NewUserHandler(cfg, users)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterTasks(e, taskH, cfg.JWTAccessSecret)
	router.RegisterUsers(e, userH, cfg.JWTAccessSecret)

	// Background consumer delivering password reset mails. Runs its own
	// reconnect loop for the lifetime of the process.
	go func() {
		if err := queue.StartResetMailConsumer(cfg); err != nil {
			log.Printf("reset mail consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
