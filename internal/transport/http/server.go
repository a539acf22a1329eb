package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"

	"petlovers/internal/cache"
	"petlovers/internal/config"
	"petlovers/internal/database"
	"petlovers/internal/handler"
	"petlovers/internal/redis"
	"petlovers/internal/repository"
	"petlovers/internal/service"
)

// Run wires the whole application together and serves HTTP. Store handles
// and credential configuration are constructed here and passed down
// explicitly; nothing below this layer reads the environment.
func Run() error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Redis is optional: without it listings are served straight from
	// Postgres.
	var listCache cache.PostListCache
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to create redis client: %w", err)
		}
		if err := redisClient.Ping(ctx); err != nil {
			log.Printf("Redis unreachable, running without listing cache: %v", err)
		} else {
			defer redisClient.Close()
			listCache = cache.NewPostListCache(redisClient.Client)
		}
	}

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo, userRepo, commentRepo, mediaService, listCache)

	router := NewRouter(RouterConfig{
		AuthHandler:   handler.NewAuthHandler(userService, authService),
		PostHandler:   handler.NewPostHandler(postService, mediaService),
		TokenVerifier: authService,
	})

	addr := ":" + cfg.ServerPort
	log.Printf("Starting server on %s", addr)
	return stdhttp.ListenAndServe(addr, router)
}
