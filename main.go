package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Fearce02/Drawlio-sub000/auth"
	"github.com/Fearce02/Drawlio-sub000/config"
	"github.com/Fearce02/Drawlio-sub000/crypto"
	"github.com/Fearce02/Drawlio-sub000/game"
	"github.com/Fearce02/Drawlio-sub000/migrations"
	"github.com/Fearce02/Drawlio-sub000/storage"
)

func CreateServer(frontendOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontendOrigin},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, using process environment")
	}
	config.Reload()

	if config.Envs.POSTGRES_URL == "" {
		log.Fatal("Missing postgres url")
	}
	if len(config.Envs.JWT_KEY) == 0 {
		log.Fatal("Missing jwt signing key")
	}
	if config.Envs.FRONTEND_ORIGIN == "" {
		log.Fatal("Missing frontend origin")
	}
	if config.Envs.GIN_MODE != "" {
		gin.SetMode(config.Envs.GIN_MODE)
	}

	if err := migrations.Migrate(config.Envs.POSTGRES_URL); err != nil {
		log.Fatal(err)
	}

	pgRepo, err := storage.NewPostgresRepo(context.Background(), config.Envs.POSTGRES_URL)
	if err != nil {
		log.Fatal(err)
	}

	tokenAge := time.Hour * 24 * 7 // 7 days
	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenManager := crypto.NewJWTManager(config.Envs.JWT_KEY, tokenAge)

	authService := auth.NewService(pgRepo, passwordHasher, tokenManager)
	authHandler := auth.NewHandler(authService, tokenAge)

	r := CreateServer(config.Envs.FRONTEND_ORIGIN)

	{
		authGroup := r.Group("/auth")
		authGroup.POST("/signup", authHandler.SignupHandler)
		authGroup.POST("/login", authHandler.LoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
	}

	words := game.NewFallbackSource(pgRepo)
	presence := game.NewPresence(pgRepo)
	recorder := game.NewStatsRecorder(pgRepo, presence)
	registry := game.NewRegistry(words, recorder, game.RealTickerCreator{})

	sweepStarted := make(chan struct{})
	go registry.Sweep(sweepStarted)
	<-sweepStarted

	gateway := game.NewGateway(registry, presence, pgRepo)

	r.GET("/ws", authHandler.OptionalAuthMiddleware, gateway.WebsocketHandler)
	r.GET("/rooms/:code/exists", gateway.RoomExistsHandler)

	{
		meGroup := r.Group("/me")
		meGroup.Use(authHandler.RequireAuthMiddleware)
		meGroup.GET("", authHandler.MeHandler)
		meGroup.GET("/stats", gateway.MyStatsHandler)
		meGroup.GET("/friends/online", gateway.OnlineFriendsHandler)
	}

	listenAddr := config.Envs.LISTEN_ADDR
	if listenAddr == "" {
		listenAddr = ":5000"
	}

	slog.Info("server starting", "addr", listenAddr)
	if err := r.Run(listenAddr); err != nil {
		log.Fatal(err)
	}
}
