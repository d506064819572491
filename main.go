package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/josswuzhur/cloud-notes-app/config"
	"github.com/josswuzhur/cloud-notes-app/handler"
	"github.com/josswuzhur/cloud-notes-app/middleware"
	"github.com/josswuzhur/cloud-notes-app/repository"
	"github.com/josswuzhur/cloud-notes-app/services"
	"github.com/josswuzhur/cloud-notes-app/stream"
	"github.com/josswuzhur/cloud-notes-app/usecase"
	"github.com/josswuzhur/cloud-notes-app/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// checkRequiredEnv loads .env and fails fast on missing required variables.
func checkRequiredEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"IDENTITY_JWT_SECRET",
		"PORT",
	}

	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}
}

func setupRouter(noteHandler *handler.NoteHandler, identityCfg config.IdentityConfig, serverCfg config.ServerConfig, presence middleware.Presence) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(serverCfg.AllowedOrigin))

	router.GET("/healthz", func(c *gin.Context) {
		utils.Success(c, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	notes := router.Group("/notes")
	notes.Use(middleware.IdentityMiddleware(identityCfg, presence))
	notes.Use(middleware.RequestSizeLimiter(1 << 20))
	{
		notes.GET("", noteHandler.StreamNotes)
		notes.POST("", noteHandler.CreateNote)
		notes.PUT("/:id", noteHandler.UpdateNote)
		notes.DELETE("/:id", noteHandler.DeleteNote)
	}

	return router
}

func main() {
	checkRequiredEnv()

	serverCfg := config.LoadServerConfig()
	utils.InitLogger(os.Stderr, serverCfg.LogLevel, serverCfg.LogPretty)
	utils.InitValidator()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbCfg := config.LoadDatabaseConfig()
	mongoClient, err := utils.NewMongoClient(ctx, dbCfg.MongoOptions())
	if err != nil {
		slog.Error("mongo connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			slog.Warn("mongo disconnect failed", "error", err)
		}
	}()

	if err := repository.SetupIndexes(mongoClient.Database(dbCfg.DatabaseName)); err != nil {
		slog.Error("index setup failed", "error", err)
		os.Exit(1)
	}

	// Session presence is optional: without Redis the identity middleware
	// still verifies tokens, it just skips the presence gate and refresh.
	var presence middleware.Presence
	redisCfg := config.LoadRedisConfig()
	if redisCfg.URL != "" {
		sessionPresence, err := services.NewSessionPresence(redisCfg.URL, redisCfg.PresenceTTL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer sessionPresence.Close()
		presence = sessionPresence
	}

	notesRepo := repository.NewNotesRepo(mongoClient, dbCfg.DatabaseName)
	notesService := &usecase.NoteService{
		NotesRepo: notesRepo,
	}
	noteHandler := handler.NewNoteHandler(notesService, stream.NewStore(notesRepo))

	utils.StartSystemMetrics(ctx, 15*time.Second)

	router := setupRouter(noteHandler, config.LoadIdentityConfig(), serverCfg, presence)
	if err := runServer(router, serverCfg); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}
