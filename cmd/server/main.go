package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"product-tour-builder/auth"
	"product-tour-builder/internal/analytics"
	"product-tour-builder/internal/config"
	"product-tour-builder/internal/content"
	"product-tour-builder/internal/db"
	"product-tour-builder/internal/domain"
	"product-tour-builder/internal/editor"
	"product-tour-builder/internal/middleware"
	"product-tour-builder/internal/playback"
	"product-tour-builder/internal/revision"
	"product-tour-builder/internal/tour"
	"product-tour-builder/internal/uploads"
	"product-tour-builder/internal/worker"
	"product-tour-builder/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// editorLoader glues the tour and content services into the single
// view the editor needs when a session opens.
type editorLoader struct {
	tours   tour.Service
	content content.Service
}

func (l *editorLoader) GetTour(ctx context.Context, id uint64) (*domain.Tour, error) {
	return l.tours.GetTour(ctx, id)
}

func (l *editorLoader) ListScreens(ctx context.Context, tourID uint64) ([]domain.Screen, error) {
	return l.content.ListScreens(ctx, tourID)
}

func (l *editorLoader) ListSteps(ctx context.Context, tourID uint64) ([]domain.Step, error) {
	return l.content.ListSteps(ctx, tourID)
}

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Initialize Redis
	redis.InitRedis()
	cache := redis.NewCache(redis.RedisClient)

	// Initialize repositories
	tourRepo := tour.NewRepository(db.AppDb)
	contentRepo := content.NewRepository(db.AppDb)
	revisionRepo := revision.NewRepository(db.AppDb)

	// Initialize services
	tourService := tour.NewService(tourRepo, cache)
	contentService := content.NewService(contentRepo, tourService)
	revisionService := revision.NewService(
		revisionRepo,
		contentService,
		tourService,
		cache,
		config.AppConfig.PublicBaseURL,
	)
	uploadClient := uploads.NewClient(config.AppConfig.UploadServiceAddress)

	// Editor sessions
	editorManager := editor.NewManager(
		&editorLoader{tours: tourService, content: contentService},
		contentService,
		config.AppConfig.EditorDebounce,
	)

	// Analytics pipeline
	pool := worker.NewPool(config.AppConfig.AnalyticsWorkers)
	dispatcher := analytics.NewDispatcher(pool, analytics.NewClient(config.AppConfig.AnalyticsSinkAddress))

	// Initialize handlers
	tourHandler := tour.NewHandler(tourService)
	contentHandler := content.NewHandler(contentService, uploadClient)
	revisionHandler := revision.NewHandler(revisionService, editorManager)
	editorHandler := editor.NewHandler(editorManager)
	sessionRegistry := playback.NewRegistry()
	playbackHandler := playback.NewHandler(tourService, revisionService, dispatcher, sessionRegistry)
	analyticsHandler := analytics.NewHandler(dispatcher)

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Tour-Password"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Public playback and embed routes are hit from anywhere; the
		// editor API is origin-restricted at the proxy.
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Tour routes
	router.POST("/tours", auth.AuthMiddleWare(), tourHandler.Create)
	router.GET("/tours", auth.AuthMiddleWare(), tourHandler.List)
	router.GET("/tours/:id", auth.AuthMiddleWare(), tourHandler.Show)
	router.PATCH("/tours/:id", auth.AuthMiddleWare(), tourHandler.Update)
	router.DELETE("/tours/:id", auth.AuthMiddleWare(), tourHandler.Delete)

	// Screen routes
	router.POST("/tours/:id/screens", auth.AuthMiddleWare(), contentHandler.CreateScreen)
	router.GET("/tours/:id/screens", auth.AuthMiddleWare(), contentHandler.ListScreens)
	router.PUT("/tours/:id/screens/order", auth.AuthMiddleWare(), contentHandler.ReorderScreens)
	router.PATCH("/screens/:id", auth.AuthMiddleWare(), contentHandler.UpdateScreen)
	router.DELETE("/screens/:id", auth.AuthMiddleWare(), contentHandler.DeleteScreen)

	// Hotspot routes
	router.POST("/screens/:id/hotspots", auth.AuthMiddleWare(), contentHandler.CreateHotspot)
	router.PUT("/screens/:id/hotspots/order", auth.AuthMiddleWare(), contentHandler.ReorderHotspots)
	router.PATCH("/hotspots/:id", auth.AuthMiddleWare(), contentHandler.UpdateHotspot)
	router.DELETE("/hotspots/:id", auth.AuthMiddleWare(), contentHandler.DeleteHotspot)

	// Step routes
	router.POST("/tours/:id/steps", auth.AuthMiddleWare(), contentHandler.CreateStep)
	router.GET("/tours/:id/steps", auth.AuthMiddleWare(), contentHandler.ListSteps)
	router.PUT("/tours/:id/steps/order", auth.AuthMiddleWare(), contentHandler.ReorderSteps)
	router.PATCH("/steps/:id", auth.AuthMiddleWare(), contentHandler.UpdateStep)
	router.DELETE("/steps/:id", auth.AuthMiddleWare(), contentHandler.DeleteStep)

	// Editor session routes
	router.POST("/tours/:id/editor", auth.AuthMiddleWare(), editorHandler.Open)
	router.GET("/tours/:id/editor", auth.AuthMiddleWare(), editorHandler.State)
	router.POST("/tours/:id/editor/mutations", auth.AuthMiddleWare(), editorHandler.Mutate)
	router.POST("/tours/:id/editor/gestures", auth.AuthMiddleWare(), editorHandler.Gesture)
	router.POST("/tours/:id/editor/flush", auth.AuthMiddleWare(), editorHandler.Flush)

	// Publish pipeline routes
	router.POST("/tours/:id/publish", auth.AuthMiddleWare(), revisionHandler.Publish)
	router.DELETE("/tours/:id/publish", auth.AuthMiddleWare(), revisionHandler.Unpublish)
	router.GET("/tours/:id/revisions", auth.AuthMiddleWare(), revisionHandler.List)
	router.POST("/tours/:id/revisions/:rev/restore", auth.AuthMiddleWare(), revisionHandler.Restore)
	router.GET("/tours/:id/preview", auth.AuthMiddleWare(), revisionHandler.Preview)

	// internal use routes
	router.GET("/internal/tours/:id/revisions", auth.InternalAuthMiddleware(config.AppConfig.InternalSecret), revisionHandler.List)

	// Public playback routes, keyed by the unguessable public id
	router.GET("/d/:publicId", playbackHandler.View)
	router.GET("/embed/:publicId", playbackHandler.Embed)
	router.POST("/d/:publicId/sessions", playbackHandler.StartSession)
	router.POST("/d/:publicId/sessions/:sessionId/input", playbackHandler.Input)
	router.DELETE("/d/:publicId/sessions/:sessionId", playbackHandler.EndSession)
	router.POST("/events", analyticsHandler.Collect)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	// Flush pending editor writes and drain the analytics queue before
	// the process exits.
	editorManager.Shutdown()
	pool.Shutdown()
	sessionRegistry.Close()

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
