package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vapor-http-bridge/internal/config"
	"vapor-http-bridge/internal/event"
	"vapor-http-bridge/internal/middleware"
	"vapor-http-bridge/internal/runtime"
	"vapor-http-bridge/internal/store"
	"vapor-http-bridge/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// invocationRoute mirrors the platform's runtime-interface invocation URL so
// existing trigger tooling can point at the emulator unchanged.
const invocationRoute = "/2015-03-31/functions/function/invocations"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	}

	// Initialize the worker and bridge
	normalizer := event.NewNormalizer()
	normalizer.ScriptFilename = cfg.Worker.ScriptFilename

	httpWorker := worker.NewHTTPWorker(
		cfg.Worker.UpstreamURL,
		time.Duration(cfg.Worker.TimeoutSeconds)*time.Second,
		logrus.StandardLogger(),
	)
	bridge := runtime.NewBridge(httpWorker, normalizer, logrus.StandardLogger())
	if err := bridge.Boot(context.Background(), cfg.Worker.BasePath); err != nil {
		log.Fatalf("Failed to boot worker: %v", err)
	}

	// Optional invocation audit store
	var invocations *store.InvocationStore
	if cfg.Store.Enabled {
		invocations, err = store.Open(cfg.Store.Path, logrus.StandardLogger())
		if err != nil {
			log.Fatalf("Failed to open invocation store: %v", err)
		}
		defer invocations.Close()
	}

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		if bridge.CurrentWorker() == nil {
			status = "unbooted"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
		})
	})

	// Invocation endpoint: one raw trigger event in, one response out
	router.POST(invocationRoute, func(c *gin.Context) {
		var trigger event.TriggerEvent
		if err := c.ShouldBindJSON(&trigger); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trigger event"})
			return
		}

		start := time.Now()
		resp := bridge.Handle(c.Request.Context(), &trigger)
		latency := time.Since(start)

		statusCode := http.StatusInternalServerError
		if resp != nil {
			statusCode = resp.StatusCode
		}

		if invocations != nil {
			entry := &store.InvocationEntry{
				ID:         c.GetString(middleware.RequestIDKey),
				Shape:      trigger.Shape().String(),
				Method:     trigger.Method(),
				URI:        trigger.ResolvedPath(),
				StatusCode: statusCode,
				LatencyMS:  float64(latency.Nanoseconds()) / 1000000,
			}
			if err := invocations.Record(c.Request.Context(), entry); err != nil {
				logrus.WithError(err).Warn("Failed to record invocation")
			}
		}

		if resp == nil {
			c.JSON(http.StatusOK, gin.H{
				"statusCode":      http.StatusInternalServerError,
				"headers":         gin.H{"Content-Type": "application/json"},
				"body":            `{"error": "Internal server error"}`,
				"isBase64Encoded": false,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"statusCode":      resp.StatusCode,
			"headers":         resp.Headers,
			"body":            string(resp.Body),
			"isBase64Encoded": false,
		})
	})

	// Recent invocations, available when the audit store is enabled
	router.GET("/invocations", func(c *gin.Context) {
		if invocations == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Invocation store disabled"})
			return
		}
		entries, err := invocations.Recent(c.Request.Context(), 50)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list invocations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"invocations": entries})
	})

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Emulator started on port %s", cfg.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down emulator...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := bridge.Terminate(ctx); err != nil {
		log.Printf("Worker termination failed: %v", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Emulator exited")
}
