package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solardash/internal/api"
	"solardash/internal/config"
	"solardash/internal/container"
	"solardash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// janitorInterval is how often idle sessions are swept
const janitorInterval = time.Minute

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	// The catalog is optional; the dashboard runs without it
	if err := appContainer.InitWithDatabase(ctx); err != nil {
		appContainer.Logger.Warn("[Main] Dataset catalog unavailable: %v", err)
	}
	if err := appContainer.InitServices(ctx); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	apiHandler := api.NewHandler(appContainer.Sessions, appContainer.Dashboard, appContainer.Datasets, appConfig.Session.CookieName)
	server, err := ui.NewServer(ui.Config{
		CookieName:     appConfig.Session.CookieName,
		MaxUploadBytes: appConfig.Data.MaxUploadBytes,
	}, appContainer.Sessions, appContainer.Dashboard, appContainer.Datasets, apiHandler.Router())
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: appConfig.Server.ReadTimeout,
		ReadTimeout:       appConfig.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("🚀 Starting Solar Insights Dashboard on port %s", appConfig.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return appContainer.Sessions.Run(gctx, janitorInterval)
	})

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		profiler := &http.Server{Addr: ":" + appConfig.Profiling.Port, Handler: http.DefaultServeMux}
		g.Go(func() error {
			log.Printf("🚀 Performance profiling server starting on :%s", appConfig.Profiling.Port)
			log.Printf("💡 View profiles: go tool pprof -http=:8081 http://localhost:%s/debug/pprof/profile?seconds=30", appConfig.Profiling.Port)
			if err := profiler.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return profiler.Close()
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		log.Printf("Shutting down, waiting up to %s for open requests", appConfig.Server.ShutdownTimeout)
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("Server stopped with error: %v", err)
		os.Exit(1)
	}
	log.Println("Server stopped")
}
