// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/LilVoxy/water_quality/ETL/models"
	"github.com/LilVoxy/water_quality/artifacts"
	"github.com/LilVoxy/water_quality/config"
	"github.com/LilVoxy/water_quality/database"
	"github.com/LilVoxy/water_quality/routes"
	"github.com/LilVoxy/water_quality/service"
	"github.com/LilVoxy/water_quality/telemetry"
	"github.com/LilVoxy/water_quality/websocket"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "water-quality",
		Short:        "Serves water-quality predictions from the trained model",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			serve(cfg)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cfg *config.Config) {
	log.Println("Starting water quality service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Artifacts first: without a model there is nothing to serve.
	files := artifacts.NewFileStore(cfg.Artifacts.Dir, cfg.Artifacts.ModelFile, cfg.Artifacts.EncoderFile)
	handle, err := service.LoadOnce(files)
	if err != nil {
		log.Fatalf("❌ Failed to load model artifacts from %s: %v", cfg.Artifacts.Dir, err)
	}
	if info, ok := handle.Info(); ok {
		log.Printf("✅ Model loaded: run %s, trained %s, accuracy %.4f",
			info.RunID, info.TrainedAt.Format(time.RFC3339), info.Accuracy)
	}

	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("❌ Failed to open the readings database: %v", err)
	}

	runRepo := models.NewSQLTrainingRunRepository(store.DB(), store.Driver())
	if err := runRepo.CreateTrainingRunsTable(); err != nil {
		log.Fatalf("❌ Failed to prepare the training run log: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	api := routes.NewAPI(handle, store, runRepo, hub, telemetry.NewTelemetry(), routes.Options{
		RecentLimit:       cfg.Server.RecentLimit,
		RecentReadingsTTL: cfg.Server.RecentReadingsTTL,
	})
	router := mux.NewRouter()
	routes.SetupRoutes(router, api)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("✅ Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("⚠️ Shutdown signal received, closing connections...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Error shutting down HTTP server: %v", err)
	}
	cancel()

	if err := store.Close(); err != nil {
		log.Printf("❌ Error closing database connection: %v", err)
	} else {
		log.Println("✅ Database connection closed")
	}

	log.Println("👋 Server stopped")
}
