package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"

	"github.com/LilVoxy/water_quality/ETL/models"
	"github.com/LilVoxy/water_quality/ETL/training"
	"github.com/LilVoxy/water_quality/ETL/utils"
	"github.com/LilVoxy/water_quality/artifacts"
	"github.com/LilVoxy/water_quality/config"
	"github.com/LilVoxy/water_quality/database"
)

// TrainingRunner owns the connections and components of the training job
type TrainingRunner struct {
	config    *config.Config
	store     *database.Store
	logger    *utils.ETLLogger
	processor *training.TrainingProcessor
}

// NewTrainingRunner wires the training job from cfg
func NewTrainingRunner(ctx context.Context, cfg *config.Config) (*TrainingRunner, error) {
	logger, err := utils.NewETLLogger(cfg.Training.LogDir, cfg.Training.Verbose)
	if err != nil {
		return nil, err
	}
	logger.Info("Initialising training runner")

	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("error connecting to the readings database: %w", err)
	}

	runRepo := models.NewSQLTrainingRunRepository(store.DB(), store.Driver())
	if err := runRepo.CreateTrainingRunsTable(); err != nil {
		store.Close()
		logger.Close()
		return nil, fmt.Errorf("error creating the training run log: %w", err)
	}

	files := artifacts.NewFileStore(cfg.Artifacts.Dir, cfg.Artifacts.ModelFile, cfg.Artifacts.EncoderFile)
	processor := training.NewTrainingProcessor(store, files, runRepo, logger, training.ProcessorConfig{
		Trainer: training.Config{
			Hyperparameters: cfg.Training.Hyperparameters,
			TestRatio:       cfg.Training.TestRatio,
		},
		MinAccuracyWarning:  cfg.Training.MinAccuracyWarning,
		RunLogRetentionDays: cfg.Training.RunLogRetentionDays,
	})

	return &TrainingRunner{
		config:    cfg,
		store:     store,
		logger:    logger,
		processor: processor,
	}, nil
}

// Close releases the database and the log file
func (r *TrainingRunner) Close() {
	r.logger.Info("Shutting down training runner")
	config.CloseDatabase(r.store.DB())
	r.logger.Close()
}

// ExecuteTraining runs one training job
func (r *TrainingRunner) ExecuteTraining(ctx context.Context) error {
	if n, err := r.store.CountReadings(ctx); err == nil {
		r.logger.Info("%d readings available for training", n)
	}
	runID, err := r.processor.Process(ctx)
	if err != nil {
		return fmt.Errorf("training run %s failed: %w", runID, err)
	}
	r.logger.Info("Artifacts for run %s written to %s", runID, r.config.Artifacts.Dir)
	return nil
}

// StartScheduler retrains every training.run_interval until ctx is done
func (r *TrainingRunner) StartScheduler(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.SingletonModeAll()

	r.logger.Info("Starting training scheduler with interval %v", r.config.Training.RunInterval)

	_, err := scheduler.Every(r.config.Training.RunInterval).Do(func() {
		r.logger.Info("Scheduled training run")
		if err := r.ExecuteTraining(ctx); err != nil {
			r.logger.Error("Scheduled training run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("error configuring scheduler: %w", err)
	}

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	r.logger.Info("Training scheduler stopped")
	return nil
}

func runOnce(cfg *config.Config) error {
	ctx := context.Background()
	runner, err := NewTrainingRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.ExecuteTraining(ctx)
}

func runScheduled(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCh
		log.Println("Shutdown signal received, stopping training runner...")
		cancel()
	}()

	runner, err := NewTrainingRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.StartScheduler(ctx)
}

func newRootCmd() *cobra.Command {
	var configPath string

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	onceCmd := &cobra.Command{
		Use:   "once",
		Short: "Train once and write the model and encoder artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runOnce(cfg)
		},
	}

	scheduledCmd := &cobra.Command{
		Use:   "scheduled",
		Short: "Retrain on training.run_interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runScheduled(cfg)
		},
	}

	rootCmd := &cobra.Command{
		Use:          "trainer",
		Short:        "Water quality model training job",
		SilenceUsage: true,
		RunE:         onceCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the YAML config (default: $WQ_CONFIG or configs/water_quality.yaml)")
	rootCmd.AddCommand(onceCmd, scheduledCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
	log.Println("Training runner finished")
}
