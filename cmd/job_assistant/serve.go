package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort          int
	serveConfigFile    string
	serveAllowedOrigin string
	serveModel         string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the résumé upload, job search, generation and auth endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Path to JSON config file")
	serveCmd.Flags().StringVar(&serveAllowedOrigin, "allowed-origin", "", "CORS origin of the web client")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Gemini model used for résumé generation")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveServeConfig(cmd)
	if err != nil {
		return err
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	srv, err := server.New(server.Config{
		Port:              cfg.Port,
		DatabaseURL:       databaseURL,
		APIKey:            apiKey,
		AllowedOrigin:     cfg.AllowedOrigin,
		Model:             cfg.Model,
		GenerationTimeout: cfg.Timeout(),
		IntakeWorkers:     cfg.IntakeWorkers,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// resolveServeConfig layers flags over the config file over defaults.
func resolveServeConfig(cmd *cobra.Command) (config.Config, error) {
	fileCfg := &config.Config{}
	if serveConfigFile != "" {
		loaded, err := config.LoadConfig(serveConfigFile)
		if err != nil {
			return config.Config{}, err
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		fileCfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		fileCfg.Port = servePort
	}
	if flags.Changed("allowed-origin") {
		fileCfg.AllowedOrigin = serveAllowedOrigin
	}
	if flags.Changed("model") {
		fileCfg.Model = serveModel
	}
	if v := os.Getenv("INTAKE_WORKERS"); v != "" && fileCfg.IntakeWorkers == 0 {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return config.Config{}, fmt.Errorf("INTAKE_WORKERS must be a non-negative integer: %s", v)
		}
		fileCfg.IntakeWorkers = n
	}

	merged := fileCfg.MergeWithDefaults(config.Defaults())
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}
