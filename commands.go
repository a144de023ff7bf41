package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srad/videoanalyzer/conf"
	"github.com/srad/videoanalyzer/controllers"
	"github.com/srad/videoanalyzer/database"
	"github.com/srad/videoanalyzer/middlewares"
	"github.com/srad/videoanalyzer/network"
	"github.com/srad/videoanalyzer/services"
	"github.com/srad/videoanalyzer/workspace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "videoanalyzer",
		Short:         "Video analysis service",
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(conf.Read().LogLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(conf.Read())
		},
	}

	root.AddCommand(
		newServeCommand(),
		newAnalyzeCommand(),
		newTokenCommand(),
	)

	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the http server (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(conf.Read())
		},
	}
}

func serve(cfg *conf.Cfg) error {
	log.Infof("Version: %s, Commit: %s", Version, Commit)

	if err := workspace.Setup(cfg.UploadsPath, cfg.ProcessedPath); err != nil {
		log.Fatalf("[main] %s", err)
	}
	if err := database.Init(cfg.DbDriver, cfg.DbDSN); err != nil {
		log.Fatalf("[main] %s", err)
	}
	defer database.Close()

	services.StartUpJobs(cfg)

	archiver, err := services.NewArchiver(cfg)
	if err != nil {
		log.Errorf("[main] Archive disabled: %s", err)
		archiver = nil
	}
	jobs := services.NewJobService(cfg, services.NewAnalyzer(cfg), archiver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go network.WsListen(ctx)

	gin.SetMode(gin.ReleaseMode)
	endPoint := fmt.Sprintf("0.0.0.0:%d", cfg.Port)

	server := &http.Server{
		Addr:              endPoint,
		Handler:           controllers.Setup(cfg, jobs, Version, Commit),
		ReadHeaderTimeout: 30 * time.Second,
	}

	go func() {
		log.Infof("[main] start http server listening %s", endPoint)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalln(err)
		}
	}()

	<-ctx.Done()

	log.Infoln("cleanup ...")
	jobs.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[main] Error shutting down: %s", err)
	}
	log.Infoln("cleanup complete")

	return nil
}

func newAnalyzeCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the worker on one local video and print the outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := conf.Read()

			info, err := os.Stat(input)
			if err != nil {
				return fmt.Errorf("inspect input: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", input)
			}

			if err := workspace.EnsureDirectory(cfg.ProcessedPath); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if cfg.WorkerTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.WorkerTimeout)
				defer cancel()
			}

			output := workspace.NewNamer().OutputFilename()
			outcome := services.NewAnalyzer(cfg).Run(ctx, services.JobRequest{
				JobID:      "cli",
				InputPath:  input,
				OutputPath: filepath.Join(cfg.ProcessedPath, output),
				OutputName: output,
			}, nil)

			encoded, err := json.MarshalIndent(outcome, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

			return outcome.Err()
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Video file to analyze")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func newTokenCommand() *cobra.Command {
	var ttl time.Duration
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := middlewares.NewToken(conf.Read().Secret, subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")

	return cmd
}
