package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sdh-lab/interview-pipeline/agent"
	"github.com/sdh-lab/interview-pipeline/capture"
	"github.com/sdh-lab/interview-pipeline/clients"
	"github.com/sdh-lab/interview-pipeline/config"
	"github.com/sdh-lab/interview-pipeline/evaluation"
	"github.com/sdh-lab/interview-pipeline/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogging(cfg.Pipeline.LogLvl)
	log := logrus.WithField("component", "serve")

	scoring, err := config.LoadScoring(cfg.Paths.Weights)
	if err != nil {
		return fmt.Errorf("load scoring weights: %w", err)
	}

	llm, judge, judgeNote := buildLLM(cfg, scoring)

	sidecars := clients.NewHTTPWithTimeout(10 * time.Second)
	cam := clients.NewCamera(sidecars, cfg.Capture.CameraURL)
	vision := clients.NewVision(sidecars, cfg.Capture.VisionURL)

	mgr := capture.NewManager(capture.Options{
		Source:     cam,
		Detector:   vision,
		Classifier: vision,
		FPS:        cfg.Capture.FPS,
		Interval:   config.DurSeconds(cfg.Capture.LogIntervalSec),
		ExportsDir: cfg.Paths.Exports,
	})

	interviewer := agent.NewInterviewer(llm, cfg.Paths.Exports)
	eval := evaluation.NewService(evaluation.Config{
		BaseDir:     cfg.Paths.Exports,
		OutputsDir:  cfg.Paths.Outputs,
		Judge:       judge,
		JudgeNote:   judgeNote,
		Weights:     scoring.Emotion,
		Sufficiency: scoring.Sufficiency,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.New(mgr, interviewer, eval, cfg.Paths.Exports).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
