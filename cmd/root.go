// Package cmd wires the CLI entrypoints.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "interview-pipeline",
	Short: "Mock interview capture and evaluation service",
	Long: `interview-pipeline runs the mock-interview backend: live facial-emotion
capture, LLM-driven interview sessions, and the scoring pipeline that fuses
judge scores with facial affect.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadDotEnv()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv pulls local overrides first, then defaults. Missing files are
// fine; unreadable ones are worth a warning but never fatal.
func loadDotEnv() {
	for _, p := range []string{".env.local", ".env"} {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logrus.WithError(err).Warnf("failed to load %s", p)
		}
	}
}

func initLogging(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
