// Command docbot runs index maintenance and local questions against the
// document collections without the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fdv-chatbot-platform/internal/app"
	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:           "docbot",
		Short:         "Document assistant maintenance and chat",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(rebuildCMD(), askCMD(), chatCMD(), hashPasswordCMD())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// loadCore reads the environment and assembles the shared components.
// Logs go to stderr so stdout stays clean for answers.
func loadCore() (*app.Core, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger.InitLoggerTo(os.Stderr, cfg)
	return app.NewCore(cfg, nil)
}
