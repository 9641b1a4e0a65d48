package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mikeboe/research-stream/pkg/config"
	"github.com/mikeboe/research-stream/pkg/server"
	"github.com/spf13/cobra"
)

var (
	topic      string
	outputPath string
	raw        bool
)

func main() {
	// Setup structured logging
	handler := server.NewRunLogHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(slog.New(handler))

	// It's okay if .env doesn't exist, as long as env vars are set
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "research-helper",
		Short: "Research a topic from the terminal",
		Long:  `research-helper searches the web for a topic and streams the progress and the final Markdown briefing to the terminal.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("topic") {
				// Interactive Mode
				fmt.Fprint(os.Stderr, "Enter research topic: ")
				input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
				topic = strings.TrimSpace(input)
			}
			if topic == "" {
				return fmt.Errorf("topic cannot be empty")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, config.Load())
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&topic, "topic", "t", "", "The research topic")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the final report to this file")
	rootCmd.Flags().BoolVar(&raw, "raw", false, "Print the raw event stream instead of formatted output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pipeline, caps, err := server.BuildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	svc := server.NewService(pipeline, caps, cfg.StreamPacing)

	var report string
	for ev := range svc.Stream(ctx, topic) {
		if raw {
			if err := server.WriteEvent(os.Stdout, ev); err != nil {
				return err
			}
		} else {
			switch ev.Type {
			case server.EventLog:
				fmt.Fprintln(os.Stderr, ev.Content)
			case server.EventReport:
				fmt.Fprintln(os.Stdout, ev.Content)
			}
		}
		if ev.Type == server.EventReport {
			report = ev.Content
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if outputPath != "" && report != "" {
		if err := os.WriteFile(outputPath, []byte(report), 0644); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report saved to %s\n", outputPath)
	}
	return nil
}
