package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/andigenesis/brainrot-generator/internal/api"
	"github.com/andigenesis/brainrot-generator/internal/logs"
	"github.com/andigenesis/brainrot-generator/internal/logstream"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var filters logstream.Filters

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display daemon logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			apiClient, err := logs.NewStreamClient(cfg.Paths.APIBind)
			if err != nil {
				return fmt.Errorf("log API client: %w", err)
			}

			var legacy logstream.TailClient
			if client, dialErr := ctx.dialClient(); dialErr == nil {
				defer client.Close()
				legacy = client
			}

			out := cmd.OutOrStdout()
			printed, err := logstream.Stream(
				cmd.Context(),
				apiClient,
				legacy,
				logstream.Options{Lines: lines, Follow: follow, Filters: filters},
				func(evt api.LogEvent) { fmt.Fprintln(out, formatLogEvent(evt)) },
				func(line string) { fmt.Fprintln(out, line) },
			)
			if err != nil {
				if errors.Is(err, logstream.ErrFiltersRequireAPI) {
					return errors.New("log filters require the HTTP API; set api_bind in the configuration")
				}
				if errors.Is(err, logs.ErrAPIUnavailable) {
					return errors.New("daemon logs unavailable; verify the daemon is running")
				}
				return err
			}
			if !printed && !follow {
				fmt.Fprintln(out, "No log entries available")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	cmd.Flags().Int64Var(&filters.JobID, "job", 0, "Only show events for a job ID")
	cmd.Flags().StringVar(&filters.Component, "component", "", "Only show events from a component")
	cmd.Flags().StringVar(&filters.Lane, "lane", "", "Only show events from a workflow lane")
	cmd.Flags().StringVar(&filters.Level, "level", "", "Minimum log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&filters.RequestID, "request", "", "Only show events with a correlation ID")
	cmd.Flags().StringVar(&filters.Alert, "alert", "", "Only show events carrying an alert marker")
	cmd.Flags().StringVar(&filters.Search, "search", "", "Only show events whose message contains the text")
	return cmd
}

func formatLogEvent(evt api.LogEvent) string {
	ts := formatEventTimestamp(evt.Timestamp)
	level := strings.ToUpper(strings.TrimSpace(evt.Level))
	if level == "" {
		level = "INFO"
	}
	parts := []string{ts, level}
	if component := strings.TrimSpace(evt.Component); component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", component))
	}
	subject := composeSubject(evt.JobID, evt.Stage)
	line := strings.Join(parts, " ")
	if subject != "" {
		line += " " + subject
	}
	message := strings.TrimSpace(evt.Message)
	if message != "" {
		line += " - " + message
	}
	if len(evt.Details) == 0 {
		return line
	}
	builder := strings.Builder{}
	builder.WriteString(line)
	for _, detail := range evt.Details {
		if strings.TrimSpace(detail.Label) == "" || strings.TrimSpace(detail.Value) == "" {
			continue
		}
		builder.WriteString("\n    - ")
		builder.WriteString(detail.Label)
		builder.WriteString(": ")
		builder.WriteString(detail.Value)
	}
	return builder.String()
}

func formatEventTimestamp(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.Format("2006-01-02 15:04:05")
	}
	return value
}

func composeSubject(jobID int64, stage string) string {
	stage = strings.TrimSpace(stage)
	switch {
	case jobID > 0 && stage != "":
		return fmt.Sprintf("Job #%d (%s)", jobID, stage)
	case jobID > 0:
		return fmt.Sprintf("Job #%d", jobID)
	default:
		return stage
	}
}
