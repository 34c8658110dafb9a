package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andigenesis/brainrot-generator/internal/ipc"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var title string
	var voice string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Queue a narration for video generation",
		Long: "Queue a narration text for processing. The text can be passed as an argument\n" +
			"or read from a file with --file. When no title is given one is derived from\n" +
			"the first sentence of the narration.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := resolveNarrationText(args, fromFile)
			if err != nil {
				return err
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Generate(title, text, voice)
				if err != nil {
					return err
				}
				if resp == nil {
					return errors.New("empty response from daemon")
				}
				job := resp.Job
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job #%d (%s)\n", job.ID, job.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Video title (derived from the narration when empty)")
	cmd.Flags().StringVar(&voice, "voice", "", "Narration voice override")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "Read narration text from a file ('-' for stdin)")
	return cmd
}

func resolveNarrationText(args []string, fromFile string) (string, error) {
	fromFile = strings.TrimSpace(fromFile)
	if fromFile != "" {
		if len(args) > 0 {
			return "", errors.New("specify either a text argument or --file, not both")
		}
		var data []byte
		var err error
		if fromFile == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(fromFile)
		}
		if err != nil {
			return "", fmt.Errorf("read narration text: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", errors.New("narration file is empty")
		}
		return text, nil
	}

	if len(args) == 0 {
		return "", errors.New("narration text is required (pass it as an argument or use --file)")
	}
	text := strings.TrimSpace(args[0])
	if text == "" {
		return "", errors.New("narration text is empty")
	}
	return text, nil
}
