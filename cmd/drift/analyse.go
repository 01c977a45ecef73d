package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signaldrift/signaldrift/internal/client/format"
	"github.com/signaldrift/signaldrift/internal/client/prompts"
	clientruns "github.com/signaldrift/signaldrift/internal/client/runs"
	promptdomain "github.com/signaldrift/signaldrift/internal/domain/prompts"
	rundomain "github.com/signaldrift/signaldrift/internal/domain/runs"
)

var analyseCommand = &cobra.Command{
	Use:   "analyse <document-filename>",
	Short: "Run an analysis prompt against a document",
	Long: `Runs an analysis against an uploaded document and prints the result.

With --prompt the stored prompt with that id is used. With --text the
given text is used, creating a new prompt when it differs from the
selected prompt's stored text. With neither, the first saved prompt runs.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyse,
}

var (
	analysePromptID string
	analyseText     string
)

func init() {
	analyseCommand.Flags().StringVarP(&analysePromptID, "prompt", "p", "", "Saved prompt id to run")
	analyseCommand.Flags().StringVarP(&analyseText, "text", "t", "", "Prompt text to run (deduplicated against the selected prompt)")
	rootCmd.AddCommand(analyseCommand)
}

func runAnalyse(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	gw := newGateway()

	pm := prompts.NewManager(gw)
	pm.Load(ctx)
	if analysePromptID != "" {
		if !pm.Contains(promptdomain.ID(analysePromptID)) {
			return fmt.Errorf("prompt %s not found", analysePromptID)
		}
		pm.Select(promptdomain.ID(analysePromptID))
	}
	if analyseText != "" {
		pm.SetText(analyseText)
	}

	orch := clientruns.NewOrchestrator(gw, pm, args[0])
	orch.Execute(ctx)
	if msg := orch.Err(); msg != "" {
		return errors.New(msg)
	}

	run := orch.Active()
	if run == nil {
		return errors.New("no run returned")
	}
	printRun(run)
	return nil
}

func printRun(run *rundomain.Run) {
	fmt.Printf("Run %s  status=%s  model=%s", run.ID, run.Status, run.Model)
	if run.DurationMS != nil {
		fmt.Printf("  duration=%s", format.FormatDuration(*run.DurationMS))
	}
	fmt.Println()

	switch {
	case run.Status == rundomain.StatusError && run.ErrorMessage != nil:
		fmt.Printf("Error: %s\n", *run.ErrorMessage)
	case run.Status == rundomain.StatusComplete && run.Output != nil:
		fmt.Println(format.PrettyJSON(*run.Output))
	}
}
