package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signaldrift/signaldrift/internal/client/format"
	"github.com/signaldrift/signaldrift/internal/client/prompts"
	clientruns "github.com/signaldrift/signaldrift/internal/client/runs"
)

var runsCommand = &cobra.Command{
	Use:   "runs <document-filename>",
	Short: "Show run history for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsList,
}

func init() {
	rootCmd.AddCommand(runsCommand)
}

func runRunsList(cmd *cobra.Command, args []string) error {
	gw := newGateway()
	orch := clientruns.NewOrchestrator(gw, prompts.NewManager(gw), args[0])
	orch.LoadHistory(context.Background())

	history := orch.History()
	if len(history) == 0 {
		fmt.Println("No runs for this document.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tMODEL\tDURATION\tCREATED\tPROMPT")
	for _, r := range history {
		duration := "-"
		if r.DurationMS != nil {
			duration = format.FormatDuration(*r.DurationMS)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.Status,
			r.Model,
			duration,
			r.CreatedAt.Format("2006-01-02 15:04"),
			truncate(r.PromptText, 40),
		)
	}
	return w.Flush()
}
