package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/signaldrift/signaldrift/internal/client/gateway"
	promptdomain "github.com/signaldrift/signaldrift/internal/domain/prompts"
)

var promptsCommand = &cobra.Command{
	Use:   "prompts",
	Short: "Manage saved analysis prompts",
}

var promptsListCommand = &cobra.Command{
	Use:   "list",
	Short: "List saved prompts",
	RunE:  runPromptsList,
}

var promptsAddCommand = &cobra.Command{
	Use:   "add <text>",
	Short: "Save a new prompt",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsAdd,
}

func init() {
	promptsCommand.AddCommand(promptsListCommand)
	promptsCommand.AddCommand(promptsAddCommand)
	rootCmd.AddCommand(promptsCommand)
}

// truncate keeps one-line prompt previews readable in the table.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func runPromptsList(cmd *cobra.Command, _ []string) error {
	res := gateway.FetchJSON[promptdomain.PromptList](context.Background(), newGateway(), "/api/v1/prompts")
	if !res.OK {
		return errors.New(res.Err)
	}

	if len(res.Data.Prompts) == 0 {
		fmt.Println("No saved prompts.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTEXT")
	for _, p := range res.Data.Prompts {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			p.ID,
			p.CreatedAt.Format("2006-01-02 15:04"),
			truncate(p.Text, 60),
		)
	}
	return w.Flush()
}

func runPromptsAdd(cmd *cobra.Command, args []string) error {
	res := gateway.PostJSON[promptdomain.Prompt](context.Background(), newGateway(),
		"/api/v1/prompts", map[string]string{"text": args[0]})
	if !res.OK {
		return errors.New(res.Err)
	}

	fmt.Printf("Saved prompt %s\n", res.Data.ID)
	return nil
}
