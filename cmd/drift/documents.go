package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	clientdocs "github.com/signaldrift/signaldrift/internal/client/documents"
	"github.com/signaldrift/signaldrift/internal/client/format"
)

var documentsCommand = &cobra.Command{
	Use:   "documents",
	Short: "Manage uploaded documents",
}

var documentsListCommand = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	RunE:  runDocumentsList,
}

var documentsUploadCommand = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsUpload,
}

var documentsDeleteCommand = &cobra.Command{
	Use:   "delete <filename>",
	Short: "Delete a document by stored filename",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

func init() {
	documentsCommand.AddCommand(documentsListCommand)
	documentsCommand.AddCommand(documentsUploadCommand)
	documentsCommand.AddCommand(documentsDeleteCommand)
	rootCmd.AddCommand(documentsCommand)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	store := clientdocs.NewStore(newGateway())
	store.Load(context.Background())

	files := store.Files()
	if len(files) == 0 {
		fmt.Println("No documents uploaded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tSIZE\tUPLOADED\tSTORED AS")
	for _, f := range files {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			format.DisplayName(f.Filename),
			format.Extension(f.Filename),
			format.FormatSize(f.Size),
			f.UploadedAt.Format("2006-01-02 15:04"),
			f.Filename,
		)
	}
	return w.Flush()
}

func runDocumentsUpload(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	store := clientdocs.NewStore(newGateway())
	store.Upload(context.Background(), filepath.Base(args[0]), content)
	if msg := store.Err(); msg != "" {
		return errors.New(msg)
	}

	fmt.Printf("Uploaded %s\n", filepath.Base(args[0]))
	return nil
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	store := clientdocs.NewStore(newGateway())
	store.Delete(context.Background(), args[0])
	if msg := store.Err(); msg != "" {
		return errors.New(msg)
	}

	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
