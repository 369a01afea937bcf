// Document subcommands: upload, get, list, search, versions, download, delete.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docvault/internal/model"
	"docvault/internal/service"
)

var (
	uploadFile  string
	uploadTitle string
	uploadType  string
	uploadMeta  string

	listLimit  int
	listOffset int

	searchFilename string
	searchTitle    string
	searchMeta     string

	downloadOut string
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents",
}

func init() {
	documentUploadCmd.Flags().StringVar(&uploadFile, "file", "", "path of the file to upload (required)")
	documentUploadCmd.Flags().StringVar(&uploadTitle, "title", "", "document title (default: file name)")
	documentUploadCmd.Flags().StringVar(&uploadType, "type", "", "document type ID")
	documentUploadCmd.Flags().StringVar(&uploadMeta, "meta", "", "metadata values as a JSON object")
	_ = documentUploadCmd.MarkFlagRequired("file")

	documentListCmd.Flags().IntVar(&listLimit, "limit", 10, "maximum number of documents")
	documentListCmd.Flags().IntVar(&listOffset, "offset", 0, "number of documents to skip")

	documentSearchCmd.Flags().StringVar(&searchFilename, "filename", "", "filename substring")
	documentSearchCmd.Flags().StringVar(&searchTitle, "title", "", "title substring")
	documentSearchCmd.Flags().StringVar(&searchMeta, "meta", "", "exact metadata values as a JSON object")
	documentSearchCmd.Flags().IntVar(&listLimit, "limit", 10, "maximum number of documents")
	documentSearchCmd.Flags().IntVar(&listOffset, "offset", 0, "number of documents to skip")

	documentDownloadCmd.Flags().StringVar(&downloadOut, "out", "", "output path (default: original file name)")

	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentSearchCmd)
	documentCmd.AddCommand(documentVersionsCmd)
	documentCmd.AddCommand(documentDownloadCmd)
	documentCmd.AddCommand(documentDeleteCmd)
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a document with file content",
	Long: `Upload stores a file in the configured storage backend and creates the
document record. Metadata is validated against the document type before
anything is written.

Example:
  docctl document upload --file report.pdf --title "Q3 Report"
  docctl document upload --file report.pdf --type <type-id> --meta '{"department":"finance"}'`,
	RunE: runDocumentUpload,
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	f, err := os.Open(uploadFile)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	var meta map[string]any
	if uploadMeta != "" {
		if err := json.Unmarshal([]byte(uploadMeta), &meta); err != nil {
			return fmt.Errorf("parse --meta: %w", err)
		}
	}

	title := uploadTitle
	if title == "" {
		title = filepath.Base(uploadFile)
	}

	doc, err := docSvc.Upload(cmd.Context(), f, service.UploadInput{
		Filename:       filepath.Base(uploadFile),
		Size:           info.Size(),
		Title:          title,
		DocumentTypeID: uploadType,
		Metadata:       meta,
	})
	if err != nil {
		return fmt.Errorf("upload document: %w", err)
	}

	if jsonOutput {
		return printJSON(doc)
	}
	fmt.Printf("Created document: %s\n", doc.ID)
	return nil
}

var documentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a document by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := docSvc.Get(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get document: %w", err)
		}
		if jsonOutput {
			return printJSON(doc)
		}
		printDocument(doc)
		return nil
	},
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in creation order",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := docSvc.List(cmd.Context(), listLimit, listOffset)
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		return printDocumentList(res)
	},
}

var documentSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search documents by filename, title, and metadata",
	Long: `Search filters documents by case-insensitive filename or title substring
and by exact metadata values.

Example:
  docctl document search --filename report
  docctl document search --meta '{"department":"finance"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var meta map[string]any
		if searchMeta != "" {
			if err := json.Unmarshal([]byte(searchMeta), &meta); err != nil {
				return fmt.Errorf("parse --meta: %w", err)
			}
		}
		res, err := docSvc.Search(cmd.Context(), service.SearchInput{
			Filename: searchFilename,
			Title:    searchTitle,
			Metadata: meta,
			Limit:    listLimit,
			Offset:   listOffset,
		})
		if err != nil {
			return fmt.Errorf("search documents: %w", err)
		}
		return printDocumentList(res)
	},
}

var documentVersionsCmd = &cobra.Command{
	Use:   "versions <id>",
	Short: "List a document's version history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		versions, err := docSvc.GetVersions(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("list versions: %w", err)
		}
		if jsonOutput {
			return printJSON(versions)
		}
		for _, v := range versions {
			fmt.Printf("v%d\t%s\t%s\n", v.VersionNumber, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Title)
		}
		return nil
	},
}

var documentDownloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a document's file content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, doc, err := docSvc.Download(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("download document: %w", err)
		}
		defer rc.Close()

		out := downloadOut
		if out == "" {
			out = doc.FileName
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()

		if _, err := io.Copy(f, rc); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}
		fmt.Printf("Downloaded %s to %s\n", doc.ID, out)
		return nil
	},
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document, its stored files, and its version history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := docSvc.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		fmt.Printf("Deleted document: %s\n", args[0])
		return nil
	},
}

func printDocument(doc *model.Document) {
	fmt.Printf("ID:        %s\n", doc.ID)
	fmt.Printf("Title:     %s\n", doc.Title)
	if doc.HasFile() {
		fmt.Printf("File:      %s (%d bytes)\n", doc.FileName, doc.FileSize)
	}
	if doc.DocumentTypeID != "" {
		fmt.Printf("Type:      %s\n", doc.DocumentTypeID)
	}
	fmt.Printf("Created:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Updated:   %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printDocumentList(res *service.DocumentListResult) error {
	if jsonOutput {
		return printJSON(res)
	}
	for _, d := range res.Items {
		name := d.FileName
		if name == "" {
			name = "-"
		}
		fmt.Printf("%s\t%s\t%s\n", d.ID, name, d.Title)
	}
	fmt.Printf("Total: %d\n", res.Total)
	return nil
}

func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
