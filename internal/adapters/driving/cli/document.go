package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/connectors/filesystem"
	"github.com/custodia-labs/recall/internal/core/domain"
)

var (
	addText       string
	addTitle      string
	addCollection string
	addMetadata   map[string]string

	similarLimit int
	similarJSON  bool
)

var addCmd = &cobra.Command{
	Use:   "add [file...]",
	Short: "Add documents",
	Long: `Chunks, embeds and stores documents.

Content comes from --text, from the given files, or from stdin when neither
is provided. Each document's id is printed; adding the same content twice
stores it twice.`,
	RunE: runAdd,
}

var similarCmd = &cobra.Command{
	Use:   "similar [doc-id]",
	Short: "List documents similar to a stored document",
	Long: `Compares the mean embedding of a document's chunks with that of every
other stored document, across all collections.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	addCmd.Flags().StringVarP(&addText, "text", "t", "", "document text")
	addCmd.Flags().StringVar(&addTitle, "title", "", "document title (text and stdin input)")
	addCmd.Flags().StringVarP(&addCollection, "collection", "c", "", "target collection")
	addCmd.Flags().StringToStringVarP(&addMetadata, "meta", "m", nil, "metadata key=value stored with each chunk")

	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", domain.DefaultSimilarLimit, "maximum number of documents")
	similarCmd.Flags().BoolVar(&similarJSON, "json", false, "output results as JSON")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(similarCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if err := requireService(ingestService != nil, "ingest"); err != nil {
		return err
	}

	if addText != "" || len(args) == 0 {
		content := addText
		if content == "" {
			data, err := io.ReadAll(stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			content = string(data)
		}
		return addOne(cmd, textDocument(content), "")
	}

	if err := requireService(normaliserService != nil, "normaliser"); err != nil {
		return err
	}

	reader := filesystem.New("")
	for _, path := range args {
		raw, err := reader.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range addMetadata {
			raw.Metadata[k] = v
		}
		doc, err := normaliserService.Normalise(cmd.Context(), &raw)
		if err != nil {
			return fmt.Errorf("normalise %s: %w", path, err)
		}
		if err := addOne(cmd, doc, path); err != nil {
			return err
		}
	}
	return nil
}

// textDocument builds raw text unless a title or metadata makes it structured.
func textDocument(content string) domain.Document {
	if addTitle == "" && len(addMetadata) == 0 {
		return domain.RawText(content)
	}

	var metadata map[string]any
	if len(addMetadata) > 0 {
		metadata = make(map[string]any, len(addMetadata))
		for k, v := range addMetadata {
			metadata[k] = v
		}
	}
	return domain.StructuredDocument{Content: content, Title: addTitle, Metadata: metadata}
}

func addOne(cmd *cobra.Command, doc domain.Document, label string) error {
	docID := domain.DocumentID(doc)

	added, err := ingestService.AddDocument(cmd.Context(), doc, addCollection)
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	status := "added"
	if !added {
		status = "deferred"
	}
	if label != "" {
		cmd.Printf("%-8s %s  %s\n", status, docID, label)
	} else {
		cmd.Printf("%-8s %s\n", status, docID)
	}
	return nil
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if err := requireService(searchService != nil, "search"); err != nil {
		return err
	}

	docs, err := searchService.SimilarDocuments(cmd.Context(), args[0], similarLimit)
	if err != nil {
		return fmt.Errorf("similar documents: %w", err)
	}

	if similarJSON {
		return outputJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No similar documents found.")
		return nil
	}
	for i, d := range docs {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, d.DocID, d.Similarity)
	}
	return nil
}
