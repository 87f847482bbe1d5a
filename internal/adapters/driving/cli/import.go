package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/connectors/filesystem"
)

var (
	importCollection string
	importVerbose    bool
	watchInitial     bool
	watchDebounce    time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import [dir]",
	Short: "Add every supported file in a directory",
	Long: `Walks the directory recursively and adds each text or Markdown file.
Hidden files and directories are skipped, as are files no normaliser handles.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Add files as they are created or changed",
	Long: `Watches the directory recursively and adds files when they are created
or written. Removed files are ignored: stored chunks are never deleted
individually. Stops on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	importCmd.Flags().StringVarP(&importCollection, "collection", "c", "", "target collection")
	importCmd.Flags().BoolVar(&importVerbose, "list", false, "print the outcome for every file")
	watchCmd.Flags().StringVarP(&importCollection, "collection", "c", "", "target collection")
	watchCmd.Flags().BoolVar(&watchInitial, "import", false, "import existing files before watching")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce, "quiet period before a changed file is added")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(watchCmd)
}

func newImporter(dir string) (*filesystem.Importer, error) {
	if err := requireService(ingestService != nil, "ingest"); err != nil {
		return nil, err
	}
	if err := requireService(normaliserService != nil, "normaliser"); err != nil {
		return nil, err
	}
	return filesystem.NewImporter(
		filesystem.New(dir),
		normaliserService,
		ingestService,
		filesystem.WithCollection(importCollection),
		filesystem.WithDebounce(watchDebounce),
	), nil
}

func runImport(cmd *cobra.Command, args []string) error {
	importer, err := newImporter(args[0])
	if err != nil {
		return err
	}

	report, err := importer.Import(cmd.Context())
	if importVerbose {
		for _, f := range report.Files {
			printFileResult(cmd, f)
		}
	}
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported %d files (%d skipped, %d deferred, %d failed).\n",
		report.Count(filesystem.FileAdded), report.Count(filesystem.FileSkipped),
		report.Count(filesystem.FileDeferred), report.Count(filesystem.FileFailed))

	for _, f := range report.Files {
		if f.Status == filesystem.FileFailed && !importVerbose {
			cmd.PrintErrf("  failed: %s: %v\n", f.Path, f.Err)
		}
	}
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	importer, err := newImporter(args[0])
	if err != nil {
		return err
	}

	if watchInitial {
		report, err := importer.Import(cmd.Context())
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		cmd.Printf("Imported %d existing files.\n", report.Count(filesystem.FileAdded))
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)...\n", args[0])
	err = importer.Watch(cmd.Context(), func(r filesystem.FileResult) {
		printFileResult(cmd, r)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func printFileResult(cmd *cobra.Command, r filesystem.FileResult) {
	switch {
	case r.Err != nil:
		cmd.Printf("%-8s %s: %v\n", r.Status, r.Path, r.Err)
	case r.DocID != "":
		cmd.Printf("%-8s %s  %s\n", r.Status, shortID(r.DocID), r.Path)
	default:
		cmd.Printf("%-8s %s\n", r.Status, r.Path)
	}
}
