package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/recall/internal/core/domain"
)

var (
	clearYes    bool
	recentLimit int
	recentJSON  bool
)

// isInteractive reports whether confirmation prompts can be answered.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"collections"},
	Short:   "Manage collections",
	Long: `Collections are namespaces for stored chunks. They exist as long as
they hold at least one chunk.`,
	RunE: runCollectionList,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections with chunk and document counts",
	RunE:  runCollectionList,
}

var collectionStatsCmd = &cobra.Command{
	Use:   "stats [name]",
	Short: "Show counts for one collection",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCollectionStats,
}

var collectionClearCmd = &cobra.Command{
	Use:   "clear [name]",
	Short: "Delete every chunk in a collection",
	Long:  `Irreversibly deletes every chunk in the collection. Other collections are untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionClear,
}

var collectionRecentCmd = &cobra.Command{
	Use:   "recent [name]",
	Short: "Show the most recently stored chunks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCollectionRecent,
}

func init() {
	collectionClearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	collectionRecentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 10, "number of chunks")
	collectionRecentCmd.Flags().BoolVar(&recentJSON, "json", false, "output chunks as JSON")

	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionStatsCmd)
	collectionCmd.AddCommand(collectionClearCmd)
	collectionCmd.AddCommand(collectionRecentCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if err := requireService(collectionService != nil, "collection"); err != nil {
		return err
	}

	stats, err := collectionService.AllStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	if len(stats) == 0 {
		cmd.Println("No collections yet. Add a document with 'recall add'.")
		return nil
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	cmd.Printf("%-24s %8s %10s\n", "COLLECTION", "CHUNKS", "DOCUMENTS")
	for _, name := range names {
		cmd.Printf("%-24s %8d %10d\n", name, stats[name].Chunks, stats[name].Documents)
	}
	return nil
}

func runCollectionStats(cmd *cobra.Command, args []string) error {
	if err := requireService(collectionService != nil, "collection"); err != nil {
		return err
	}

	name := firstArg(args)
	stats, err := collectionService.Stats(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("collection stats: %w", err)
	}

	if name == "" {
		name = "(default)"
	}
	cmd.Printf("Collection: %s\n", name)
	cmd.Printf("  Chunks:    %d\n", stats.Chunks)
	cmd.Printf("  Documents: %d\n", stats.Documents)
	return nil
}

func runCollectionClear(cmd *cobra.Command, args []string) error {
	if err := requireService(collectionService != nil, "collection"); err != nil {
		return err
	}

	name := args[0]
	if !clearYes {
		ok, err := confirm(cmd, fmt.Sprintf("Delete every chunk in collection %q? [y/N]: ", name))
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}

	removed, err := collectionService.Clear(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	cmd.Printf("Removed %d chunks from %s.\n", removed, name)
	return nil
}

func runCollectionRecent(cmd *cobra.Command, args []string) error {
	if err := requireService(collectionService != nil, "collection"); err != nil {
		return err
	}

	chunks, err := collectionService.Recent(cmd.Context(), firstArg(args), recentLimit)
	if err != nil {
		return fmt.Errorf("recent chunks: %w", err)
	}

	if recentJSON {
		return outputJSON(cmd, recentView(chunks))
	}
	if len(chunks) == 0 {
		cmd.Println("No chunks stored.")
		return nil
	}
	for i := range chunks {
		c := &chunks[i]
		cmd.Printf("  %s  %s #%d\n", c.CreatedAt.Local().Format("2006-01-02 15:04:05"), shortID(c.DocID), c.ChunkID)
		cmd.Printf("      %s\n", snippet(c.Content, snippetLength))
	}
	return nil
}

type chunkView struct {
	DocID     string               `json:"doc_id"`
	ChunkID   int                  `json:"chunk_id"`
	Content   string               `json:"content"`
	Metadata  domain.ChunkMetadata `json:"metadata"`
	CreatedAt string               `json:"created_at"`
}

func recentView(chunks []domain.Chunk) []chunkView {
	views := make([]chunkView, len(chunks))
	for i := range chunks {
		views[i] = chunkView{
			DocID:     chunks[i].DocID,
			ChunkID:   chunks[i].ChunkID,
			Content:   chunks[i].Content,
			Metadata:  chunks[i].Metadata,
			CreatedAt: chunks[i].CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}
	return views
}

// confirm asks a yes/no question on an interactive terminal.
// Non-interactive input is refused so that scripts must pass --yes.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	if !isInteractive() {
		return false, errors.New("confirmation required: re-run with --yes")
	}

	cmd.Print(prompt)
	answer, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
