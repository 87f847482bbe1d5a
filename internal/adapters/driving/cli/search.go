package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
)

// snippetLength is the number of characters of chunk content shown per result.
const snippetLength = 160

var (
	searchLimit      int
	searchThreshold  float64
	searchCollection string
	searchJSON       bool
	searchDomain     string
	searchIntent     string
	searchTopics     []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored chunks",
	Long: `Ranks the chunks of one collection by cosine similarity to the query.

Context hints (--domain, --intent, --topic) switch to context-aware search:
the query is augmented with the hints and results are reranked by a blend
of similarity and how many hints each chunk mentions.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	flags := searchCmd.Flags()
	flags.IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	flags.Float64Var(&searchThreshold, "threshold", 0, "minimum similarity in [-1, 1] (default from settings)")
	flags.StringVarP(&searchCollection, "collection", "c", "", "collection to search")
	flags.BoolVar(&searchJSON, "json", false, "output results as JSON")
	flags.StringVar(&searchDomain, "domain", "", "subject area used to rerank results")
	flags.StringVar(&searchIntent, "intent", "", "what the results are needed for")
	flags.StringSliceVar(&searchTopics, "topic", nil, "earlier topic used to rerank results (repeatable)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireService(searchService != nil, "search"); err != nil {
		return err
	}
	if admitter != nil && !admitter.Admit() {
		return fmt.Errorf("search rejected: %w", domain.ErrAdmissionDeferred)
	}

	query := args[0]
	opts := domain.SearchOptions{
		Collection: searchCollection,
		Limit:      searchLimit,
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = domain.Threshold(searchThreshold)
	}

	hints := domain.SearchContext{
		Domain:         searchDomain,
		UserIntent:     searchIntent,
		PreviousTopics: searchTopics,
	}

	var (
		results []domain.SearchResult
		err     error
	)
	if hints.IsEmpty() {
		results, err = searchService.Search(cmd.Context(), query, opts)
	} else {
		results, err = searchService.SearchWithContext(cmd.Context(), query, hints, opts)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		// Format: [N] Title #chunk (score)
		title := r.Metadata.Title
		if title == "" {
			title = shortID(r.DocID)
		}

		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1, title, r.ChunkID, r.Score)
		if r.ContextRelevance > 0 {
			cmd.Printf("      similarity %.3f, context %.2f\n", r.Similarity, r.ContextRelevance)
		}
		cmd.Printf("      %s\n", snippet(r.Content, snippetLength))
		cmd.Println()
	}
	return nil
}

// snippet collapses whitespace and truncates to n characters.
func snippet(content string, n int) string {
	text := strings.Join(strings.Fields(content), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// shortID abbreviates a document id for display.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12]
}
