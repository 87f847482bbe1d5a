package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage engine settings",
	Long: `View and change chunking, search, embedding, and admission settings.

Settings are stored in ~/.recall/config.toml unless --config is given.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a single setting",
	Long: `Change a single setting. The value is parsed according to the key's type.

Examples:
  recall settings set search.limit 10
  recall settings set search.timeout 2s
  recall settings set embedding.provider ollama`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List recognised setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long: `Interactively choose the embedding provider.

Changing provider changes the vector space: collections ingested with one
provider do not rank meaningfully against queries embedded with another.`,
	RunE: runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = "(default)"
	}
	cmd.Printf("  Data dir: %s\n", dataDir)
	cmd.Printf("  Default collection: %s\n", settings.DefaultCollection)
	cmd.Println()

	cmd.Println("[Chunker]")
	cmd.Printf("  Size: %d\n", settings.Chunker.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunker.Overlap)
	cmd.Println()

	cmd.Println("[Search]")
	cmd.Printf("  Limit: %d\n", settings.Search.Limit)
	cmd.Printf("  Threshold: %.2f\n", settings.Search.Threshold)
	if settings.Search.Timeout > 0 {
		cmd.Printf("  Timeout: %s\n", settings.Search.Timeout)
	} else {
		cmd.Printf("  Timeout: none\n")
	}
	cmd.Printf("  Complex queries: limit %d at score >= %.2f\n",
		settings.Search.ComplexityLimit, settings.Search.HighComplexity)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	switch settings.Embedding.Provider {
	case domain.EmbeddingProviderOllama:
		cmd.Printf("  Model: %s\n", settings.Embedding.Model)
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	case domain.EmbeddingProviderBagOfWords:
		if settings.Embedding.VocabularyFile != "" {
			cmd.Printf("  Vocabulary: %s\n", settings.Embedding.VocabularyFile)
		}
	}
	cmd.Println()

	cmd.Println("[Admission]")
	if settings.Admission.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Rate: %.1f/s (burst %d)\n", settings.Admission.Rate, settings.Admission.Burst)
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'recall settings keys' to list settings and 'recall settings set' to fix them.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetValue(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, k := range settingsService.Keys() {
		cmd.Println(k)
	}
	return nil
}

var embeddingProviders = []domain.EmbeddingProvider{
	domain.EmbeddingProviderBagOfWords,
	domain.EmbeddingProviderOllama,
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(stdin)

	cmd.Println("Select Embedding Provider")
	cmd.Println("-------------------------")
	current := 1
	for i, p := range embeddingProviders {
		marker := " "
		if p == settings.Embedding.Provider {
			marker = "*"
			current = i + 1
		}
		cmd.Printf("  %s %d. %s\n", marker, i+1, p.Description())
	}
	cmd.Printf("Choice [%d]: ", current)

	choice := parseChoice(readLine(reader), len(embeddingProviders), current)
	provider := embeddingProviders[choice-1]
	settings.Embedding.Provider = provider

	if provider == domain.EmbeddingProviderOllama {
		settings.Embedding.Model = promptDefault(cmd, reader, "Model", settings.Embedding.Model, "nomic-embed-text")
		settings.Embedding.BaseURL = promptDefault(cmd, reader, "Base URL", settings.Embedding.BaseURL, "http://localhost:11434")
	}

	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Embedding provider set to %s.\n", provider)
	return nil
}

func promptDefault(cmd *cobra.Command, reader *bufio.Reader, label, current, fallback string) string {
	if current == "" {
		current = fallback
	}
	cmd.Printf("%s [%s]: ", label, current)
	if input := readLine(reader); input != "" {
		return input
	}
	return current
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}
