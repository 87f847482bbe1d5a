// Package cli provides the recall command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/recall/internal/core/ports/driven"
	"github.com/custodia-labs/recall/internal/core/ports/driving"
	"github.com/custodia-labs/recall/internal/logger"
)

// version is set at build time.
var version = "dev"

// skipBootstrap marks commands that run without engine services.
const skipBootstrap = "skip-bootstrap"

// Options are the global flags handed to the Bootstrapper.
type Options struct {
	// ConfigPath is an explicit config file. Empty means ~/.recall/config.toml.
	ConfigPath string

	// DataDir overrides storage.data_dir.
	DataDir string

	// Ephemeral keeps everything in memory for the lifetime of the process.
	Ephemeral bool
}

// Services are the engine ports the commands drive.
type Services struct {
	Search      driving.SearchService
	Ingest      driving.IngestService
	Collections driving.CollectionService
	Settings    driving.SettingsService
	Normalisers driven.NormaliserRegistry
	Admission   Admitter

	// Close releases storage and embedding resources.
	Close func() error
}

// Admitter charges one request against admission control.
type Admitter interface {
	Admit() bool
}

// Bootstrapper builds services once flags are parsed.
type Bootstrapper func(ctx context.Context, opts Options) (*Services, error)

var (
	bootstrap Bootstrapper
	opts      Options
	verbose   bool

	searchService     driving.SearchService
	ingestService     driving.IngestService
	collectionService driving.CollectionService
	settingsService   driving.SettingsService
	normaliserService driven.NormaliserRegistry
	admitter          Admitter
	closeServices     func() error
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Local retrieval engine for RAG",
	Long: `recall stores documents as embedded chunks in named collections and
finds the chunks most similar to a query.

Documents are split into overlapping chunks, embedded, and appended to a
local SQLite database (~/.recall/data/recall.db by default).`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "print pipeline details to stderr")
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.recall/config.toml)")
	flags.StringVar(&opts.DataDir, "data-dir", "", "directory holding the chunk database")
	flags.BoolVar(&opts.Ephemeral, "ephemeral", false, "keep all data in memory; nothing is written to disk")
}

// Execute runs the root command. boot wires the engine after flag parsing.
func Execute(ctx context.Context, buildVersion string, boot Bootstrapper) error {
	if buildVersion != "" {
		version = buildVersion
	}
	bootstrap = boot
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, teardownServices())
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipBootstrap] == "true" || bootstrap == nil {
		return nil
	}

	svc, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	setServices(svc)
	return nil
}

func teardownServices() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

func setServices(svc *Services) {
	searchService = svc.Search
	ingestService = svc.Ingest
	collectionService = svc.Collections
	settingsService = svc.Settings
	normaliserService = svc.Normalisers
	admitter = svc.Admission
	closeServices = svc.Close
}

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

func requireService(present bool, name string) error {
	if !present {
		return fmt.Errorf("%s service not configured", name)
	}
	return nil
}

// errAborted is returned when the user declines a confirmation prompt.
var errAborted = errors.New("aborted")
