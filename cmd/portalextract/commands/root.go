package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"portalextract/internal/registry"
	"portalextract/internal/telemetry"
	"portalextract/lib/configutil"
	libtelemetry "portalextract/lib/telemetry"

	"github.com/spf13/cobra"
)

const configName = "portalextract.json5"

type Config struct {
	FixturesDir string              `json:"fixtures_dir"`
	Workers     int                 `json:"workers"`
	Database    string              `json:"database"`
	Charset     string              `json:"charset"`
	Format      string              `json:"format"`
	Listen      string              `json:"listen"`
	Telemetry   libtelemetry.Config `json:"telemetry"`
}

var defaultConfig = Config{
	FixturesDir: "testdata",
	Workers:     4,
	Database:    "results.db",
	Format:      formatJSON,
	Listen:      ":8080",
}

// errFailed is returned by commands that already reported why they failed,
// it only sets the exit status.
var errFailed = errors.New("failed")

var (
	configPath *string
	verbose    *bool

	config   Config
	reg      *registry.Registry
	otelInst libtelemetry.Telemetry
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "", fmt.Sprintf("Path to the config file, %s is searched for upwards from the working directory otherwise.", configName))
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output.")
}

var rootCmd = &cobra.Command{
	Use:           "portalextract",
	Short:         "portalextract extracts typed records out of captured university portal pages.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		var err error
		config, err = configutil.Load(*configPath, configName, defaultConfig)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}

		otelInst, err = libtelemetry.Setup(cmd.Context(), "portalextract", config.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}

		reg = registry.Default(telemetry.SlogAPI{})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := otelInst.Shutdown(context.Background())
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, errFailed) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
