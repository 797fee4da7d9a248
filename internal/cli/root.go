package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lumipallolabs/dupedive/internal/config"
	"github.com/lumipallolabs/dupedive/internal/core"
	"github.com/lumipallolabs/dupedive/internal/logging"
	"github.com/lumipallolabs/dupedive/internal/stats"
	"github.com/lumipallolabs/dupedive/internal/ui"
)

var (
	configPath  string
	versionInfo = "dev"
)

// SetVersion sets the version information from build-time ldflags
func SetVersion(version, commit, date string) {
	versionInfo = version
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "dupedive [dir]",
	Short: "Find and remove duplicate files",
	Long: `dupedive - find duplicate files in a directory and review them set by set

Files in the directory are hashed by content. Each set of identical files is
presented largest waste first; delete the copies you don't need or skip ahead.
Without an argument the last scanned directory is used.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Config file (default ~/.config/dupedive/config.toml)")
	addScanFlags(flags)
}

// addScanFlags registers the flags that override config file settings
func addScanFlags(flags *pflag.FlagSet) {
	flags.String("hash", "", "Content hash: sha256, xxh64 or crc32")
	flags.Bool("verify", false, "Byte-compare files before reporting them as duplicates")
	flags.Int("workers", config.DefaultWorkers, "Concurrent hashing workers")
	flags.Bool("skip-empty", false, "Ignore zero-length files")
	flags.Bool("no-watch", false, "Don't watch the directory for outside deletions")
}

// applyFlags copies explicitly set flags onto cfg and revalidates it
func applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	var err error
	if flags.Changed("hash") {
		if cfg.Hash, err = flags.GetString("hash"); err != nil {
			return err
		}
	}
	if flags.Changed("verify") {
		if cfg.Verify, err = flags.GetBool("verify"); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("skip-empty") {
		if cfg.SkipEmpty, err = flags.GetBool("skip-empty"); err != nil {
			return err
		}
	}
	if flags.Changed("no-watch") {
		noWatch, err := flags.GetBool("no-watch")
		if err != nil {
			return err
		}
		cfg.Watch = !noWatch
	}
	return cfg.Validate()
}

// loadConfig reads the config file and applies explicitly set flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cfg, cmd.Flags()); err != nil {
		return nil, err
	}
	return cfg, nil
}

// controllerOptions builds controller options with persisted stats attached
func controllerOptions(cmd *cobra.Command) (*config.Config, core.Options, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, core.Options{}, err
	}
	opts, err := core.OptionsFromConfig(cfg)
	if err != nil {
		return nil, core.Options{}, err
	}
	opts.Stats = stats.NewManager()
	if err := opts.Stats.Load(); err != nil {
		logging.Debug.Printf("[CLI] failed to load stats: %v", err)
	}
	return cfg, opts, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	_, opts, err := controllerOptions(cmd)
	if err != nil {
		return err
	}

	dir, err := resolveDir(args, opts.Stats)
	if err != nil {
		return err
	}

	return ui.Run(opts, dir, versionInfo)
}

// resolveDir picks the directory argument, else the last scanned
// directory, else the working directory
func resolveDir(args []string, st *stats.Manager) (string, error) {
	dir := ""
	if len(args) > 0 {
		dir = args[0]
	} else if st != nil {
		dir = st.LastDirectory()
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return abs, nil
}
