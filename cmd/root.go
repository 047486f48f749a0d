package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/vulnimport/pkg/config"
	"github.com/user/vulnimport/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "vulnimport",
	Short: "Import scanner and report-tool findings into a vulnerability corpus",
	Long: `vulnimport normalises Nessus XML reports, Serpico JSON exports and bulk
YAML/JSON documents into one canonical, locale-indexed vulnerability format,
stores them with duplicate detection and reports a priority summary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitLogger(DebugMode); err != nil {
			return fmt.Errorf("failed to initialise logger: %w", err)
		}
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appConfig = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

var (
	DebugMode  bool
	ConfigFile string

	appConfig *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadConfig() (*config.Config, error) {
	if ConfigFile != "" {
		return config.LoadFile(ConfigFile)
	}
	return config.LoadConfig()
}

func saveConfig() error {
	if ConfigFile != "" {
		return config.SaveFile(appConfig, ConfigFile)
	}
	return config.SaveConfig(appConfig)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", "", "Config file (default ~/.vulnimport/config.yaml)")
}
