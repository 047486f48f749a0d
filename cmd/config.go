package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (locale, store)",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(appConfig)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var setLocaleCmd = &cobra.Command{
	Use:   "set-locale <locale>",
	Short: "Set the default locale for formats that carry none",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appConfig.Locale = strings.ToLower(args[0])
		if err := saveConfig(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Default locale set to %s\n", appConfig.Locale)
		return nil
	},
}

var setStoreCmd = &cobra.Command{
	Use:   "set-store",
	Short: "Set the storage backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, _ := cmd.Flags().GetString("type")
		dsn, _ := cmd.Flags().GetString("dsn")
		if typ == "" && dsn == "" {
			return fmt.Errorf("--type or --dsn is required")
		}

		if typ != "" {
			appConfig.Store.Type = strings.ToLower(typ)
			appConfig.Store.DSN = ""
		}
		if dsn != "" {
			appConfig.Store.DSN = dsn
		}
		if err := saveConfig(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Store updated: Type=%s, DSN=%s\n", appConfig.Store.Type, appConfig.Store.DSN)
		return nil
	},
}

func init() {
	setStoreCmd.Flags().StringP("type", "t", "", "Backend (sqlite, postgres)")
	setStoreCmd.Flags().StringP("dsn", "d", "", "Connection string or SQLite path")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setLocaleCmd)
	configCmd.AddCommand(setStoreCmd)
	rootCmd.AddCommand(configCmd)
}
