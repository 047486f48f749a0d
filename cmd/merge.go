package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/vulnimport/pkg/store"
)

var (
	mergeStore  storeFlags
	mergeTitle  string
	mergeLocale string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <id> <id>...",
	Short: "Replace two or more stored vulnerabilities by one merged record",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := mergeStore.open()
		if err != nil {
			return err
		}
		defer s.Close()

		locale := mergeLocale
		if locale == "" {
			locale = appConfig.Locale
		}
		res, err := s.MergeByIDs(cmd.Context(), args, mergeTitle, locale)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Merged %d vulnerabilities into %s\n", res.Merged, res.ID)
		return nil
	},
}

var purgeYes bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every stored vulnerability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeYes {
			return fmt.Errorf("refusing to purge without --yes")
		}
		s, err := mergeStore.open()
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.Purge(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d vulnerabilities\n", n)
		return nil
	},
}

func init() {
	mergeCmd.Flags().StringVarP(&mergeTitle, "title", "t", store.DefaultMergeTitle, "Title of the merged record")
	mergeCmd.Flags().StringVarP(&mergeLocale, "locale", "l", "", "Locale of the retitled detail (default from config)")
	for _, c := range []*cobra.Command{mergeCmd, purgeCmd} {
		c.Flags().StringVar(&mergeStore.typ, "store", "", "Store backend (sqlite, postgres)")
		c.Flags().StringVar(&mergeStore.dsn, "dsn", "", "Store DSN or SQLite path")
	}
	purgeCmd.Flags().BoolVar(&purgeYes, "yes", false, "Confirm deletion")
	rootCmd.AddCommand(mergeCmd, purgeCmd)
}
