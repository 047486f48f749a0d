package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listStore storeFlags

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored vulnerabilities with their ids",
	Long: `Prints one tab-separated line per detail: record id, priority, locale and title.
The ids are the arguments expected by 'vulnimport merge'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := listStore.open()
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list vulnerabilities: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "ID\tPRIORITY\tLOCALE\tTITLE")
		for _, r := range records {
			priority := "-"
			if r.Vulnerability.Priority != nil {
				priority = r.Vulnerability.Priority.String()
			}
			for _, d := range r.Vulnerability.Details {
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", r.ID, priority, d.Locale, d.Title)
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStore.typ, "store", "", "Store backend (sqlite, postgres)")
	listCmd.Flags().StringVar(&listStore.dsn, "dsn", "", "Store DSN or SQLite path")
	rootCmd.AddCommand(listCmd)
}
