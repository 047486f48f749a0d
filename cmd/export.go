package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/vulnimport/pkg/engine"
)

var (
	exportStore storeFlags
	exportFile  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every stored vulnerability as a bulk YAML document",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := exportStore.open()
		if err != nil {
			return err
		}
		defer s.Close()

		records, err := s.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list vulnerabilities: %w", err)
		}
		vulns := make([]engine.Vulnerability, 0, len(records))
		for _, r := range records {
			vulns = append(vulns, r.Vulnerability)
		}

		data, err := yaml.Marshal(vulns)
		if err != nil {
			return fmt.Errorf("failed to encode vulnerabilities: %w", err)
		}
		if exportFile == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportFile, data, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d vulnerabilities to %s\n", len(vulns), exportFile)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "out", "o", "vulnerabilities.yml", "Output file, - for stdout")
	exportCmd.Flags().StringVar(&exportStore.typ, "store", "", "Store backend (sqlite, postgres)")
	exportCmd.Flags().StringVar(&exportStore.dsn, "dsn", "", "Store DSN or SQLite path")
	rootCmd.AddCommand(exportCmd)
}
