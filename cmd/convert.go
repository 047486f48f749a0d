package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/metrics"
)

var (
	convertParse   parseFlags
	convertOutput  string
	convertMetrics string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>...",
	Short: "Parse input files and print canonical records without storing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := metrics.NewMetrics()
		opts, err := convertParse.options(m)
		if err != nil {
			return err
		}

		batch, err := parseFiles(cmd.Context(), args, convertParse.format, opts)
		if err != nil {
			return err
		}
		if batch == nil {
			batch = []engine.Vulnerability{}
		}

		var data []byte
		switch convertOutput {
		case "yaml", "yml":
			data, err = yaml.Marshal(batch)
		case "json":
			data, err = json.MarshalIndent(batch, "", "  ")
			data = append(data, '\n')
		default:
			return fmt.Errorf("unknown output format: %s", convertOutput)
		}
		if err != nil {
			return fmt.Errorf("failed to encode records: %w", err)
		}

		cmd.OutOrStdout().Write(data)
		fmt.Fprint(cmd.ErrOrStderr(), engine.Summarize(batch).Report())
		writeMetrics(m, convertMetrics)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertParse.format, "format", "f", "", "Input format (nessus, serpico, bulk); detected when empty")
	convertCmd.Flags().StringVarP(&convertParse.locale, "locale", "l", "", "Locale for formats without one (default from config)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "yaml", "Output encoding (yaml, json)")
	convertCmd.Flags().StringVar(&convertMetrics, "metrics-textfile", "", "Write Prometheus metrics to this file")
	rootCmd.AddCommand(convertCmd)
}
