package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/vulnimport/pkg/engine"
	"github.com/user/vulnimport/pkg/logging"
	"github.com/user/vulnimport/pkg/metrics"
)

var (
	importParse   parseFlags
	importStore   storeFlags
	importMetrics string
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Parse input files and store the vulnerabilities",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := metrics.NewMetrics()
		opts, err := importParse.options(m)
		if err != nil {
			return err
		}

		batch, err := parseFiles(cmd.Context(), args, importParse.format, opts)
		if err != nil {
			return err
		}

		s, err := importStore.open()
		if err != nil {
			return err
		}
		defer s.Close()

		res, err := s.CreateBatch(cmd.Context(), batch)
		if err != nil {
			logging.Logger.Errorw("import failed", "error", err)
			return err
		}
		m.Stored(res.Created, len(res.Duplicates))
		writeMetrics(m, importMetrics)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (created %d, %d duplicates)\n", res.Message(), res.Created, len(res.Duplicates))
		if len(res.Duplicates) > 0 {
			fmt.Fprintf(out, "Already present: %s\n", strings.Join(res.Duplicates, ", "))
		}
		fmt.Fprint(out, engine.Summarize(batch).Report())
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importParse.format, "format", "f", "", "Input format (nessus, serpico, bulk); detected when empty")
	importCmd.Flags().StringVarP(&importParse.locale, "locale", "l", "", "Locale for formats without one (default from config)")
	importCmd.Flags().StringVar(&importStore.typ, "store", "", "Store backend (sqlite, postgres)")
	importCmd.Flags().StringVar(&importStore.dsn, "dsn", "", "Store DSN or SQLite path")
	importCmd.Flags().StringVar(&importMetrics, "metrics-textfile", "", "Write Prometheus metrics to this file")
	rootCmd.AddCommand(importCmd)
}
