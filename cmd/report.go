package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modscan.dev/pkg/modscan/internal/domain"
	m "modscan.dev/pkg/modscan/internal/model"
)

// reportCmd represents the report command.
var reportCmd = newReportCmd()

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render the final report of a previous run",
		Long: `Rebuild the final report from the results of a previous run in the output
directory, optionally in another format, and show the failure summary.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			publisher, err := newPublisher()
			if err != nil {
				return err
			}

			report := reportOptions()
			if publisher != nil {
				report.Publisher = publisher
			}

			return workflow.Report(cmd.Context(), domain.ReportArgs{
				Output: m.Path(viper.GetString(outputFlagName)),
				Report: report,
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(reportCmd)
}
