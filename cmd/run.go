package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"modscan.dev/pkg/modscan/internal/domain"
	m "modscan.dev/pkg/modscan/internal/model"
)

var runParallelFlag int
var analyzerFlag string
var analyzerArgsFlag []string
var extensionFlag string
var encodingFlag string
var timeoutFlag string
var strictStderrFlag bool
var looseReportsFlag bool

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [source-root]",
		Short: "Analyze a source tree and write reports",
		Long:  runLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			publisher, err := newPublisher()
			if err != nil {
				return err
			}

			report := reportOptions()
			if publisher != nil {
				report.Publisher = publisher
			}

			return workflow.Analyze(cmd.Context(), domain.AnalyzeArgs{
				DiscoveryArgs: discoveryArgs(args),
				Analyzer: domain.InvokerConfig{
					Analyzer: m.AnalyzerRef{
						Executable: viper.GetString(analyzerPathKey),
						Args:       viper.GetStringSlice(analyzerArgsKey),
					},
					Encoding:     viper.GetString(analyzerEncodingKey),
					Timeout:      viper.GetDuration(analyzerTimeoutKey),
					StrictStderr: viper.GetBool(analyzerStrictKey),
				},
				Report:       report,
				UseCache:     !viper.GetBool(noCacheFlagName),
				Threads:      viper.GetInt(runParallelConfigKey),
				LooseReports: viper.GetBool(runLooseReportsKey),
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runParallelFlag, runParallelFlagName, "p", defaultRunParallel, "number of analyzer processes run in parallel")
	bindFlagToConfig(cmd.Flags().Lookup(runParallelFlagName), runParallelConfigKey)

	cmd.Flags().StringVarP(&analyzerFlag, analyzerFlagName, "a", defaultAnalyzer, "analyzer executable")
	bindFlagToConfig(cmd.Flags().Lookup(analyzerFlagName), analyzerPathKey)

	cmd.Flags().StringArrayVar(&analyzerArgsFlag, analyzerArgFlagName, nil, "argument passed to the analyzer before the file path (can be repeated)")
	bindFlagToConfig(cmd.Flags().Lookup(analyzerArgFlagName), analyzerArgsKey)

	cmd.Flags().StringVarP(&extensionFlag, extensionFlagName, "e", defaultExtension, "extension of analyzable files")
	bindFlagToConfig(cmd.Flags().Lookup(extensionFlagName), analyzerExtKey)

	cmd.Flags().StringVar(&encodingFlag, encodingFlagName, defaultEncoding, "encoding of analyzer output (WHATWG name, e.g. utf-8, gbk, windows-1252)")
	bindFlagToConfig(cmd.Flags().Lookup(encodingFlagName), analyzerEncodingKey)

	cmd.Flags().StringVarP(&timeoutFlag, timeoutFlagName, "t", "0s", "per-file analyzer timeout, e.g. 30s (0 waits forever)")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFlagName), analyzerTimeoutKey)

	cmd.Flags().BoolVar(&strictStderrFlag, strictStderrFlagName, false, "treat analyzer stderr output as a failure even on exit status 0")
	bindFlagToConfig(cmd.Flags().Lookup(strictStderrFlagName), analyzerStrictKey)

	cmd.Flags().BoolVar(&looseReportsFlag, looseReportsFlagName, defaultLooseReports, "write a report for each loose file")
	bindFlagToConfig(cmd.Flags().Lookup(looseReportsFlagName), runLooseReportsKey)
}
