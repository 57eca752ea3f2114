// Package cmd provides the root command and CLI setup for modscan.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"modscan.dev/pkg/modscan/internal/adapter"
	"modscan.dev/pkg/modscan/internal/controller"
	"modscan.dev/pkg/modscan/internal/domain"
	m "modscan.dev/pkg/modscan/internal/model"
	"modscan.dev/pkg/modscan/internal/render"
)

var fsAdapter adapter.SourceFSAdapter
var resultStore adapter.ResultStore
var processRunner adapter.ProcessRunner
var workflow domain.Workflow
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that read/write results.
var outputDirFlag string

// noCacheFlag disables the outcome cache when set.
var noCacheFlag bool

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

var verboseFlag bool
var logFileFlag string
var formatFlag string
var fontFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	resultStore = adapter.NewResultStore()
	processRunner = adapter.NewLocalProcessRunner()
	workflow = domain.NewWorkflow(
		fsAdapter,
		resultStore,
		processRunner,
		ui,
	)
}

const sourceRootHelp = `The source root defaults to the current directory. Each immediate
subdirectory is a module; files directly under the root are loose files.`

const rootLongDescription = `Modscan runs an external static analyzer over every source file of a
project, one process per file, keeps each file's result next to the
others, and produces paginated reports per module and for the whole run.

` + sourceRootHelp

const runLongDescription = `Analyze every matching file under the source root and write the
per-module, per-loose-file and final reports.

` + sourceRootHelp

const listLongDescription = `List modules, loose files and the number of files that would be analyzed.

` + sourceRootHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "modscan",
		Short: "Per-file static analysis runner and report generator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// newRootCmd returns a fresh root command with the shared flags bound.
func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			defaultOutputDir,
			"output directory for results and reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVar(&noCacheFlag, noCacheFlagName, defaultNoCache, "disable the outcome cache (re-analyze everything)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(noCacheFlagName), noCacheFlagName)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", nil, "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVarP(&formatFlag, formatFlagName, "f", render.DefaultFormat, fmt.Sprintf("report format %v", render.Formats()))
	bindFlagToConfig(cmd.PersistentFlags().Lookup(formatFlagName), reportFormatKey)

	cmd.PersistentFlags().StringVar(&fontFlag, fontFlagName, "", "TrueType font for PDF reports (default core Helvetica)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(fontFlagName), reportFontKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file path (default "+defaultLogFilename+")")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

// sourceRoot returns the single optional positional argument, or ".".
func sourceRoot(args []string) m.Path {
	if len(args) == 0 || args[0] == "" {
		return "."
	}

	return m.Path(args[0])
}

func discoveryArgs(args []string) domain.DiscoveryArgs {
	return domain.DiscoveryArgs{
		SourceRoot: sourceRoot(args),
		Output:     m.Path(viper.GetString(outputFlagName)),
		Exclude:    viper.GetStringSlice(excludeConfigKey),
		Extension:  viper.GetString(analyzerExtKey),
	}
}

func reportOptions() domain.ReportOptions {
	return domain.ReportOptions{
		Format:     viper.GetString(reportFormatKey),
		FontPath:   viper.GetString(reportFontKey),
		PageWidth:  viper.GetFloat64(reportPageWidthKey),
		LineHeight: viper.GetFloat64(reportLineHeightKey),
		FontSize:   viper.GetFloat64(reportFontSizeKey),
	}
}
