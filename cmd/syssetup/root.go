package main

import (
	"embed"
	"io/fs"

	"github.com/arthur-debert/syssetup/internal/version"
	"github.com/arthur-debert/syssetup/pkg/cobrax/topics"
	"github.com/arthur-debert/syssetup/pkg/config"
	"github.com/arthur-debert/syssetup/pkg/core"
	"github.com/arthur-debert/syssetup/pkg/logging"
	"github.com/arthur-debert/syssetup/pkg/paths"
	"github.com/arthur-debert/syssetup/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicsFS embed.FS

// rootOptions holds flag values and the configuration loaded before any
// command runs
type rootOptions struct {
	verbosity int
	filesDir  string
	destDir   string
	dryRun    bool
	format    string

	cfg    *config.Config
	cfgErr error
}

// config returns the loaded configuration or the error that prevented
// loading it
func (o *rootOptions) config() (*config.Config, error) {
	return o.cfg, o.cfgErr
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:       "syssetup <home|root>",
		Short:     MsgRootShort,
		Long:      MsgRootLong,
		Example:   MsgRootExample,
		Version:   version.Version,
		ValidArgs: paths.ValidModes(),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.cfg, opts.cfgErr = config.Load()

			logFile := ""
			if opts.cfg != nil && opts.cfg.Logging.File {
				logFile = paths.LogFilePath()
			}
			logging.SetupLoggerWithOptions(logging.Options{
				Verbosity: opts.verbosity,
				LogFile:   logFile,
				Console:   cmd.ErrOrStderr(),
			})
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd, opts, args[0])
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)

	rootCmd.Flags().StringVar(&opts.filesDir, "files-dir", "", MsgFlagFilesDir)
	rootCmd.Flags().StringVar(&opts.destDir, "dest", "", MsgFlagDest)
	rootCmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.Flags().StringVar(&opts.format, "format", "auto", MsgFlagFormat)
	_ = rootCmd.MarkFlagDirname("files-dir")
	_ = rootCmd.MarkFlagDirname("dest")
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return ui.FormatNames(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())
	rootCmd.AddCommand(newGenconfigCmd(opts))

	if sub, err := fs.Sub(topicsFS, "topics"); err == nil {
		err = topics.InitializeWithOptions(rootCmd, sub, topics.Options{
			Extensions: []string{".md"},
			Renderer:   topics.NewGlamourRenderer(),
		})
		if err != nil {
			log.Warn().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd
}

// runSetup merges the layers for one mode and renders the report. A
// partial report is still rendered when the merge fails.
func runSetup(cmd *cobra.Command, opts *rootOptions, modeArg string) error {
	logger := logging.GetLogger("cmd.setup")

	mode, err := paths.ParseMode(modeArg)
	if err != nil {
		return err
	}

	cfg, err := opts.config()
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)

	renderer, format, err := ui.NewRendererForConfig(cfg.Output, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Info().
		Str("mode", string(mode)).
		Str("filesDir", cfg.Files.Dir).
		Str("base", cfg.Files.Base).
		Str("dest", opts.destDir).
		Bool("dryRun", cfg.Merge.DryRun).
		Str("format", format.String()).
		Msg("Running setup")

	result, setupErr := core.Setup(cmd.Context(), core.SetupOptions{
		Mode:      mode,
		FilesDir:  cfg.Files.Dir,
		BaseLayer: cfg.Files.Base,
		DestDir:   opts.destDir,
		DryRun:    cfg.Merge.DryRun,
	})
	if result != nil && result.Report != nil {
		if err := renderer.RenderResult(result); err != nil && setupErr == nil {
			return err
		}
	}
	return setupErr
}

// applyFlags lets explicitly set flags win over the configuration
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("files-dir") {
		cfg.Files.Dir = opts.filesDir
	}
	if flags.Changed("dry-run") {
		cfg.Merge.DryRun = opts.dryRun
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
}
