package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/cinject/cli/internal/config"
	"github.com/cinject/cli/internal/injector"
	"github.com/cinject/cli/internal/instrument"
	"github.com/cinject/cli/internal/logger"
	"github.com/cinject/cli/internal/scanner"
	"github.com/cinject/cli/internal/ui"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the cinject command tree
func NewRootCmd(app *AppConfig) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cinject [files...]",
		Short: "Insert a snippet at the top of every C/C++ function body",
		Long: `cinject finds every function and method definition in the given C and C++
files and inserts a snippet right after the opening brace of each body.

Without --inject the definitions are only reported; nothing is written.

Example usage:
  cinject src/main.cpp src/util.cpp          # report definitions
  cinject --dir src --skip third_party       # scan a directory
  cinject --dir src --inject --snippet-file trace.txt`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, app)
		},
	}

	flags := rootCmd.Flags()
	flags.String("dir", "", "scan this directory instead of the listed files")
	flags.StringArray("skip", nil, "skip paths containing this substring (repeatable)")
	flags.Bool("inject", false, "write the snippet into the files (default is a dry run)")
	flags.Bool("quiet", false, "do not list each definition")
	flags.Bool("follow-inc", false, "also instrument definitions from included headers")
	flags.StringArrayP("include-path", "I", nil, "directory searched for #include targets (repeatable)")
	flags.String("snippet", "", "snippet template inserted into each definition")
	flags.String("snippet-file", "", "read the snippet template from a file")
	flags.StringSlice("ext", nil, "file extensions picked up by --dir")
	flags.Bool("diff", false, "print a unified diff of each change")
	flags.Bool("backup", false, "keep the original of each changed file as <file>.bak")
	flags.Bool("strict", false, "skip files that contain syntax errors")
	flags.IntP("jobs", "j", 0, "parallel jobs (default one per CPU)")
	flags.String("config", "", "config file (default .cinject.yaml in the current or home directory)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newVersionCmd(app))
	return rootCmd
}

// Execute runs the command line against the process arguments
func Execute() error {
	app := NewAppConfig()
	err := NewRootCmd(app).ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(app.Stderr, "Error:", err)
	}
	return err
}

func runRoot(cmd *cobra.Command, args []string, app *AppConfig) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := mergeFlags(cmd, cfg); err != nil {
		return err
	}

	verbose, _ := flags.GetBool("verbose")
	diag := logger.NewDiagnostics(app.Stderr, verbose)

	files, err := resolveFiles(cmd, args, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no input files; pass files or --dir")
	}

	snippet, err := injector.NewSnippet(cfg.Snippet, cfg.Delims...)
	if err != nil {
		return err
	}

	inject, _ := flags.GetBool("inject")
	quiet, _ := flags.GetBool("quiet")
	diff, _ := flags.GetBool("diff")

	opts := instrument.Options{
		Files:          files,
		Snippet:        snippet,
		Inject:         inject,
		Quiet:          quiet,
		Diff:           diff,
		FollowIncludes: cfg.FollowIncludes,
		IncludePaths:   cfg.IncludePaths,
		Strict:         cfg.Strict,
		Backup:         cfg.Backup,
		Jobs:           cfg.Jobs,
		Logger:         app.Logger,
		Diagnostics:    diag,
	}
	if app.Interactive && !quiet {
		opts.Progress = ui.RunSpinner
	}

	summary, err := instrument.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if app.Interactive && !quiet {
		app.Logger.Log(ui.RenderSummary("cinject", summaryRows(summary, inject)))
	}
	return summary.Err()
}

// mergeFlags lets explicitly set flags override the config file
func mergeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("snippet") {
		cfg.Snippet, _ = flags.GetString("snippet")
	}
	if flags.Changed("snippet-file") {
		path, _ := flags.GetString("snippet-file")
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read snippet file: %w", err)
		}
		cfg.Snippet = string(data)
	}
	if flags.Changed("skip") {
		skip, _ := flags.GetStringArray("skip")
		cfg.Skip = append(cfg.Skip, skip...)
	}
	if flags.Changed("include-path") {
		paths, _ := flags.GetStringArray("include-path")
		cfg.IncludePaths = append(cfg.IncludePaths, paths...)
	}
	if flags.Changed("ext") {
		cfg.Extensions, _ = flags.GetStringSlice("ext")
	}
	if flags.Changed("follow-inc") {
		cfg.FollowIncludes, _ = flags.GetBool("follow-inc")
	}
	if flags.Changed("backup") {
		cfg.Backup, _ = flags.GetBool("backup")
	}
	if flags.Changed("strict") {
		cfg.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	return cfg.Validate()
}

// resolveFiles returns the target files: a directory scan when --dir is
// given, the positional arguments otherwise
func resolveFiles(cmd *cobra.Command, args []string, cfg *config.Config) ([]string, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir != "" {
		return scanner.Scan(dir, scanner.Options{Extensions: cfg.Extensions, Skip: cfg.Skip})
	}
	return scanner.Filter(args, cfg.Skip), nil
}

func summaryRows(s *instrument.Summary, inject bool) []ui.Row {
	changed := "Planned insertions"
	if inject {
		changed = "Injected"
	}
	return []ui.Row{
		{Label: "Files", Value: s.Files},
		{Label: "Translation units", Value: s.TranslationUnits},
		{Label: "Functions", Value: s.Functions},
		{Label: changed, Value: s.Injected},
		{Label: "Parse failures", Value: s.ParseFailures, Failure: true},
		{Label: "Missing locations", Value: s.MissingLocations, Failure: true},
		{Label: "Failed insertions", Value: s.FailedInsertions, Failure: true},
		{Label: "Failed files", Value: s.FailedFiles, Failure: true},
	}
}
