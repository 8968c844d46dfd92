package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/groundworkdev/groundwork/app"
	"github.com/groundworkdev/groundwork/config"
	"github.com/groundworkdev/groundwork/console"
	"github.com/groundworkdev/groundwork/diagnostics"
	"github.com/groundworkdev/groundwork/plugins"
	"github.com/groundworkdev/groundwork/store"
	"github.com/groundworkdev/groundwork/tracing"
)

// settings models the optional .groundwork/config file (YAML, TOML, or JSON).
type settings struct {
	MaxWorkers int             `yaml:"max_workers,omitempty" json:"max_workers,omitempty" toml:"max_workers,omitempty"`
	PluginDir  string          `yaml:"plugin_dir,omitempty" json:"plugin_dir,omitempty" toml:"plugin_dir,omitempty"`
	Tracing    tracing.Options `yaml:"tracing,omitempty" json:"tracing,omitempty" toml:"tracing,omitempty"`
}

// WorkspaceRoot is the state entry naming the directory being scanned.
type WorkspaceRoot string

// FileList is the state entry holding every file the analyze phase found.
type FileList []string

// ScanSummary aggregates what the execute phase learned from the scan.
type ScanSummary struct {
	Files      int
	TotalBytes int64
}

// ScanCompleteEvent is emitted once the summary has been stored.
type ScanCompleteEvent struct {
	Summary ScanSummary
}

func newRunCommand() *cobra.Command {
	var (
		workspace  string
		configPath string
		useUI      bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan a workspace through the setup/analyze/execute/teardown phases",
		RunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("determine working directory: %w", err)
				}
				workspace = wd
			}
			absolute, err := filepath.Abs(workspace)
			if err != nil {
				return fmt.Errorf("resolve workspace: %w", err)
			}
			return runScan(cmd.Context(), absolute, configPath, useUI, timeout)
		},
	}

	cmd.Flags().StringVar(&workspace, "workspace", "", "workspace directory to scan (defaults to cwd)")
	cmd.Flags().StringVar(&configPath, "config", "", "settings file (defaults to <workspace>/.groundwork/config.yaml)")
	cmd.Flags().BoolVar(&useUI, "ui", false, "render live progress in the terminal")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "abort admission of new work after this duration")
	return cmd
}

func runScan(ctx context.Context, workspace, configPath string, useUI bool, timeout time.Duration) error {
	cfg := settings{}
	if configPath == "" {
		configPath = filepath.Join(workspace, config.Dir, "config.yaml")
	}
	if err := config.Load(configPath, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if cfg.Tracing.LogFile == "" {
		cfg.Tracing.LogFile = filepath.Join(workspace, config.Dir, "logs", "groundwork.log")
	}

	logger, closeLogger, err := tracing.Setup(cfg.Tracing)
	if err != nil {
		return err
	}
	defer closeLogger()

	opts := []app.Option{app.WithInstrument(tracing.Instrument(logger))}
	if cfg.MaxWorkers > 0 {
		opts = append(opts, app.WithMaxWorkers(cfg.MaxWorkers))
	}

	var program *tea.Program
	if useUI {
		program = tea.NewProgram(console.NewModel())
		opts = append(opts, app.WithObserver(console.Observer(program.Send)))
	}

	a := app.New(opts...)
	if err := registerScanSystems(a); err != nil {
		return err
	}
	if cfg.PluginDir != "" {
		if err := a.Extend(plugins.Extension{Dir: cfg.PluginDir}); err != nil {
			return err
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	session := &scanSession{workspace: workspace}

	var report *app.Report
	if program != nil {
		done := make(chan struct{})
		go func() {
			defer close(done)
			report, _ = a.Run(ctx, session)
			program.Send(console.RunFinishedMsg{Report: report})
		}()
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("progress view: %w", err)
		}
		<-done
	} else {
		report, _ = a.Run(ctx, session)
	}

	styled := isatty.IsTerminal(os.Stderr.Fd())
	reporter := diagnostics.NewReporter(styled)
	reporter.ReportRun(os.Stderr, report)

	if report.ExitCode != 0 {
		os.Exit(report.ExitCode)
	}
	return nil
}

// scanSession carries the workspace path across phases. Its execute hook is
// the primary business logic; the registered systems feed it through the
// store.
type scanSession struct {
	app.BaseSession
	workspace string
}

func (s *scanSession) Setup(ctx context.Context, st *store.Store) error {
	store.SetState(st, WorkspaceRoot(s.workspace))
	return nil
}

func (s *scanSession) Execute(ctx context.Context, st *store.Store) error {
	files, err := store.State[FileList](st)
	if err != nil {
		return err
	}
	summary := ScanSummary{Files: len(files)}
	for _, path := range files {
		if info, err := os.Stat(path); err == nil {
			summary.TotalBytes += info.Size()
		}
	}
	store.SetState(st, summary)

	emitter, err := store.EmitterFor[ScanCompleteEvent, string](st)
	if err != nil {
		return err
	}
	_, _, err = emitter.Emit(ctx, ScanCompleteEvent{Summary: summary})
	return err
}

func registerScanSystems(a *app.App) error {
	st := a.Store()
	store.RegisterEmitter[ScanCompleteEvent, string](st)

	if err := a.Analyze("scan", func(ctx context.Context, st *store.Store) error {
		root, err := store.State[WorkspaceRoot](st)
		if err != nil {
			return err
		}
		var files FileList
		err = filepath.WalkDir(string(root), func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				name := entry.Name()
				if name == ".git" || name == config.Dir || strings.HasPrefix(name, "_") {
					return filepath.SkipDir
				}
				return nil
			}
			files = append(files, path)
			return nil
		})
		if err != nil {
			return err
		}
		store.SetState(st, files)
		return nil
	}); err != nil {
		return err
	}

	return a.Teardown("report-summary", func(ctx context.Context, st *store.Store) error {
		summary, err := store.State[ScanSummary](st)
		if err != nil {
			// Nothing to report when an earlier phase failed before the
			// summary was produced.
			return nil
		}
		fmt.Fprintf(os.Stdout, "scanned %d files (%d bytes)\n", summary.Files, summary.TotalBytes)
		return nil
	})
}
