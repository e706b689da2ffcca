package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reason/internal/app"
	"reason/internal/arxiv"
	"reason/internal/cmdhist"
	"reason/internal/config"
	"reason/internal/logutil"
	"reason/internal/meta"
	"reason/internal/theme"
	"reason/internal/usenix"
)

const version = "0.1.0"

// historyRecall bounds the lines loaded for Up/Down recall.
const historyRecall = 500

func main() {
	var configPath string
	root := &cobra.Command{
		Use:           "reason",
		Short:         "A shell for your bibliography",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/reason/config.json)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadOrInit(configPath)
	if err != nil {
		return err
	}
	if err := logutil.SetOutputFile(cfg.LogPath); err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logutil.Close()

	interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	styled := isatty.IsTerminal(os.Stdout.Fd())

	th := theme.Plain()
	if styled {
		th, err = theme.LoadFrom(cfg.ThemePath)
		if err != nil {
			log.Printf("theme: %v; using the default", err)
			th = theme.Default()
		}
	}

	papers, err := meta.Load(cfg.StatePath)
	if err != nil {
		log.Fatalf("load %s: %v", cfg.StatePath, err)
	}

	hist, recall, closeHist := openHistory(cfg.HistoryPath, os.Stderr)
	defer closeHist()

	var reader app.LineReader
	if interactive {
		reader = &app.TerminalReader{
			History:     recall,
			PromptStyle: th.Style(th.Components.Prompt),
		}
	} else {
		reader = app.NewPlainReader(os.Stdin, nil)
	}

	width := 0
	if styled {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}

	sh := &app.Shell{
		State:     app.NewState(papers),
		Config:    cfg,
		Registry:  app.NewRegistry(),
		Theme:     th,
		Width:     width,
		Styled:    styled,
		Prompter:  app.NewPrompter(reader),
		Launcher:  app.ExecLauncher(),
		Clipboard: app.SystemClipboard(),
		Arxiv:     arxiv.NewClient(),
		Usenix:    usenix.NewClient(),
		PDFInfo:   app.ReadPDFInfo,
		Out:       os.Stdout,
	}
	repl := &app.REPL{
		Shell:   sh,
		Reader:  reader,
		History: hist,
		Out:     os.Stdout,
		Err:     os.Stderr,
	}
	runErr := repl.Run()

	if err := meta.Save(cfg.StatePath, sh.State.Papers); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save %s: %v\nDumping the library to stderr.\n", cfg.StatePath, err)
		if err := meta.Dump(os.Stderr, sh.State.Papers); err != nil {
			fmt.Fprintf(os.Stderr, "Dump failed: %v\n", err)
		}
		return err
	}
	return runErr
}

// openHistory opens the command history store. Without it the shell still
// runs, it just forgets the lines typed in this session.
func openHistory(path string, warn io.Writer) (app.History, []string, func()) {
	store, err := cmdhist.Open(path)
	if err != nil {
		fmt.Fprintf(warn, "Command history unavailable: %v\n", err)
		return nil, nil, func() {}
	}
	recall, err := store.Texts(historyRecall)
	if err != nil {
		log.Printf("history: %v", err)
	}
	return store, recall, func() {
		if err := store.Close(); err != nil {
			log.Printf("close history: %v", err)
		}
	}
}
