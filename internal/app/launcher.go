package app

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// Launcher runs external programs.
type Launcher interface {
	// Start spawns argv detached from the terminal and does not wait.
	Start(argv []string) error
	// Run runs argv on the terminal and waits for it to exit.
	Run(argv []string) error
}

// Clipboard receives text copied by commands.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// SystemClipboard writes to the desktop clipboard.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

type execLauncher struct{}

// ExecLauncher starts programs with os/exec.
func ExecLauncher() Launcher {
	return execLauncher{}
}

func (execLauncher) Start(argv []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return fmt.Errorf("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child so it does not linger as a zombie.
	go cmd.Wait()
	return nil
}

func (execLauncher) Run(argv []string) error {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return fmt.Errorf("empty command")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// buildCommand expands a command template. Every "{}" element is replaced by
// the files; without a placeholder the files are appended.
func buildCommand(template []string, files ...string) []string {
	argv := make([]string, 0, len(template)+len(files))
	placed := false
	for i, part := range template {
		if i > 0 && part == "{}" {
			argv = append(argv, files...)
			placed = true
			continue
		}
		argv = append(argv, part)
	}
	if !placed {
		argv = append(argv, files...)
	}
	return argv
}

// spawn starts argv and reports failure instead of returning it, so one
// failing file does not stop the others.
func spawn(sh *Shell, what string, argv []string, wait bool) bool {
	var err error
	if wait {
		err = sh.Launcher.Run(argv)
	} else {
		err = sh.Launcher.Start(argv)
	}
	if err == nil {
		return true
	}
	logger.Printf("spawn %q: %v", argv, err)
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist):
		sh.reportf("Invalid %s command: '%s'", what, argv[0])
	case errors.As(err, &exitErr):
		sh.reportf("%s exited with %v", argv[0], exitErr)
	default:
		sh.reportf("Failed to spawn subprocess: %v", err)
	}
	return false
}
