package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"reason/internal/paper"
)

type Config struct {
	StatePath   string        `json:"state_path"`
	HistoryPath string        `json:"history_path"`
	LogPath     string        `json:"log_path,omitempty"`
	ThemePath   string        `json:"theme_path,omitempty"`
	Storage     StorageConfig `json:"storage"`
	Filter      FilterConfig  `json:"filter"`
	Display     DisplayConfig `json:"display"`
	Output      OutputConfig  `json:"output"`
}

type StorageConfig struct {
	FileDir   string `json:"file_dir"`
	NoteDir   string `json:"note_dir"`
	RecentDir string `json:"recent_dir,omitempty"`
	// RecentLimit caps the number of links kept in RecentDir.
	RecentLimit int `json:"recent_limit,omitempty"`
}

type FilterConfig struct {
	CaseInsensitive bool `json:"case_insensitive"`
}

type DisplayConfig struct {
	TableColumns []string `json:"table_columns"`
}

// OutputConfig holds the external programs the shell launches. Each command
// is an argument vector; a "{}" element is replaced by the file arguments,
// which are appended at the end when no placeholder is present.
type OutputConfig struct {
	ViewerCommand  []string `json:"viewer_command"`
	ViewerBatch    bool     `json:"viewer_batch"`
	EditorCommand  []string `json:"editor_command"`
	EditorBatch    bool     `json:"editor_batch"`
	BrowserCommand []string `json:"browser_command"`
}

var defaultTableColumns = []string{"title", "first-author", "venue", "year"}

const defaultRecentLimit = 20

func defaultConfigPath() (string, error) {
	cfgHome := os.Getenv("XDG_CONFIG_HOME")
	if cfgHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		cfgHome = filepath.Join(home, ".config")
	}
	return filepath.Join(cfgHome, "reason", "config.json"), nil
}

// Path returns the full path to the config file, using the same rules as LoadOrInit.
func Path() (string, error) {
	return defaultConfigPath()
}

func defaultDataDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("REASON_DATA_DIR")); v != "" {
		return v, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "reason"), nil
}

func defaultStatePath(dataDir string) string {
	if v := strings.TrimSpace(os.Getenv("REASON_STATE_PATH")); v != "" {
		return v
	}
	return filepath.Join(dataDir, "metadata.yaml")
}

func defaultOpener() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"cmd", "/c", "start", ""}
	default:
		return []string{"xdg-open"}
	}
}

func defaultEditor() []string {
	if v := strings.Fields(os.Getenv("EDITOR")); len(v) > 0 {
		return v
	}
	return []string{"vi"}
}

// LoadOrInit reads the config at path, or at the default location when path
// is empty. A missing file is created with defaults.
func LoadOrInit(path string) (*Config, error) {
	if path == "" {
		p, err := defaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	// existing config
	if data, err := os.ReadFile(path); err == nil {
		var cfg Config
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := cfg.ensureDefaults(); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
		return &cfg, nil
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// first run: write the defaults out so they can be edited.
	fmt.Fprintln(os.Stderr, "No config found. Creating one with defaults.")
	// Terminal editors need the shell to wait for them.
	cfg := &Config{Output: OutputConfig{EditorBatch: true}}
	if err := cfg.ensureDefaults(); err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "  state_path: %s\n", cfg.StatePath)
	fmt.Fprintf(os.Stderr, "  file_dir  : %s\n", cfg.Storage.FileDir)
	fmt.Fprintf(os.Stderr, "  note_dir  : %s\n", cfg.Storage.NoteDir)
	fmt.Fprintf(os.Stderr, "Edit %s to change these paths.\n", path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) ensureDefaults() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	dataDir, err := defaultDataDir()
	if err != nil {
		return err
	}
	if strings.TrimSpace(c.StatePath) == "" {
		c.StatePath = defaultStatePath(dataDir)
	}
	if strings.TrimSpace(c.HistoryPath) == "" {
		c.HistoryPath = filepath.Join(dataDir, "history.db")
	}
	if strings.TrimSpace(c.Storage.FileDir) == "" {
		c.Storage.FileDir = filepath.Join(dataDir, "files")
	}
	if strings.TrimSpace(c.Storage.NoteDir) == "" {
		c.Storage.NoteDir = filepath.Join(dataDir, "notes")
	}
	if c.Storage.RecentLimit <= 0 {
		c.Storage.RecentLimit = defaultRecentLimit
	}
	if len(c.Display.TableColumns) == 0 {
		c.Display.TableColumns = append([]string(nil), defaultTableColumns...)
	}
	if len(c.Output.ViewerCommand) == 0 {
		c.Output.ViewerCommand = defaultOpener()
	}
	if len(c.Output.EditorCommand) == 0 {
		c.Output.EditorCommand = defaultEditor()
	}
	if len(c.Output.BrowserCommand) == 0 {
		c.Output.BrowserCommand = defaultOpener()
	}
	return nil
}

// Validate rejects settings the shell cannot act on.
func (c *Config) Validate() error {
	for _, col := range c.Display.TableColumns {
		if !paper.IsColumn(col) {
			return fmt.Errorf("unknown table column %q (valid: %s)", col, strings.Join(paper.Columns, ", "))
		}
	}
	commands := map[string][]string{
		"viewer_command":  c.Output.ViewerCommand,
		"editor_command":  c.Output.EditorCommand,
		"browser_command": c.Output.BrowserCommand,
	}
	for name, cmd := range commands {
		if len(cmd) == 0 || strings.TrimSpace(cmd[0]) == "" {
			return fmt.Errorf("output.%s must name a program", name)
		}
	}
	return nil
}
