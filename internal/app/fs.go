package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const maxFilenameRunes = 100

// asFilename turns a title into a file name stem: words made of letters,
// digits, '-' and '_' joined with '-'.
func asFilename(title string) string {
	words := strings.FieldsFunc(title, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_')
	})
	name := strings.Join(words, "-")
	if r := []rune(name); len(r) > maxFilenameRunes {
		name = strings.TrimRight(string(r[:maxFilenameRunes]), "-")
	}
	if name == "" {
		name = "untitled"
	}
	return name
}

func avoidNameClash(dst string) string {
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return dst
	}
	ext := filepath.Ext(dst)
	base := strings.TrimSuffix(filepath.Base(dst), ext)
	dir := filepath.Dir(dst)

	for i := 1; ; i++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

// expandTilde replaces a leading ~ with the home directory.
func expandTilde(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// resolveFile expands and absolutizes a user supplied file path and checks
// that it exists.
func resolveFile(path string) (string, error) {
	expanded, err := expandTilde(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("paper file does not exist: %s", path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("paper file is a directory: %s", path)
	}
	return abs, nil
}
