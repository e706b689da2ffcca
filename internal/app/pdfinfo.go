package app

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// PDFInfo is the document information dictionary reported by pdfinfo.
type PDFInfo struct {
	Title        string
	Author       string
	CreationDate string
	ModDate      string
}

// Year returns the four digit year of the creation date, or of the
// modification date when the former is missing.
func (i PDFInfo) Year() string {
	for _, date := range []string{i.CreationDate, i.ModDate} {
		if y := extractYear(date); y != "" {
			return y
		}
	}
	return ""
}

// ReadPDFInfo runs poppler's pdfinfo on path.
func ReadPDFInfo(path string) (PDFInfo, error) {
	if _, err := exec.LookPath("pdfinfo"); err != nil {
		return PDFInfo{}, fmt.Errorf("pdfinfo not installed (install via poppler)")
	}

	cmd := exec.Command("pdfinfo", path)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return PDFInfo{}, fmt.Errorf("pdfinfo: %w (%s)", err, errMsg)
		}
		return PDFInfo{}, fmt.Errorf("pdfinfo: %w", err)
	}
	return parsePDFInfo(stdout.String()), nil
}

func parsePDFInfo(output string) PDFInfo {
	info := PDFInfo{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 2)
		if len(parts) != 2 {
			continue
		}
		value := strings.TrimSpace(parts[1])
		switch strings.ToLower(strings.TrimSpace(parts[0])) {
		case "title":
			info.Title = value
		case "author":
			info.Author = value
		case "creationdate":
			info.CreationDate = value
		case "moddate":
			info.ModDate = value
		}
	}
	return info
}
