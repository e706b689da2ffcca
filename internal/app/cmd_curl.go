package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reason/internal/arxiv"
	"reason/internal/paper"
	"reason/internal/usenix"
)

// ArxivClient fetches paper metadata and PDFs from arXiv.
type ArxivClient interface {
	Fetch(ctx context.Context, id string) (*arxiv.Metadata, error)
	DownloadPDF(ctx context.Context, id string, w io.Writer) error
}

// UsenixClient scrapes USENIX presentation pages and downloads their files.
type UsenixClient interface {
	Fetch(ctx context.Context, pageURL string) (*usenix.Presentation, error)
	Download(ctx context.Context, fileURL string, w io.Writer) error
}

var (
	ErrNoSource   = errors.New("curl needs a source: an arXiv URL or identifier, a USENIX presentation URL, or a PDF file")
	ErrFileExists = errors.New("file already exists")
)

const (
	fetchTimeout    = 30 * time.Second
	downloadTimeout = 90 * time.Second
)

// curl adds a paper from an arXiv entry, a USENIX presentation page or a
// local PDF file.
func curl(sh *Shell, in Input) (Output, error) {
	if len(in.Args) < 2 {
		return nil, ErrNoSource
	}
	src := in.Args[1]

	var p paper.Paper
	var err error
	if id, idErr := arxiv.ParseID(src); idErr == nil {
		p, err = fromArxiv(sh, id)
	} else if _, _, uErr := usenix.ParseURL(src); uErr == nil {
		p, err = fromUsenix(sh, src)
	} else if strings.EqualFold(filepath.Ext(src), ".pdf") {
		p, err = fromPDF(sh, src)
	} else {
		return nil, fmt.Errorf("unknown source %q: expected an arXiv URL or identifier, a USENIX presentation URL, or a PDF file", src)
	}
	if err != nil {
		return nil, err
	}

	sh.State.Papers = append(sh.State.Papers, p)
	logger.Printf("curl %s: added %q", src, p.Title)
	return Selection{len(sh.State.Papers) - 1}, nil
}

func fromArxiv(sh *Shell, id string) (paper.Paper, error) {
	if sh.Arxiv == nil {
		return paper.Paper{}, fmt.Errorf("arXiv client not configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	md, err := sh.Arxiv.Fetch(ctx, id)
	cancel()
	if err != nil {
		return paper.Paper{}, fmt.Errorf("fetch arXiv %s: %w", id, err)
	}

	p := paper.Paper{
		Title:   md.Title,
		Authors: md.Authors,
		Venue:   "arXiv",
		Status:  []paper.Status{{Kind: paper.StatusAdded, At: sh.now()}},
	}
	if md.Year > 0 {
		p.Year = strconv.Itoa(md.Year)
	}
	if err := p.Validate(); err != nil {
		return paper.Paper{}, fmt.Errorf("arXiv %s: %w", id, err)
	}

	dst, err := pdfDestination(sh, p.Title)
	if err != nil {
		return paper.Paper{}, err
	}
	err = downloadTo(dst, "arXiv "+id, func(ctx context.Context, w io.Writer) error {
		return sh.Arxiv.DownloadPDF(ctx, id, w)
	})
	if err != nil {
		return paper.Paper{}, err
	}
	p.Filepath = dst
	return p, nil
}

func fromUsenix(sh *Shell, pageURL string) (paper.Paper, error) {
	if sh.Usenix == nil {
		return paper.Paper{}, fmt.Errorf("USENIX client not configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	pres, err := sh.Usenix.Fetch(ctx, pageURL)
	cancel()
	if err != nil {
		return paper.Paper{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	p := paper.Paper{
		Title:   pres.Title,
		Authors: pres.Authors,
		Venue:   pres.Venue,
		Year:    pres.Year,
		Status:  []paper.Status{{Kind: paper.StatusAdded, At: sh.now()}},
	}
	if err := p.Validate(); err != nil {
		return paper.Paper{}, fmt.Errorf("%s: %w", pageURL, err)
	}

	var file usenix.File
	switch len(pres.Files) {
	case 0:
		sh.reportf("Paper PDF not found. Skipping PDF download.")
		return p, nil
	case 1:
		file = pres.Files[0]
	default:
		labels := make([]string, len(pres.Files))
		for i, f := range pres.Files {
			labels[i] = f.Label
		}
		i, err := choose(sh, "Multiple files found:", labels)
		if err != nil {
			return paper.Paper{}, err
		}
		file = pres.Files[i]
	}

	dst, err := pdfDestination(sh, p.Title)
	if err != nil {
		return paper.Paper{}, err
	}
	err = downloadTo(dst, file.URL, func(ctx context.Context, w io.Writer) error {
		return sh.Usenix.Download(ctx, file.URL, w)
	})
	if err != nil {
		return paper.Paper{}, err
	}
	p.Filepath = dst
	return p, nil
}

// choose lists options numbered from 1 and asks for one. The first option is
// the default.
func choose(sh *Shell, header string, options []string) (int, error) {
	sh.reportf("%s", header)
	for i, o := range options {
		sh.reportf("  [%d] %s", i+1, o)
	}
	answer, err := sh.Prompter.Ask("file", "1")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 1 || n > len(options) {
		return 0, fmt.Errorf("%w: invalid choice %q", ErrDeclined, answer)
	}
	return n - 1, nil
}

// pdfDestination names the download after the title inside file_dir.
func pdfDestination(sh *Shell, title string) (string, error) {
	dir := sh.Config.Storage.FileDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(dir, asFilename(title)+".pdf")
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("%w: %s", ErrFileExists, dst)
	}
	return dst, nil
}

// downloadTo writes what fetch produces into dst. A partial file is removed
// on failure.
func downloadTo(dst, what string, fetch func(ctx context.Context, w io.Writer) error) error {
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrFileExists, dst)
		}
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
	defer cancel()
	err = fetch(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("download %s: %w", what, err)
	}
	return nil
}

func fromPDF(sh *Shell, src string) (paper.Paper, error) {
	path, err := resolveFile(src)
	if err != nil {
		return paper.Paper{}, err
	}
	var info PDFInfo
	if sh.PDFInfo != nil {
		if info, err = sh.PDFInfo(path); err != nil {
			// Metadata is only used as prompt defaults.
			sh.reportf("Could not read PDF metadata: %v", err)
			info = PDFInfo{}
		}
	}

	title, err := sh.Prompter.Ask("title", info.Title)
	if err != nil {
		return paper.Paper{}, err
	}
	authors, err := sh.Prompter.Ask("authors", info.Author)
	if err != nil {
		return paper.Paper{}, err
	}
	venue, err := sh.Prompter.Ask("venue", "")
	if err != nil {
		return paper.Paper{}, err
	}
	year, err := sh.Prompter.Ask("year", info.Year())
	if err != nil {
		return paper.Paper{}, err
	}

	args := []string{title}
	for _, kv := range [][2]string{{"by", authors}, {"at", venue}, {"in", year}, {"@", path}} {
		if kv[1] != "" {
			args = append(args, kv[0], kv[1])
		}
	}
	return paper.FromArgs(args, sh.now())
}
