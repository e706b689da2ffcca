package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"reason/internal/logutil"
)

var logger = logutil.GetLogger("[arxiv] ")

// Metadata represents the subset of arXiv fields we care about.
type Metadata struct {
	ID       string
	Title    string
	Authors  []string
	Year     int
	DOI      string
	Abstract string
}

const userAgent = "reason/0.1"

const (
	defaultAPIURL = "https://export.arxiv.org/api/query"
	defaultPDFURL = "https://arxiv.org/pdf/"
)

var ErrInvalidID = errors.New("not an arXiv URL or identifier")

var (
	modernIDPattern = regexp.MustCompile(`(?i)(\d{4}\.\d{4,5})(v\d+)?`)
	legacyIDPattern = regexp.MustCompile(`(?i)([a-z-]+(?:\.[a-z-]+)?/[0-9]{7})(v\d+)?`)
)

// ParseID extracts the arXiv identifier from an abs or pdf URL, or from a
// bare identifier. The version suffix is kept when present.
func ParseID(src string) (string, error) {
	src = strings.TrimSpace(src)
	if u, err := url.Parse(src); err == nil && u.Host != "" {
		if !strings.HasSuffix(strings.ToLower(u.Host), "arxiv.org") {
			return "", fmt.Errorf("%w: %q", ErrInvalidID, src)
		}
		path := strings.Trim(u.Path, "/")
		switch {
		case strings.HasPrefix(path, "abs/"):
			src = strings.TrimPrefix(path, "abs/")
		case strings.HasPrefix(path, "pdf/"):
			src = strings.TrimSuffix(strings.TrimPrefix(path, "pdf/"), ".pdf")
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidID, src)
		}
	}
	src = strings.TrimPrefix(strings.TrimPrefix(src, "arXiv:"), "arxiv:")
	for _, re := range []*regexp.Regexp{modernIDPattern, legacyIDPattern} {
		if m := re.FindStringSubmatch(src); m != nil && m[0] == src {
			return normalizeMatch(m), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidID, src)
}

func normalizeMatch(match []string) string {
	id := strings.TrimSpace(match[1])
	if len(match) >= 3 {
		if version := strings.TrimSpace(match[2]); version != "" {
			id += strings.ToLower(version)
		}
	}
	return id
}

// Client talks to the arXiv export API and PDF mirror.
type Client struct {
	HTTP   *http.Client
	APIURL string
	PDFURL string
}

func NewClient() *Client {
	return &Client{
		HTTP:   http.DefaultClient,
		APIURL: defaultAPIURL,
		PDFURL: defaultPDFURL,
	}
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	logger.Printf("GET %s", target)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("arxiv status %s: %s", resp.Status, string(b))
	}
	return resp, nil
}

type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	Authors   []entryAuthor `xml:"author"`
	Summary   string        `xml:"summary"`
	DOI       string        `xml:"{http://arxiv.org/schemas/atom}doi"`
}

type entryAuthor struct {
	Name string `xml:"name"`
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fetch retrieves metadata for a given arXiv ID using the official Atom API.
func (c *Client) Fetch(ctx context.Context, id string) (*Metadata, error) {
	resp, err := c.get(ctx, c.APIURL+"?id_list="+url.QueryEscape(id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var f feed
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}
	if len(f.Entries) == 0 || strings.TrimSpace(f.Entries[0].Title) == "" {
		return nil, fmt.Errorf("no entries returned for id %q", id)
	}
	e := f.Entries[0]

	var year int
	if t, err := time.Parse(time.RFC3339, e.Published); err == nil {
		year = t.Year()
	}

	authors := make([]string, len(e.Authors))
	for i, a := range e.Authors {
		authors[i] = strings.TrimSpace(a.Name)
	}

	return &Metadata{
		ID:       id,
		Title:    cleanText(e.Title),
		Authors:  authors,
		Year:     year,
		DOI:      strings.TrimSpace(e.DOI),
		Abstract: cleanText(e.Summary),
	}, nil
}

// DownloadPDF streams the PDF of the paper into w.
func (c *Client) DownloadPDF(ctx context.Context, id string, w io.Writer) error {
	resp, err := c.get(ctx, c.PDFURL+id+".pdf")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", id, err)
	}
	return nil
}
