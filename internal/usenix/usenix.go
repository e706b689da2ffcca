// Package usenix scrapes paper metadata from USENIX conference presentation
// pages such as https://www.usenix.org/conference/atc21/presentation/lee.
package usenix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"reason/internal/logutil"
)

var logger = logutil.GetLogger("[usenix] ")

const userAgent = "reason/0.1"

var (
	ErrInvalidURL = errors.New("not a USENIX presentation URL")
	ErrNoTitle    = errors.New("no element with id 'page-title' found")
	ErrNoAuthors  = errors.New("no author list found")
)

// Presentation is what a presentation page says about its paper.
type Presentation struct {
	Title   string
	Authors []string
	Venue   string
	Year    string
	// Files lists the downloadable documents in page order. Some
	// presentations offer both a prepublication and a final version.
	Files []File
}

type File struct {
	Label string
	URL   string
}

var conferencePattern = regexp.MustCompile(`^([A-Za-z]+)(\d{2})$`)

// ParseURL checks that src points to a presentation page and derives the
// venue and year from the conference segment: atc21 is ATC 2021 and
// usenixsecurity20 is SECURITY 2020.
func ParseURL(src string) (venue, year string, err error) {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, src)
	}
	if !strings.HasSuffix(strings.ToLower(u.Hostname()), "usenix.org") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, src)
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 4 || segments[0] != "conference" || segments[2] != "presentation" || segments[3] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, src)
	}
	m := conferencePattern.FindStringSubmatch(segments[1])
	if m == nil {
		return "", "", fmt.Errorf("%w: conference %q has no two-digit year", ErrInvalidURL, segments[1])
	}
	name := strings.ToLower(m[1])
	if trimmed := strings.TrimPrefix(name, "usenix"); trimmed != "" {
		name = trimmed
	}
	return strings.ToUpper(name), "20" + m[2], nil
}

// Client fetches presentation pages and their files.
type Client struct {
	HTTP *http.Client
}

func NewClient() *Client {
	return &Client{HTTP: http.DefaultClient}
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
		resp.Body.Close()
		return nil, fmt.Errorf("usenix status %s", resp.Status)
	}
	return resp, nil
}

// Fetch downloads and scrapes the presentation page at pageURL.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*Presentation, error) {
	pageURL = strings.TrimSpace(pageURL)
	venue, year, err := ParseURL(pageURL)
	if err != nil {
		return nil, err
	}
	base, _ := url.Parse(pageURL)

	resp, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	p, err := scrape(doc, base)
	if err != nil {
		return nil, err
	}
	p.Venue, p.Year = venue, year
	return p, nil
}

// Download streams the document at fileURL into w.
func (c *Client) Download(ctx context.Context, fileURL string, w io.Writer) error {
	resp, err := c.get(ctx, fileURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download %s: %w", fileURL, err)
	}
	return nil
}

func scrape(doc *html.Node, base *url.URL) (*Presentation, error) {
	titleNode := find(doc, func(n *html.Node) bool { return attr(n, "id") == "page-title" })
	if titleNode == nil {
		return nil, ErrNoTitle
	}
	title := cleanText(text(titleNode))
	if title == "" {
		return nil, ErrNoTitle
	}

	people := find(doc, func(n *html.Node) bool { return hasClass(n, "field-name-field-paper-people-text") })
	if people == nil {
		return nil, fmt.Errorf("%w: no element with class 'field-name-field-paper-people-text'", ErrNoAuthors)
	}
	para := find(people, func(n *html.Node) bool { return n.DataAtom == atom.P })
	if para == nil {
		return nil, fmt.Errorf("%w: no paragraph inside the people field", ErrNoAuthors)
	}
	authors := splitAuthors(para)
	if len(authors) == 0 {
		return nil, fmt.Errorf("%w: the people field is empty", ErrNoAuthors)
	}

	p := &Presentation{Title: title, Authors: authors}
	for _, f := range findAll(doc, func(n *html.Node) bool { return hasClass(n, "file") }) {
		a := find(f, func(n *html.Node) bool { return n.DataAtom == atom.A && attr(n, "href") != "" })
		if a == nil {
			continue
		}
		ref, err := url.Parse(attr(a, "href"))
		if err != nil {
			continue
		}
		p.Files = append(p.Files, File{Label: cleanText(text(a)), URL: base.ResolveReference(ref).String()})
	}
	return p, nil
}

var authorSeparator = regexp.MustCompile(`\s*(?:,|;|\band\b)\s*`)

// splitAuthors reads names from the direct text of the paragraph. Affiliations
// sit in child elements and are skipped.
func splitAuthors(para *html.Node) []string {
	var authors []string
	for c := para.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			continue
		}
		for _, name := range authorSeparator.Split(c.Data, -1) {
			if name = cleanText(name); name != "" {
				authors = append(authors, name)
			}
		}
	}
	return authors
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
