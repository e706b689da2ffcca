package usenix

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		src         string
		venue, year string
	}{
		{"https://www.usenix.org/conference/atc21/presentation/lee", "ATC", "2021"},
		{"https://usenix.org/conference/osdi20/presentation/zhang/", "OSDI", "2020"},
		{"https://www.usenix.org/conference/usenixsecurity22/presentation/kim", "SECURITY", "2022"},
		{"https://www.usenix.org/conference/NSDI23/presentation/wu", "NSDI", "2023"},
	}
	for _, tt := range tests {
		venue, year, err := ParseURL(tt.src)
		if err != nil {
			t.Errorf("ParseURL(%q): %v", tt.src, err)
			continue
		}
		if venue != tt.venue || year != tt.year {
			t.Errorf("ParseURL(%q) = %q, %q, want %q, %q", tt.src, venue, year, tt.venue, tt.year)
		}
	}
}

func TestParseURLRejects(t *testing.T) {
	for _, src := range []string{
		"https://example.com/conference/atc21/presentation/lee",
		"https://www.usenix.org/conference/atc21",
		"https://www.usenix.org/conference/atc21/technical-sessions/lee",
		"https://www.usenix.org/conference/atc/presentation/lee",
		"https://www.usenix.org/conference/atc21/presentation/lee/extra",
		"atc21/presentation/lee",
	} {
		if _, _, err := ParseURL(src); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ParseURL(%q) error = %v, want ErrInvalidURL", src, err)
		}
	}
}

const samplePage = `<!DOCTYPE html>
<html><body>
<h1 id="page-title">  Faster   Storage
  for Everyone </h1>
<div class="field field-name-field-paper-people-text">
  <div class="field-items"><div class="field-item even">
    <p>Alice Lee and Bob Park, <em>Seoul National University</em>; Carol Kim, Dan Cho, and Eve Han, <em>KAIST</em></p>
  </div></div>
</div>
<div class="field-name-field-presentation-pdf">
  <span class="file"><img src="/icon.png"> <a href="/system/files/atc21-lee-prepub.pdf">Prepublication PDF</a></span>
  <span class="file"><a href="https://www.usenix.org/system/files/atc21-lee.pdf">Final PDF</a></span>
  <span class="file">no link</span>
</div>
</body></html>`

// redirect sends every request to the test server, keeping the path.
type redirect struct {
	target *url.URL
}

func (r redirect) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	target, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return &Client{HTTP: &http.Client{Transport: redirect{target: target}}}
}

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/conference/atc21/presentation/lee", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(samplePage))
	})
	mux.HandleFunc("/system/files/atc21-lee.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.7 final"))
	})
	c := newTestClient(t, mux)

	got, err := c.Fetch(context.Background(), "https://www.usenix.org/conference/atc21/presentation/lee")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := &Presentation{
		Title:   "Faster Storage for Everyone",
		Authors: []string{"Alice Lee", "Bob Park", "Carol Kim", "Dan Cho", "Eve Han"},
		Venue:   "ATC",
		Year:    "2021",
		Files: []File{
			{Label: "Prepublication PDF", URL: "https://www.usenix.org/system/files/atc21-lee-prepub.pdf"},
			{Label: "Final PDF", URL: "https://www.usenix.org/system/files/atc21-lee.pdf"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Fetch (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	if err := c.Download(context.Background(), got.Files[1].URL, &buf); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if buf.String() != "%PDF-1.7 final" {
		t.Fatalf("downloaded %q", buf.String())
	}
}

func TestFetchErrors(t *testing.T) {
	pages := map[string]string{
		"/conference/osdi20/presentation/notitle":   `<div class="field-name-field-paper-people-text"><p>A</p></div>`,
		"/conference/osdi20/presentation/nopeople":  `<h1 id="page-title">T</h1>`,
		"/conference/osdi20/presentation/emptypara": `<h1 id="page-title">T</h1><div class="field-name-field-paper-people-text"><p><em>MIT</em></p></div>`,
	}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(page))
	}))

	tests := []struct {
		slug string
		want error
	}{
		{"notitle", ErrNoTitle},
		{"nopeople", ErrNoAuthors},
		{"emptypara", ErrNoAuthors},
	}
	for _, tt := range tests {
		_, err := c.Fetch(context.Background(), "https://www.usenix.org/conference/osdi20/presentation/"+tt.slug)
		if !errors.Is(err, tt.want) {
			t.Errorf("Fetch(%s) error = %v, want %v", tt.slug, err, tt.want)
		}
	}

	if _, err := c.Fetch(context.Background(), "https://www.usenix.org/conference/osdi20/presentation/missing"); err == nil {
		t.Errorf("Fetch of a missing page did not fail")
	}
}
