package arxiv

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"https://arxiv.org/abs/2008.01234", "2008.01234"},
		{"https://arxiv.org/abs/2008.01234v2", "2008.01234v2"},
		{"http://export.arxiv.org/abs/1706.03762", "1706.03762"},
		{"https://arxiv.org/pdf/1706.03762v5.pdf", "1706.03762v5"},
		{"https://arxiv.org/pdf/1706.03762", "1706.03762"},
		{"2301.00001", "2301.00001"},
		{"arXiv:2301.00001V3", "2301.00001v3"},
		{"hep-th/9901001", "hep-th/9901001"},
		{"https://arxiv.org/abs/math.GT/0309136", "math.GT/0309136"},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.src)
		if err != nil {
			t.Errorf("ParseID(%q): %v", tt.src, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseIDRejects(t *testing.T) {
	for _, src := range []string{
		"https://example.com/abs/2008.01234",
		"https://arxiv.org/list/cs.DC/recent",
		"paper.pdf",
		"12345",
		"2008.01234 and more",
	} {
		if _, err := ParseID(src); !errors.Is(err, ErrInvalidID) {
			t.Errorf("ParseID(%q) error = %v, want ErrInvalidID", src, err)
		}
	}
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v5</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models
 are based on recurrent networks. </summary>
    <author><name>Ashish Vaswani</name></author>
    <author><name> Noam Shazeer </name></author>
    <arxiv:doi>10.1000/xyz</arxiv:doi>
  </entry>
</feed>`

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_list"); got != "1706.03762" {
			t.Errorf("id_list = %q", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("request carries no User-Agent")
		}
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), APIURL: srv.URL}
	md, err := c.Fetch(context.Background(), "1706.03762")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := &Metadata{
		ID:       "1706.03762",
		Title:    "Attention Is All You Need",
		Authors:  []string{"Ashish Vaswani", "Noam Shazeer"},
		Year:     2017,
		DOI:      "10.1000/xyz",
		Abstract: "The dominant sequence transduction models are based on recurrent networks.",
	}
	if diff := cmp.Diff(want, md); diff != "" {
		t.Errorf("Fetch (-want +got):\n%s", diff)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_list") == "0000.00000" {
			w.Write([]byte(`<feed xmlns="http://www.w3.org/2005/Atom"></feed>`))
			return
		}
		http.Error(w, "rate limited", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), APIURL: srv.URL}
	if _, err := c.Fetch(context.Background(), "0000.00000"); err == nil {
		t.Errorf("Fetch of an unknown id did not fail")
	}
	if _, err := c.Fetch(context.Background(), "1706.03762"); err == nil {
		t.Errorf("Fetch with a 503 response did not fail")
	}
}

func TestDownloadPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pdf/1706.03762.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("%PDF-1.5"))
	}))
	defer srv.Close()

	c := &Client{HTTP: srv.Client(), PDFURL: srv.URL + "/pdf/"}
	var buf bytes.Buffer
	if err := c.DownloadPDF(context.Background(), "1706.03762", &buf); err != nil {
		t.Fatalf("DownloadPDF: %v", err)
	}
	if buf.String() != "%PDF-1.5" {
		t.Errorf("downloaded %q", buf.String())
	}
	if err := c.DownloadPDF(context.Background(), "missing", &buf); err == nil {
		t.Errorf("DownloadPDF of a missing file did not fail")
	}
}
