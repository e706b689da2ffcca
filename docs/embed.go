package docs

import (
	"embed"
	"path"
	"sort"
	"strings"
)

// manPages holds one Markdown page per command, plus reason.md for the
// overview, so they are available in the binary.
//
//go:embed man/*.md
var manPages embed.FS

const overview = "reason"

// Page returns the Markdown manual page of the named command. An empty name
// returns the overview.
func Page(name string) (string, bool) {
	if name == "" {
		name = overview
	}
	if strings.ContainsAny(name, "/\\.") {
		return "", false
	}
	data, err := manPages.ReadFile(path.Join("man", name+".md"))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Commands lists the commands that have a manual page.
func Commands() []string {
	entries, err := manPages.ReadDir("man")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".md")
		if name != overview {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
