// Package docs holds the help topics printed by `roadmap-admin docs`.
package docs

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Topics lists every topic sorted by name.
func Topics() []Topic {
	entries, err := fs.ReadDir(contentFS, "content")
	if err != nil {
		return []Topic{}
	}
	out := make([]Topic, 0, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".md")
		if !ok || e.IsDir() {
			continue
		}
		body, _ := Get(name)
		out = append(out, Topic{Name: name, Title: heading(body, name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func Get(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", name+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// heading is the first "# " line of body, or fallback.
func heading(body, fallback string) string {
	for _, line := range strings.Split(body, "\n") {
		if t, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return fallback
}
