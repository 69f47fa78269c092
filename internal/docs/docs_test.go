package docs

import "testing"

func TestTopics(t *testing.T) {
	t.Parallel()

	topics := Topics()
	want := map[string]string{
		"config":      "Configuration",
		"dashboard":   "Dashboard",
		"dev-backend": "Development backend",
		"overview":    "Overview",
	}
	if len(topics) != len(want) {
		t.Fatalf("got %d topics: %#v", len(topics), topics)
	}
	for _, tp := range topics {
		if want[tp.Name] != tp.Title {
			t.Fatalf("topic %q: title %q, want %q", tp.Name, tp.Title, want[tp.Name])
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	if _, ok := Get(" Dashboard "); !ok {
		t.Fatalf("expected case-insensitive lookup")
	}
	for _, bad := range []string{"", "nope", "../docs", "content/overview"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("Get(%q) should fail", bad)
		}
	}
}
