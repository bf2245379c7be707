package registry

import (
	"net/url"
	"strings"
	"testing"
)

func TestMarkdown(t *testing.T) {
	pageURL, err := url.Parse("https://example.com/docs")
	if err != nil {
		t.Fatal(err)
	}

	body := `<html><head><title>Files MCP</title></head><body>
<article>
<h1>Files MCP</h1>
<p>Read and write files over the Model Context Protocol.</p>
<p>Set the FILES_ROOT environment variable before launching.</p>
</article>
</body></html>`

	got, err := markdown(pageURL, body)
	if err != nil {
		t.Fatalf("markdown() error: %v", err)
	}

	for _, want := range []string{
		"Files MCP",
		"Read and write files over the Model Context Protocol.",
		"FILES_ROOT",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown() output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("markdown() output still contains HTML tags:\n%s", got)
	}
}
