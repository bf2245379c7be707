package analysis

import (
	"strings"
	"unicode"

	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/registry"
	"github.com/samber/lo"
)

// tagMapping ties one searchable term to the indicator words that justify it.
// The list is ordered so tag generation stays deterministic.
type tagMapping struct {
	tag        string
	indicators []string
}

// searchableMapping maps what people type into a search box to the words
// that show up in packages delivering it
var searchableMapping = []tagMapping{
	{"web-automation", []string{"playwright", "selenium", "browser", "automation", "testing"}},
	{"testing", []string{"test", "automation", "e2e", "browser", "visual", "screenshot"}},
	{"database", []string{"postgres", "mysql", "mongodb", "sql", "database", "storage"}},
	{"api", []string{"api", "rest", "graphql", "webhook", "integration"}},
	{"search", []string{"search", "brave", "google", "web-search", "query"}},
	{"ai", []string{"openai", "anthropic", "gpt", "ai", "claude", "llm"}},
	{"github", []string{"git", "github", "version-control", "repository"}},
	{"slack", []string{"slack", "chat", "messaging", "communication"}},
	{"stripe", []string{"stripe", "payment", "billing", "e-commerce"}},
	{"email", []string{"email", "sendgrid", "mailgun", "smtp"}},
	{"file-management", []string{"file", "filesystem", "storage", "upload", "download"}},
	{"data-processing", []string{"data", "etl", "transform", "process", "csv", "json"}},
	{"monitoring", []string{"monitoring", "logging", "metrics", "alerts"}},
	{"cloud", []string{"aws", "azure", "cloud", "serverless"}},
	{"productivity", []string{"calendar", "notes", "tasks", "todo", "productivity"}},
	{"security", []string{"auth", "security", "oauth", "jwt", "encryption"}},
	{"social-media", []string{"twitter", "facebook", "social", "posting"}},
	{"content", []string{"content", "cms", "blog", "publishing"}},
	{"notification", []string{"notification", "alert", "webhook", "push"}},
	{"image-processing", []string{"image", "photo", "visual", "screenshot"}},
	{"document", []string{"document", "pdf", "word", "text"}},
	{"scraping", []string{"scraping", "crawling", "extraction", "parsing"}},
	{"workflow", []string{"workflow", "automation", "pipeline", "task"}},
}

// toolActionTags maps verbs appearing in tool names or descriptions to the
// search term people would use for that capability
var toolActionTags = []tagMapping{
	{"web-interaction", []string{"click"}},
	{"screenshot-capture", []string{"screenshot"}},
	{"browser-navigation", []string{"navigate"}},
	{"form-filling", []string{"type"}},
	{"timing-control", []string{"wait"}},
	{"file-upload", []string{"upload"}},
	{"file-download", []string{"download"}},
	{"search-functionality", []string{"search"}},
	{"content-creation", []string{"create"}},
	{"data-management", []string{"delete"}},
	{"data-modification", []string{"update"}},
	{"data-querying", []string{"query"}},
	{"validation", []string{"validate"}},
	{"authentication", []string{"authenticate"}},
	{"messaging", []string{"send"}},
	{"data-retrieval", []string{"fetch"}},
}

// fallbackTags pad the tag list to a useful minimum for search
var fallbackTags = []string{
	"mcp", "automation", "integration", "ai-tools", "productivity",
	"workflow", "assistant", "helper", "connector", "service",
	"api-integration", "data-tools", "utility", "automation-tools",
	"claude-tools", "ai-assistant", "model-context-protocol",
}

// minTags is the floor below which fallback tags are added
const minTags = 20

// searchableTags builds the ordered, deduplicated tag list for one package
func searchableTags(corpus string, pkg registry.Package, out probe.Outcome) []string {
	var tags []string

	for _, m := range searchableMapping {
		if containsAny(corpus, m.indicators) {
			tags = append(tags, m.tag)
		}
	}

	for _, tool := range out.Tools {
		text := strings.ToLower(tool.Name + " " + tool.Description)
		for _, m := range toolActionTags {
			if containsAny(text, m.indicators) {
				tags = append(tags, m.tag)
			}
		}
	}

	if len(out.Resources) > 0 {
		tags = append(tags, "resource-access")
	}
	if len(out.Prompts) > 0 {
		tags = append(tags, "prompt-templates")
	}

	for _, kw := range pkg.Keywords {
		if len(kw) > 2 && isAlpha(kw) {
			tags = append(tags, strings.ToLower(kw))
		}
	}

	tags = lo.Uniq(tags)

	for _, tag := range fallbackTags {
		if len(tags) >= minTags {
			break
		}
		if !lo.Contains(tags, tag) {
			tags = append(tags, tag)
		}
	}

	return tags
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
