package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/registry"
	"github.com/samber/lo"
)

// maxDescriptionLen is the hard cap on the generated capability description
const maxDescriptionLen = 200

// priorityTags decide the leading noun of the generated description
var priorityTags = []string{
	"web-automation", "database", "api", "search", "ai",
	"github", "slack", "stripe", "documentation",
}

// functionGroup maps verbs in tool names to a human-readable capability
type functionGroup struct {
	label   string
	actions []string
}

var functionGroups = []functionGroup{
	{"browser automation", []string{"click", "navigate", "screenshot"}},
	{"search and query operations", []string{"query", "search", "find"}},
	{"content creation", []string{"create", "upload", "save"}},
	{"communication", []string{"send", "message", "notify"}},
	{"data retrieval", []string{"get", "fetch", "retrieve"}},
}

// describe generates a capability description of at most 200 characters from
// what the server actually exposed. It never mentions the protocol itself.
func describe(tags []string, out probe.Outcome) string {
	primaryTag := "automation"
	for _, tag := range priorityTags {
		if lo.Contains(tags, tag) {
			primaryTag = strings.ReplaceAll(tag, "-", " ")
			break
		}
	}

	toolCount := len(out.Tools)

	var desc string
	if out.Success && toolCount > 0 {
		switch {
		case toolCount > 20:
			desc = fmt.Sprintf("Comprehensive %s tool with %d functions for ", primaryTag, toolCount)
		case toolCount > 5:
			desc = fmt.Sprintf("Feature-rich %s tool with %d functions for ", primaryTag, toolCount)
		default:
			desc = fmt.Sprintf("Focused %s tool with %d functions for ", primaryTag, toolCount)
		}

		if functions := primaryFunctions(out.Tools); len(functions) > 0 {
			desc += strings.Join(functions, ", ") + " and task automation"
		} else {
			desc += primaryTag + " operations and task automation"
		}
	} else {
		desc = fmt.Sprintf("Provides %s capabilities requiring configuration for automated task execution and workflow integration", primaryTag)
	}

	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen-3] + "..."
	}
	return desc
}

// primaryFunctions classifies the first three tools into capability labels
func primaryFunctions(tools []probe.ToolDescriptor) []string {
	var functions []string
	for _, tool := range tools[:min(3, len(tools))] {
		name := strings.ToLower(tool.Name)
		for _, g := range functionGroups {
			if containsAny(name, g.actions) {
				functions = append(functions, g.label)
				break
			}
		}
	}
	return lo.Uniq(functions)
}

// useCaseGroups map a tag fragment to the use cases it implies. Order
// matters: only the first matching group contributes.
var useCaseGroups = []struct {
	fragment string
	cases    []string
}{
	{"browser", []string{
		"Web automation and browser testing",
		"Screenshot capture and visual validation",
		"Form filling and data extraction",
		"E2E testing for web applications",
		"Web scraping and content monitoring",
	}},
	{"database", []string{
		"Database operations and queries",
		"Data storage and retrieval",
		"Database schema management",
		"Data backup and migration",
		"Real-time data monitoring",
	}},
	{"search", []string{
		"Web search and information retrieval",
		"Research assistance and fact-checking",
		"Content discovery and aggregation",
		"Market research automation",
		"Competitive intelligence gathering",
	}},
	{"documentation", []string{
		"Documentation access and retrieval",
		"Code reference lookup",
		"API documentation browsing",
		"Development assistance",
		"Knowledge base querying",
	}},
	{"ai", []string{
		"AI model integration and orchestration",
		"LLM-powered content generation",
		"AI assistant enhancement",
		"Automated content creation",
		"Intelligent data processing",
	}},
}

// toolUseCases map verbs in tool names to a single use case each
var toolUseCases = []struct {
	action  string
	useCase string
}{
	{"click", "Automated web interaction and clicking"},
	{"navigate", "Website navigation and browsing"},
	{"upload", "File upload automation"},
	{"send", "Message and notification sending"},
	{"get", "Data retrieval and information gathering"},
	{"fetch", "Data retrieval and information gathering"},
}

var genericUseCases = []string{
	"Automated task execution",
	"Workflow integration and automation",
	"Agent-based process automation",
}

// useCases derives three to five use cases from tags and tools
func useCases(tools []probe.ToolDescriptor, tags []string) []string {
	var cases []string

	// Special case carried from the tag vocabulary: playwright implies the
	// browser group even without a browser tag.
	for _, g := range useCaseGroups {
		if tagsContainFragment(tags, g.fragment) ||
			(g.fragment == "browser" && tagsContainFragment(tags, "playwright")) {
			cases = append(cases, g.cases...)
			break
		}
	}

	if len(cases) < 3 {
		for _, tool := range tools[:min(5, len(tools))] {
			name := strings.ToLower(tool.Name)
			for _, tc := range toolUseCases {
				if strings.Contains(name, tc.action) {
					cases = append(cases, tc.useCase)
					break
				}
			}
		}
	}

	if len(cases) < 3 {
		cases = append(cases, genericUseCases...)
	}

	cases = lo.Uniq(cases)
	if len(cases) > 5 {
		cases = cases[:5]
	}
	return cases
}

func tagsContainFragment(tags []string, fragment string) bool {
	return lo.SomeBy(tags, func(tag string) bool {
		return strings.Contains(tag, fragment)
	})
}

// businessValue states what an agent operator gains from the package
func businessValue(tags []string, out probe.Outcome) string {
	primary := "automation"
	if len(tags) > 0 {
		primary = tags[0]
	}

	if out.Success && len(out.Tools) > 0 {
		return fmt.Sprintf(
			"Enables AI agents to perform %s tasks at scale with %d verified tools, reducing manual work and increasing productivity through reliable MCP integration.",
			primary, len(out.Tools))
	}
	return fmt.Sprintf(
		"Potential to enhance AI agent capabilities in %s domain once properly configured and connected.",
		primary)
}

var (
	authIndicators   = []string{"auth", "token", "key", "credential", "login", "password"}
	configIndicators = []string{"config", "setup", "install", "database", "server"}
)

// setupComplexity counts authentication and configuration indicators in the
// package text corpus
func setupComplexity(corpus string) string {
	authCount := countContained(corpus, authIndicators)
	configCount := countContained(corpus, configIndicators)

	switch {
	case authCount > 3 || configCount > 5:
		return "complex"
	case authCount > 1 || configCount > 2:
		return "moderate"
	default:
		return "simple"
	}
}

// maintenanceLevel grades by connection health, falling back to release
// recency for packages that never connected
func maintenanceLevel(pkg registry.Package, out probe.Outcome) string {
	switch {
	case out.Success && len(out.Tools) > 5:
		return "low"
	case out.Success:
		return "medium"
	case !pkg.Modified.IsZero() && time.Since(pkg.Modified) < 18*30*24*time.Hour:
		return "medium"
	default:
		return "high"
	}
}

func countContained(text string, words []string) int {
	count := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			count++
		}
	}
	return count
}
