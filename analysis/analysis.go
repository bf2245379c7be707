// Package analysis derives quality scores, searchable tags, and descriptive
// metadata for a probed MCP package using fixed rules over the probe outcome
// and registry metadata. It is fully deterministic and needs no network.
package analysis

import (
	"strings"

	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/registry"
)

// Report is the full rule-based assessment of one package
type Report struct {
	IntelligenceScore    float64  `json:"intelligence_score"`
	ReliabilityScore     float64  `json:"reliability_score"`
	Tags                 []string `json:"tags"`
	UseCases             []string `json:"use_cases"`
	BusinessValue        string   `json:"business_value"`
	Description          string   `json:"description"`
	DocumentationQuality string   `json:"documentation_quality"`
	SetupComplexity      string   `json:"setup_complexity"`
	MaintenanceLevel     string   `json:"maintenance_level"`
	Category             string   `json:"category"`
}

// maxTags caps the stored tag list
const maxTags = 25

// sophisticationKeywords mark tools that do more than passive lookups
var sophisticationKeywords = []string{
	"execute", "analyze", "process", "generate", "create",
	"search", "query", "update", "delete",
}

// Analyze produces the rule-based report for one package and its probe
// outcome
func Analyze(pkg registry.Package, out probe.Outcome) Report {
	corpus := strings.ToLower(strings.Join([]string{
		pkg.Name,
		pkg.Description,
		pkg.DetailedDescription,
		pkg.Readme,
		strings.Join(pkg.Keywords, " "),
	}, " "))

	tags := searchableTags(corpus, pkg, out)
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}

	return Report{
		IntelligenceScore:    intelligenceScore(pkg, out),
		ReliabilityScore:     reliabilityScore(out),
		Tags:                 tags,
		UseCases:             useCases(out.Tools, tags),
		BusinessValue:        businessValue(tags, out),
		Description:          describe(tags, out),
		DocumentationQuality: documentationQuality(out),
		SetupComplexity:      setupComplexity(corpus),
		MaintenanceLevel:     maintenanceLevel(pkg, out),
		Category:             category(pkg.Name, pkg.Description, tags),
	}
}

// intelligenceScore rewards a working connection, breadth of tools, tool
// sophistication, and official packages. Capped at 1.0.
func intelligenceScore(pkg registry.Package, out probe.Outcome) float64 {
	score := 0.1

	if out.Success {
		score += 0.4
	}

	if n := len(out.Tools); n > 0 {
		score += min(0.4, float64(n)*0.05)

		sophisticated := 0
		for _, tool := range out.Tools {
			text := strings.ToLower(tool.Name + " " + tool.Description)
			for _, kw := range sophisticationKeywords {
				if strings.Contains(text, kw) {
					sophisticated++
					break
				}
			}
		}
		if sophisticated > 0 {
			score += min(0.1, float64(sophisticated)*0.02)
		}
	}

	name := strings.ToLower(pkg.Name)
	if strings.Contains(name, "official") || strings.Contains(name, "modelcontextprotocol") {
		score += 0.1
	}

	return min(1.0, score)
}

// reliabilityScore rewards a working connection, protocol compliance, and
// actual functionality. Capped at 1.0.
func reliabilityScore(out probe.Outcome) float64 {
	score := 0.2

	if out.Success {
		score += 0.5
	}
	if out.ProtocolVersion != "" {
		score += 0.1
	}
	if len(out.Tools) > 0 {
		score += 0.1
	}
	if len(out.Tools) > 5 {
		score += 0.1
	}

	return min(1.0, score)
}

// documentationQuality grades by connection success and tool breadth
func documentationQuality(out probe.Outcome) string {
	switch {
	case out.Success && len(out.Tools) > 10:
		return "excellent"
	case out.Success && len(out.Tools) > 0:
		return "good"
	case out.Success:
		return "fair"
	default:
		return "poor"
	}
}
