package analysis

import (
	"math"
	"testing"

	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/registry"
	"github.com/google/go-cmp/cmp"
)

var browserPkg = registry.Package{
	Name:        "@acme/browser-mcp",
	Slug:        "@acme/browser-mcp",
	Description: "Playwright browser automation",
	Keywords:    []string{"playwright", "browser", "automation"},
}

var browserOutcome = probe.Outcome{
	Success:         true,
	ProtocolVersion: "2024-11-05",
	Tools: []probe.ToolDescriptor{
		{Name: "navigate", Description: "Navigate to a URL"},
		{Name: "click", Description: "Click an element"},
		{Name: "screenshot", Description: "Capture a screenshot"},
	},
	Resources: []probe.ResourceDescriptor{},
	Prompts:   []probe.PromptDescriptor{},
}

func scoreNear(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestAnalyzeConnectedServer(t *testing.T) {
	report := Analyze(browserPkg, browserOutcome)

	// 0.1 base + 0.4 connection + 3 tools * 0.05
	if !scoreNear(report.IntelligenceScore, 0.65) {
		t.Errorf("IntelligenceScore = %v, want 0.65", report.IntelligenceScore)
	}
	// 0.2 base + 0.5 connection + 0.1 protocol + 0.1 has tools
	if !scoreNear(report.ReliabilityScore, 0.9) {
		t.Errorf("ReliabilityScore = %v, want 0.9", report.ReliabilityScore)
	}

	wantTags := []string{
		"web-automation", "testing", "workflow",
		"browser-navigation", "web-interaction", "screenshot-capture",
		"playwright", "browser", "automation",
		"mcp", "integration", "ai-tools", "productivity", "assistant",
		"helper", "connector", "service", "api-integration", "data-tools",
		"utility",
	}
	if diff := cmp.Diff(wantTags, report.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}

	wantDesc := "Focused web automation tool with 3 functions for browser automation and task automation"
	if report.Description != wantDesc {
		t.Errorf("Description = %q, want %q", report.Description, wantDesc)
	}

	wantUseCases := []string{
		"Web automation and browser testing",
		"Screenshot capture and visual validation",
		"Form filling and data extraction",
		"E2E testing for web applications",
		"Web scraping and content monitoring",
	}
	if diff := cmp.Diff(wantUseCases, report.UseCases); diff != "" {
		t.Errorf("UseCases mismatch (-want +got):\n%s", diff)
	}

	if report.DocumentationQuality != "good" {
		t.Errorf("DocumentationQuality = %q, want %q", report.DocumentationQuality, "good")
	}
	if report.SetupComplexity != "simple" {
		t.Errorf("SetupComplexity = %q, want %q", report.SetupComplexity, "simple")
	}
	if report.MaintenanceLevel != "medium" {
		t.Errorf("MaintenanceLevel = %q, want %q", report.MaintenanceLevel, "medium")
	}
}

func TestAnalyzeFailedServer(t *testing.T) {
	pkg := registry.Package{
		Name:        "stripe-mcp",
		Slug:        "stripe-mcp",
		Description: "Stripe payments",
	}
	out := probe.Outcome{Success: false}

	report := Analyze(pkg, out)

	if !scoreNear(report.IntelligenceScore, 0.1) {
		t.Errorf("IntelligenceScore = %v, want 0.1", report.IntelligenceScore)
	}
	if !scoreNear(report.ReliabilityScore, 0.2) {
		t.Errorf("ReliabilityScore = %v, want 0.2", report.ReliabilityScore)
	}
	if report.DocumentationQuality != "poor" {
		t.Errorf("DocumentationQuality = %q, want %q", report.DocumentationQuality, "poor")
	}
	if report.MaintenanceLevel != "high" {
		t.Errorf("MaintenanceLevel = %q, want %q", report.MaintenanceLevel, "high")
	}
	if report.Category != "payments" {
		t.Errorf("Category = %q, want %q", report.Category, "payments")
	}

	wantDesc := "Provides stripe capabilities requiring configuration for automated task execution and workflow integration"
	if report.Description != wantDesc {
		t.Errorf("Description = %q, want %q", report.Description, wantDesc)
	}
	wantValue := "Potential to enhance AI agent capabilities in stripe domain once properly configured and connected."
	if report.BusinessValue != wantValue {
		t.Errorf("BusinessValue = %q, want %q", report.BusinessValue, wantValue)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	first := Analyze(browserPkg, browserOutcome)
	second := Analyze(browserPkg, browserOutcome)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Analyze() is not deterministic (-first +second):\n%s", diff)
	}
}

func TestIntelligenceScoreCaps(t *testing.T) {
	tools := make([]probe.ToolDescriptor, 30)
	for i := range tools {
		tools[i] = probe.ToolDescriptor{Name: "execute", Description: "Execute a task"}
	}
	out := probe.Outcome{Success: true, Tools: tools}
	pkg := registry.Package{Name: "@modelcontextprotocol/server-everything"}

	// 0.1 + 0.4 + 0.4 (tool cap) + 0.1 (sophistication cap) + 0.1 (official)
	// clamps at 1.0
	if got := intelligenceScore(pkg, out); !scoreNear(got, 1.0) {
		t.Errorf("intelligenceScore() = %v, want 1.0", got)
	}
}

func TestSetupComplexity(t *testing.T) {
	tests := []struct {
		name   string
		corpus string
		want   string
	}{
		{
			name:   "No indicators",
			corpus: "simple weather lookup",
			want:   "simple",
		},
		{
			name:   "Some auth words",
			corpus: "needs an auth token before use",
			want:   "moderate",
		},
		{
			name:   "Heavy configuration",
			corpus: "auth token key credential login password setup",
			want:   "complex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := setupComplexity(tt.corpus); got != tt.want {
				t.Errorf("setupComplexity(%q) = %q, want %q", tt.corpus, got, tt.want)
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		name        string
		pkgName     string
		description string
		tags        []string
		want        string
	}{
		{
			name:        "Database package",
			pkgName:     "postgres-mcp",
			description: "Query your postgres database",
			want:        "databases",
		},
		{
			name:        "Payments package",
			pkgName:     "stripe-server",
			description: "Stripe billing",
			want:        "payments",
		},
		{
			name:        "Messaging by tag",
			pkgName:     "notify",
			description: "",
			tags:        []string{"slack"},
			want:        "messaging",
		},
		{
			name:        "Fallback",
			pkgName:     "mystery",
			description: "does things",
			want:        "web-apis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := category(tt.pkgName, tt.description, tt.tags); got != tt.want {
				t.Errorf("category() = %q, want %q", got, tt.want)
			}
		})
	}
}
