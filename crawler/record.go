package crawler

import (
	"github.com/e14z/mcpcrawl/analysis"
	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/registry"
	"github.com/e14z/mcpcrawl/store"
)

// buildRecord folds the pipeline stages for one package into the stored row
func buildRecord(pkg registry.Package, out probe.Outcome, signal probe.AuthSignal, report analysis.Report) store.Record {
	description := report.Description
	if description == "" {
		description = pkg.Description
	}

	healthStatus := "down"
	connectionStability := "unreliable"
	if out.Success {
		healthStatus = "healthy"
		connectionStability = "stable"
	}

	return store.Record{
		Name:        pkg.Name,
		Slug:        pkg.Slug,
		Endpoint:    pkg.LaunchCommand(),
		Category:    report.Category,
		Description: description,

		Tools:     out.Tools,
		Resources: out.Resources,
		Prompts:   out.Prompts,
		Protocol: store.ProtocolData{
			Version:            out.ProtocolVersion,
			ConnectionWorking:  out.Success,
			ToolsCount:         len(out.Tools),
			ResourcesCount:     len(out.Resources),
			PromptsCount:       len(out.Prompts),
			TotalFunctionality: out.FunctionalityCount(),
			ServerInfo:         out.ServerInfo,
			Capabilities:       out.Capabilities,
			StderrOutput:       out.Diagnostics,
			RawErrorData:       out.ErrorText,
		},

		AuthRequired:    signal.Required,
		RequiredEnvVars: signal.Variables,

		InstallType:    pkg.InstallType(),
		InstallCommand: pkg.LaunchCommand(),

		GitHubURL:  pkg.GitHubURL,
		WebsiteURL: pkg.Homepage,
		License:    pkg.License,
		Stars:      pkg.WeeklyDownloads,

		IntelligenceScore: report.IntelligenceScore,
		ReliabilityScore:  report.ReliabilityScore,
		Quality: store.QualityBreakdown{
			DocumentationQuality: report.DocumentationQuality,
			SetupComplexity:      report.SetupComplexity,
			MaintenanceLevel:     report.MaintenanceLevel,
			BusinessValue:        report.BusinessValue,
		},

		Tags:     report.Tags,
		UseCases: report.UseCases,
		Topics:   append(append([]string{}, pkg.Keywords...), report.Tags...),

		HealthStatus:        healthStatus,
		ConnectionStability: connectionStability,
		Verified:            out.Success,
	}
}
