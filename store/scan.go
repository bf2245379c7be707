package store

import (
	"encoding/json"
	"time"
)

const selectColumns = `
	SELECT slug, name, endpoint, category, description,
	       tools, available_resources, prompt_templates, mcp_protocol_data,
	       auth_required, required_env_vars, install_type, auto_install_command,
	       github_url, website_url, license, stars,
	       intelligence_score, reliability_score, quality_breakdown,
	       tags, use_cases, topics,
	       health_status, connection_stability, verified,
	       last_scraped_at, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row back into a Record, decoding the JSON columns
func scanRecord(row scanner) (Record, error) {
	var rec Record
	var tools, resources, prompts, protocol string
	var envVars, quality, tags, useCases, topics string
	var lastScrapedAt, createdAt, updatedAt string

	err := row.Scan(
		&rec.Slug, &rec.Name, &rec.Endpoint, &rec.Category, &rec.Description,
		&tools, &resources, &prompts, &protocol,
		&rec.AuthRequired, &envVars, &rec.InstallType, &rec.InstallCommand,
		&rec.GitHubURL, &rec.WebsiteURL, &rec.License, &rec.Stars,
		&rec.IntelligenceScore, &rec.ReliabilityScore, &quality,
		&tags, &useCases, &topics,
		&rec.HealthStatus, &rec.ConnectionStability, &rec.Verified,
		&lastScrapedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return Record{}, err
	}

	for _, pair := range []struct {
		raw  string
		dest any
	}{
		{tools, &rec.Tools},
		{resources, &rec.Resources},
		{prompts, &rec.Prompts},
		{protocol, &rec.Protocol},
		{envVars, &rec.RequiredEnvVars},
		{quality, &rec.Quality},
		{tags, &rec.Tags},
		{useCases, &rec.UseCases},
		{topics, &rec.Topics},
	} {
		if err := json.Unmarshal([]byte(pair.raw), pair.dest); err != nil {
			return Record{}, err
		}
	}

	if rec.LastScrapedAt, err = time.Parse(time.RFC3339, lastScrapedAt); err != nil {
		return Record{}, err
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Record{}, err
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return Record{}, err
	}

	return rec, nil
}
