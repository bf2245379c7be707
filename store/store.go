// Package store persists crawled MCP records to SQLite. Records are keyed
// by slug and upserted, so re-crawling a package refreshes its row; crawl
// runs are recorded separately for bookkeeping.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/e14z/mcpcrawl/probe"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/morikuni/failure/v2"
)

type ErrorCode string

const (
	// ErrDatabase represents storage-level failures
	ErrDatabase ErrorCode = "Database"

	// ErrNotFound represents a lookup for a slug that is not stored
	ErrNotFound ErrorCode = "NotFound"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}

// ProtocolData captures everything the live connection reported, including
// raw failure output so auth extraction can be re-run offline
type ProtocolData struct {
	Version            string         `json:"version"`
	ConnectionWorking  bool           `json:"connection_working"`
	ToolsCount         int            `json:"tools_count"`
	ResourcesCount     int            `json:"resources_count"`
	PromptsCount       int            `json:"prompts_count"`
	TotalFunctionality int            `json:"total_functionality"`
	ServerInfo         map[string]any `json:"server_info,omitempty"`
	Capabilities       map[string]any `json:"capabilities,omitempty"`
	StderrOutput       string         `json:"stderr_output,omitempty"`
	RawErrorData       string         `json:"raw_error_data,omitempty"`
}

// QualityBreakdown groups the qualitative assessments
type QualityBreakdown struct {
	DocumentationQuality string `json:"documentation_quality"`
	SetupComplexity      string `json:"setup_complexity"`
	MaintenanceLevel     string `json:"maintenance_level"`
	BusinessValue        string `json:"business_value"`
}

// Record is one stored MCP package
type Record struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Endpoint    string `json:"endpoint"`
	Category    string `json:"category"`
	Description string `json:"description"`

	Tools     []probe.ToolDescriptor     `json:"tools"`
	Resources []probe.ResourceDescriptor `json:"resources"`
	Prompts   []probe.PromptDescriptor   `json:"prompts"`
	Protocol  ProtocolData               `json:"mcp_protocol_data"`

	AuthRequired    bool     `json:"auth_required"`
	RequiredEnvVars []string `json:"required_env_vars"`

	InstallType    string `json:"install_type"`
	InstallCommand string `json:"auto_install_command"`

	GitHubURL  string `json:"github_url,omitempty"`
	WebsiteURL string `json:"website_url,omitempty"`
	License    string `json:"license,omitempty"`
	Stars      int    `json:"stars"`

	IntelligenceScore float64          `json:"overall_intelligence_score"`
	ReliabilityScore  float64          `json:"reliability_score"`
	Quality           QualityBreakdown `json:"quality_breakdown"`

	Tags     []string `json:"tags"`
	UseCases []string `json:"use_cases"`
	Topics   []string `json:"topics"`

	HealthStatus        string `json:"health_status"`
	ConnectionStability string `json:"connection_stability"`
	Verified            bool   `json:"verified"`

	LastScrapedAt time.Time `json:"last_scraped_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RunStats summarizes one crawl run
type RunStats struct {
	Discovered int           `json:"discovered"`
	Connected  int           `json:"connected"`
	Failed     int           `json:"failed"`
	Stored     int           `json:"stored"`
	Duration   time.Duration `json:"duration"`
}

// Store is the SQLite-backed record store. Safe for concurrent use; SQLite
// serializes writes.
type Store struct {
	db *sql.DB
}

// Open creates or opens the store at the given database path
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, failure.Wrap(err, failure.Context{"path": path})
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, failure.New(ErrDatabase,
			failure.Message("Failed to create storage schema"),
			failure.Context{"path": path, "cause": err.Error()},
		)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mcps (
		slug                TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		endpoint            TEXT NOT NULL,
		category            TEXT NOT NULL,
		description         TEXT,
		tools               TEXT NOT NULL,
		available_resources TEXT NOT NULL,
		prompt_templates    TEXT NOT NULL,
		mcp_protocol_data   TEXT NOT NULL,
		auth_required       INTEGER NOT NULL,
		required_env_vars   TEXT NOT NULL,
		install_type        TEXT NOT NULL,
		auto_install_command TEXT NOT NULL,
		github_url          TEXT,
		website_url         TEXT,
		license             TEXT,
		stars               INTEGER NOT NULL DEFAULT 0,
		intelligence_score  REAL NOT NULL,
		reliability_score   REAL NOT NULL,
		quality_breakdown   TEXT NOT NULL,
		tags                TEXT NOT NULL,
		use_cases           TEXT NOT NULL,
		topics              TEXT NOT NULL,
		health_status       TEXT NOT NULL,
		connection_stability TEXT NOT NULL,
		verified            INTEGER NOT NULL,
		last_scraped_at     TEXT NOT NULL,
		created_at          TEXT NOT NULL,
		updated_at          TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mcps_category ON mcps(category);
	CREATE INDEX IF NOT EXISTS idx_mcps_verified ON mcps(verified);

	CREATE TABLE IF NOT EXISTS crawl_runs (
		id          TEXT PRIMARY KEY,
		started_at  TEXT NOT NULL,
		discovered  INTEGER NOT NULL,
		connected   INTEGER NOT NULL,
		failed      INTEGER NOT NULL,
		stored      INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts or refreshes one record keyed by slug. CreatedAt survives
// updates; everything else is replaced.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	now := time.Now().UTC()
	if rec.LastScrapedAt.IsZero() {
		rec.LastScrapedAt = now
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	tools, err := marshalJSON(rec.Tools)
	if err != nil {
		return err
	}
	resources, err := marshalJSON(rec.Resources)
	if err != nil {
		return err
	}
	prompts, err := marshalJSON(rec.Prompts)
	if err != nil {
		return err
	}
	protocol, err := marshalJSON(rec.Protocol)
	if err != nil {
		return err
	}
	envVars, err := marshalJSON(rec.RequiredEnvVars)
	if err != nil {
		return err
	}
	quality, err := marshalJSON(rec.Quality)
	if err != nil {
		return err
	}
	tags, err := marshalJSON(rec.Tags)
	if err != nil {
		return err
	}
	useCases, err := marshalJSON(rec.UseCases)
	if err != nil {
		return err
	}
	topics, err := marshalJSON(rec.Topics)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO mcps
		(slug, name, endpoint, category, description,
		 tools, available_resources, prompt_templates, mcp_protocol_data,
		 auth_required, required_env_vars, install_type, auto_install_command,
		 github_url, website_url, license, stars,
		 intelligence_score, reliability_score, quality_breakdown,
		 tags, use_cases, topics,
		 health_status, connection_stability, verified,
		 last_scraped_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(slug) DO UPDATE SET
		name = excluded.name,
		endpoint = excluded.endpoint,
		category = excluded.category,
		description = excluded.description,
		tools = excluded.tools,
		available_resources = excluded.available_resources,
		prompt_templates = excluded.prompt_templates,
		mcp_protocol_data = excluded.mcp_protocol_data,
		auth_required = excluded.auth_required,
		required_env_vars = excluded.required_env_vars,
		install_type = excluded.install_type,
		auto_install_command = excluded.auto_install_command,
		github_url = excluded.github_url,
		website_url = excluded.website_url,
		license = excluded.license,
		stars = excluded.stars,
		intelligence_score = excluded.intelligence_score,
		reliability_score = excluded.reliability_score,
		quality_breakdown = excluded.quality_breakdown,
		tags = excluded.tags,
		use_cases = excluded.use_cases,
		topics = excluded.topics,
		health_status = excluded.health_status,
		connection_stability = excluded.connection_stability,
		verified = excluded.verified,
		last_scraped_at = excluded.last_scraped_at,
		updated_at = excluded.updated_at`,
		rec.Slug, rec.Name, rec.Endpoint, rec.Category, rec.Description,
		tools, resources, prompts, protocol,
		rec.AuthRequired, envVars, rec.InstallType, rec.InstallCommand,
		rec.GitHubURL, rec.WebsiteURL, rec.License, rec.Stars,
		rec.IntelligenceScore, rec.ReliabilityScore, quality,
		tags, useCases, topics,
		rec.HealthStatus, rec.ConnectionStability, rec.Verified,
		rec.LastScrapedAt.Format(time.RFC3339), rec.CreatedAt.Format(time.RFC3339),
		rec.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return failure.New(ErrDatabase,
			failure.Message("Failed to store record"),
			failure.Context{"slug": rec.Slug, "cause": err.Error()},
		)
	}
	return nil
}

// Get returns one record by slug
func (s *Store) Get(ctx context.Context, slug string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` FROM mcps WHERE slug = ?`, slug)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return Record{}, failure.New(ErrNotFound,
			failure.Message("No stored record for slug"),
			failure.Context{"slug": slug},
		)
	}
	if err != nil {
		return Record{}, failure.Wrap(err, failure.Context{"slug": slug})
	}
	return rec, nil
}

// Search returns records whose name, description, category, or tags contain
// the query, most intelligent first. An empty query returns everything up to
// limit.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM mcps
		WHERE name LIKE ? OR description LIKE ? OR category LIKE ? OR tags LIKE ?
		ORDER BY intelligence_score DESC, name ASC
		LIMIT ?`,
		pattern, pattern, pattern, pattern, limit)
	if err != nil {
		return nil, failure.Wrap(err, failure.Context{"query": query})
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, failure.Wrap(err, failure.Context{"query": query})
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecordRun stores the stats of one crawl run under a fresh UUID
func (s *Store) RecordRun(ctx context.Context, startedAt time.Time, stats RunStats) error {
	id, err := uuid.NewV7()
	if err != nil {
		return failure.Wrap(err)
	}

	_, err = s.db.ExecContext(ctx, `
	INSERT INTO crawl_runs (id, started_at, discovered, connected, failed, stored, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), startedAt.UTC().Format(time.RFC3339),
		stats.Discovered, stats.Connected, stats.Failed, stats.Stored,
		stats.Duration.Milliseconds(),
	)
	if err != nil {
		return failure.New(ErrDatabase,
			failure.Message("Failed to record crawl run"),
			failure.Context{"cause": err.Error()},
		)
	}
	return nil
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", failure.Wrap(err)
	}
	return string(b), nil
}
