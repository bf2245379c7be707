// Package registry discovers Model Context Protocol server packages on the
// npm registry and fetches their metadata.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/e14z/mcpcrawl/cache"
	"github.com/e14z/mcpcrawl/log"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

const (
	// DefaultBaseURL is the public npm registry endpoint
	DefaultBaseURL = "https://registry.npmjs.org"

	// searchPageSize is the page size of the registry search API
	searchPageSize = 20

	// maxSearchPages bounds discovery regardless of the requested limit
	maxSearchPages = 3
)

// Package is the enriched metadata for one npm package. The slug doubles as
// the storage key; it is simply the package name.
type Package struct {
	Name                string    `json:"name"`
	Slug                string    `json:"slug"`
	Description         string    `json:"description"`
	DetailedDescription string    `json:"detailed_description,omitempty"`
	Keywords            []string  `json:"keywords,omitempty"`
	License             string    `json:"license,omitempty"`
	Homepage            string    `json:"homepage,omitempty"`
	GitHubURL           string    `json:"github_url,omitempty"`
	Readme              string    `json:"readme,omitempty"`
	LatestVersion       string    `json:"latest_version,omitempty"`
	WeeklyDownloads     int       `json:"weekly_downloads"`
	MonthlyDownloads    int       `json:"monthly_downloads"`
	Created             time.Time `json:"created,omitempty"`
	Modified            time.Time `json:"modified,omitempty"`
}

// LaunchCommand returns the command used to run the package as a local MCP
// server
func (p Package) LaunchCommand() string {
	return "npx " + p.Name
}

// InstallType returns the installation flavor of the package
func (p Package) InstallType() string {
	return "npm"
}

// Client talks to the npm registry with file-cache support
type Client struct {
	// BaseURL overrides DefaultBaseURL, mainly for tests
	BaseURL string

	// HTTPClient defaults to http.DefaultClient
	HTTPClient *http.Client

	// ForceUpdate bypasses the response cache
	ForceUpdate bool

	cache *cache.Cache[string]
}

// NewClient creates a registry client backed by the default response cache
func NewClient() *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		cache:   cache.New[string]("registry"),
	}
}

type searchResponse struct {
	Objects []struct {
		Package struct {
			Name        string   `json:"name"`
			Description string   `json:"description"`
			Keywords    []string `json:"keywords"`
		} `json:"package"`
		Downloads struct {
			Weekly  int `json:"weekly"`
			Monthly int `json:"monthly"`
		} `json:"downloads"`
	} `json:"objects"`
	Total int `json:"total"`
}

// Discover searches the registry for MCP packages sorted by monthly
// downloads and returns up to limit of them with full metadata. Packages
// whose metadata fetch fails are kept with the search-level fields only.
func (c *Client) Discover(ctx context.Context, limit int) ([]Package, error) {
	if limit <= 0 {
		return []Package{}, nil
	}

	pages := min(maxSearchPages, limit/searchPageSize+1)
	packages := make([]Package, 0, limit)

	for page := 0; page < pages && len(packages) < limit; page++ {
		url := fmt.Sprintf("%s/-/v1/search?text=mcp&size=%d&from=%d&sortBy=downloads_monthly",
			c.baseURL(), searchPageSize, page*searchPageSize)

		body, err := c.getCached(ctx, url)
		if err != nil {
			return nil, err
		}

		var result searchResponse
		if err := json.Unmarshal([]byte(body), &result); err != nil {
			return nil, failure.Wrap(err, failure.Context{"url": url})
		}

		for _, obj := range result.Objects {
			if len(packages) >= limit {
				break
			}
			if !likelyMCP(obj.Package.Name, obj.Package.Description, obj.Package.Keywords) {
				continue
			}

			pkg, err := c.Metadata(ctx, obj.Package.Name)
			if err != nil {
				log.Warn("Metadata fetch failed, keeping search-level fields",
					"package", obj.Package.Name, "error", err)
				pkg = Package{
					Name:        obj.Package.Name,
					Slug:        obj.Package.Name,
					Description: obj.Package.Description,
					Keywords:    obj.Package.Keywords,
				}
			}
			pkg.WeeklyDownloads = obj.Downloads.Weekly
			pkg.MonthlyDownloads = obj.Downloads.Monthly
			packages = append(packages, pkg)
		}
	}

	log.Info("Discovered MCP packages", "count", len(packages))
	return packages, nil
}

// packument is the registry's full package document
type packument struct {
	Name     string                 `json:"name"`
	DistTags map[string]string      `json:"dist-tags"`
	Versions map[string]versionInfo `json:"versions"`
	Readme   string                 `json:"readme"`
	Time     map[string]time.Time   `json:"time"`
}

type versionInfo struct {
	Description string          `json:"description"`
	Homepage    string          `json:"homepage"`
	Keywords    []string        `json:"keywords"`
	License     json.RawMessage `json:"license"`
	Repository  json.RawMessage `json:"repository"`
}

// Metadata fetches the full package document for one package
func (c *Client) Metadata(ctx context.Context, name string) (Package, error) {
	url := c.baseURL() + "/" + name

	body, err := c.getCached(ctx, url)
	if err != nil {
		return Package{}, err
	}

	var doc packument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Package{}, failure.Wrap(err, failure.Context{"pkg": name})
	}

	latest := doc.DistTags["latest"]
	version := doc.Versions[latest]

	return Package{
		Name:                name,
		Slug:                name,
		Description:         version.Description,
		DetailedDescription: version.Description,
		Keywords:            version.Keywords,
		License:             licenseString(version.License),
		Homepage:            version.Homepage,
		GitHubURL:           githubURL(repositoryURL(version.Repository)),
		Readme:              doc.Readme,
		LatestVersion:       latest,
		Created:             doc.Time["created"],
		Modified:            doc.Time["modified"],
	}, nil
}

// getCached fetches a URL through the response cache
func (c *Client) getCached(ctx context.Context, url string) (string, error) {
	return c.cacheInstance().GetOrSet(url, func() (string, error) {
		return c.get(ctx, url)
	}, c.ForceUpdate)
}

func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", failure.Wrap(err)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", failure.New(ErrRegistryUnavailable,
			failure.Message("Failed to reach the npm registry"),
			failure.Context{"url": url, "cause": err.Error()},
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", failure.New(ErrPackageNotFound,
			failure.Message("Package not found on the npm registry"),
			failure.Context{"url": url},
		)
	}
	if resp.StatusCode != http.StatusOK {
		return "", failure.New(ErrRegistryUnavailable,
			failure.Message("Unexpected response from the npm registry"),
			failure.Context{"url": url, "status": resp.Status},
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", failure.Wrap(err, failure.Context{"url": url})
	}
	return string(body), nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

// SetCacheDir moves the response cache, mainly for tests
func (c *Client) SetCacheDir(dir string) error {
	return c.cacheInstance().SetDir(dir)
}

func (c *Client) cacheInstance() *cache.Cache[string] {
	if c.cache == nil {
		c.cache = cache.New[string]("registry")
	}
	return c.cache
}

// likelyMCP filters search results down to packages that plausibly are MCP
// servers
func likelyMCP(name, description string, keywords []string) bool {
	name = strings.ToLower(name)
	description = strings.ToLower(description)

	if strings.Contains(name, "mcp") {
		return true
	}
	if strings.Contains(name, "model-context-protocol") || strings.Contains(description, "model-context-protocol") {
		return true
	}
	if lo.Contains(keywords, "claude") || lo.Contains(keywords, "anthropic") || lo.Contains(keywords, "mcp-server") {
		return true
	}
	return lo.SomeBy(keywords, func(kw string) bool {
		return strings.Contains(strings.ToLower(kw), "mcp")
	})
}

var githubPathPattern = regexp.MustCompile(`github\.com[:/]([^/\s]+/[^/\s#?]+?)(?:\.git|/|$)`)

// githubURL normalizes a repository URL to a browsable GitHub URL. URLs
// pointing elsewhere are kept as-is when browsable, dropped otherwise.
func githubURL(repoURL string) string {
	if repoURL == "" {
		return ""
	}
	if m := githubPathPattern.FindStringSubmatch(repoURL); m != nil {
		return "https://github.com/" + m[1]
	}
	if strings.HasPrefix(repoURL, "http") {
		return repoURL
	}
	return ""
}

// repositoryURL extracts the URL from a repository field, which the registry
// serves either as a bare string or as {type, url}
func repositoryURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.URL
	}
	return ""
}

// licenseString extracts the license name, which old packages serve as
// {type, url} instead of a bare string
func licenseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Type
	}
	return ""
}
