package analysis

import "strings"

// categoryKeywords map storage categories to the words implying them. The
// first matching category wins, so order is part of the contract.
var categoryKeywords = []tagMapping{
	{"databases", []string{"database", "postgres", "mysql", "mongodb", "sql", "sqlite"}},
	{"payments", []string{"payment", "stripe", "paypal", "billing", "invoice"}},
	{"ai-tools", []string{"openai", "anthropic", "gpt", "claude", "ai", "llm", "ml"}},
	{"development-tools", []string{"git", "github", "code", "dev", "build", "test"}},
	{"cloud-storage", []string{"s3", "storage", "bucket", "drive", "dropbox"}},
	{"messaging", []string{"slack", "discord", "teams", "chat", "message"}},
	{"content-creation", []string{"content", "generate", "create", "write"}},
	{"monitoring", []string{"monitor", "metric", "log", "trace", "alert"}},
	{"project-management", []string{"project", "task", "jira", "trello"}},
	{"security", []string{"auth", "security", "token", "permission", "oauth"}},
	{"automation", []string{"automate", "workflow", "trigger", "schedule"}},
	{"social-media", []string{"twitter", "facebook", "instagram", "social"}},
	{"web-apis", []string{"api", "rest", "http", "web", "request", "search", "brave"}},
	{"productivity", []string{"calendar", "note", "document", "office"}},
	{"infrastructure", []string{"deploy", "server", "cloud", "aws", "azure"}},
	{"media-processing", []string{"image", "video", "audio", "media", "ffmpeg"}},
	{"finance", []string{"finance", "bank", "investment", "trading"}},
	{"communication", []string{"email", "sms", "call", "notify"}},
	{"research", []string{"research", "academic", "paper", "science"}},
	{"iot", []string{"iot", "sensor", "device", "smart", "home"}},
}

// defaultCategory is used when nothing matches
const defaultCategory = "web-apis"

// category picks the storage category for a package from its name,
// description, and tags
func category(name, description string, tags []string) string {
	text := strings.ToLower(name + " " + description + " " + strings.Join(tags, " "))

	for _, m := range categoryKeywords {
		if containsAny(text, m.indicators) {
			return m.tag
		}
	}
	return defaultCategory
}
