// Package patch prepares pull-request diffs for review: it decides
// which changed files are safe and relevant to analyze, scrubs
// secret-shaped spans from their patches, and assembles the bounded
// payload handed to the model.
package patch

import (
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"

	"github.com/tildaslashalef/reviewgate/internal/loggy"
)

// File is one changed file as reported by the hosting provider
type File struct {
	Path  string
	Patch string
}

// Decision is the classifier's verdict for one path
type Decision struct {
	Included bool
	Reason   string // set when excluded
	Language string // detected language when included
}

// sensitiveSegments excludes a path when any of its segments matches,
// case-insensitively. Segment matching, not substring matching, so a
// file like "build_info.go" is not caught by "build".
var sensitiveSegments = map[string]string{
	".git":         "version control internals",
	".svn":         "version control internals",
	".hg":          "version control internals",
	".ssh":         "secret directory",
	".gnupg":       "secret directory",
	".aws":         "secret directory",
	"secrets":      "secret directory",
	"secret":       "secret directory",
	"credentials":  "secret directory",
	"vendor":       "vendored dependencies",
	"node_modules": "vendored dependencies",
	"dist":         "build output",
	"build":        "build output",
	"target":       "build output",
	".netrc":       "credential file",
	".npmrc":       "credential file",
	".pgpass":      "credential file",
	".htpasswd":    "credential file",
}

// sensitiveExtensions excludes private-key material by extension
var sensitiveExtensions = map[string]string{
	".pem": "private key material",
	".key": "private key material",
	".p12": "private key material",
	".pfx": "private key material",
	".jks": "private key material",
}

// lockfiles are generated dependency manifests with no review value
var lockfiles = map[string]struct{}{
	"package-lock.json": {},
	"yarn.lock":         {},
	"pnpm-lock.yaml":    {},
	"gemfile.lock":      {},
	"poetry.lock":       {},
	"cargo.lock":        {},
	"composer.lock":     {},
	"go.sum":            {},
}

// allowedExtensions is the explicit inclusion list; everything not on
// it (or in allowedBasenames) is excluded by default.
var allowedExtensions = map[string]struct{}{
	".go": {}, ".ts": {}, ".tsx": {}, ".js": {}, ".jsx": {}, ".mjs": {},
	".py": {}, ".rb": {}, ".java": {}, ".kt": {}, ".rs": {}, ".swift": {},
	".c": {}, ".h": {}, ".cpp": {}, ".hpp": {}, ".cc": {}, ".cs": {},
	".php": {}, ".scala": {}, ".ex": {}, ".exs": {}, ".erl": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".ps1": {},
	".sql": {}, ".proto": {}, ".graphql": {},
	".html": {}, ".css": {}, ".scss": {}, ".vue": {}, ".svelte": {},
	".json": {}, ".yaml": {}, ".yml": {}, ".toml": {}, ".ini": {}, ".cfg": {},
	".md": {}, ".txt": {}, ".xml": {}, ".tf": {}, ".gradle": {}, ".mk": {},
}

// allowedBasenames admits well-known extensionless build files
var allowedBasenames = map[string]struct{}{
	"makefile":       {},
	"dockerfile":     {},
	"jenkinsfile":    {},
	"rakefile":       {},
	"cmakelists.txt": {},
	"go.mod":         {},
}

// Classifier decides whether a changed file is analyzed at all
type Classifier struct {
	logger *loggy.Logger
}

// NewClassifier creates a new Classifier
func NewClassifier(logger *loggy.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify returns the inclusion decision for one path. Exclusions are
// logged with their reason for audit.
func (c *Classifier) Classify(path string) Decision {
	if d, excluded := exclude(path); excluded {
		c.logger.Info("file excluded from review", "path", path, "reason", d.Reason)
		return d
	}

	base := strings.ToLower(filepath.Base(path))
	ext := strings.ToLower(filepath.Ext(path))

	_, extOK := allowedExtensions[ext]
	_, baseOK := allowedBasenames[base]
	if !extOK && !baseOK {
		d := Decision{Reason: "file type not on the allow-list"}
		c.logger.Info("file excluded from review", "path", path, "reason", d.Reason)
		return d
	}

	return Decision{
		Included: true,
		Language: enry.GetLanguage(filepath.Base(path), nil),
	}
}

// exclude applies the sensitive-pattern rules, which win over the
// extension allow-list.
func exclude(path string) (Decision, bool) {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, segment := range strings.Split(normalized, "/") {
		segment = strings.ToLower(segment)
		if segment == "" {
			continue
		}
		if reason, ok := sensitiveSegments[segment]; ok {
			return Decision{Reason: reason}, true
		}
		if _, ok := lockfiles[segment]; ok {
			return Decision{Reason: "dependency lockfile"}, true
		}
		// Credential dotfiles such as .env, .env.local
		if segment == ".env" || strings.HasPrefix(segment, ".env.") {
			return Decision{Reason: "environment credential file"}, true
		}
	}

	ext := strings.ToLower(filepath.Ext(normalized))
	if reason, ok := sensitiveExtensions[ext]; ok {
		return Decision{Reason: reason}, true
	}

	return Decision{}, false
}
