// ABOUTME: Helpers for YAML-frontmatter markdown files used by MarkdownStore.
// ABOUTME: Decoding via adrg/frontmatter, yaml.v3 rendering, atomic writes and slugs.

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const frontmatterDelim = "---"

// errNoFrontmatter marks a markdown file that has no frontmatter block.
var errNoFrontmatter = errors.New("no frontmatter")

// yamlFrontmatter decodes with yaml.v3 so reads and writes share one codec.
var yamlFrontmatter = frontmatter.NewFormat(frontmatterDelim, frontmatterDelim, yaml.Unmarshal)

// ensureDir creates dir and any parents with owner-only permissions.
func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0750)
}

// decodeFrontmatter decodes the YAML frontmatter of content into fm and
// returns the body that follows it.
func decodeFrontmatter(content []byte, fm any) (string, error) {
	body, err := frontmatter.MustParse(bytes.NewReader(content), fm, yamlFrontmatter)
	if errors.Is(err, frontmatter.ErrNotFound) {
		return "", errNoFrontmatter
	}
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// renderFrontmatter encodes fm as YAML between delimiters followed by body.
func renderFrontmatter(fm any, body string) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(frontmatterDelim + "\n")
	sb.Write(buf.Bytes())
	sb.WriteString(frontmatterDelim + "\n")
	sb.WriteString(body)
	return sb.String(), nil
}

// atomicWrite writes data to a temp file in the target directory and renames
// it into place.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := ensureDir(dir); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("set file permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// slugify lowercases s and collapses every run of non-alphanumerics into a
// single hyphen.
func slugify(s string) string {
	var sb strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			sb.WriteRune('-')
			lastHyphen = true
		}
	}
	slug := strings.TrimSuffix(sb.String(), "-")
	if slug == "" {
		return "untitled"
	}
	return slug
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
