// Package linkgraph implements the wiki-link extractor described in
// spec.md §4.4, grounded on original_source/src-tauri/src/graph/mod.rs's
// extract_wikilinks/split_slug_alias/slug_before_heading — translated from
// the Rust line-scanner into an idiomatic Go state machine, not transliterated
// statement-for-statement.
package linkgraph

import (
	"strings"

	"github.com/mtreilly/mdkb/internal/store"
)

// Link is one extracted wiki-link occurrence.
type Link = store.ExtractedLink

// Extract scans a document body line-by-line and returns every resolved
// wiki-link in source order, per spec.md §4.4's state machine:
//   - fenced code blocks (``` or ~~~ opening/closing an entire line) are
//     skipped entirely;
//   - inline backtick spans within a non-fenced line are stripped before
//     scanning;
//   - [[...]] pairs are matched non-nesting, left-to-right;
//   - the inner text splits at the first '|' into slug/alias;
//   - a trailing #heading suffix is stripped from the slug;
//   - empty slugs are ignored.
func Extract(body string) []Link {
	var links []Link
	inFence := false

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if isFenceDelimiter(trimmed) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		stripped := stripInlineCode(line)
		for _, slug := range extractBrackets(stripped) {
			if slug == "" {
				continue
			}
			links = append(links, Link{Slug: slug, LineStart: lineNo, LineEnd: lineNo})
		}
	}
	return links
}

func isFenceDelimiter(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// stripInlineCode removes paired single-backtick spans from a line, leaving
// everything else intact so bracket scanning never sees code-quoted text.
func stripInlineCode(line string) string {
	var b strings.Builder
	inSpan := false
	for _, r := range line {
		if r == '`' {
			inSpan = !inSpan
			continue
		}
		if !inSpan {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// extractBrackets finds non-nesting [[...]] pairs left-to-right and returns
// the resolved slug (alias and heading suffix stripped) for each.
func extractBrackets(line string) []string {
	var slugs []string
	for {
		start := strings.Index(line, "[[")
		if start < 0 {
			break
		}
		end := strings.Index(line[start+2:], "]]")
		if end < 0 {
			break
		}
		inner := line[start+2 : start+2+end]
		slugs = append(slugs, resolveSlug(inner))
		line = line[start+2+end+2:]
	}
	return slugs
}

// resolveSlug splits "slug | alias" at the first '|' (alias may itself
// contain '|') and strips any trailing "#heading" suffix from the slug.
func resolveSlug(inner string) string {
	slug := inner
	if idx := strings.Index(inner, "|"); idx >= 0 {
		slug = inner[:idx]
	}
	if idx := strings.Index(slug, "#"); idx >= 0 {
		slug = slug[:idx]
	}
	return strings.TrimSpace(slug)
}
