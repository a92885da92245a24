package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// rootOverrides pin the isolated region to the sandbox origin.
var rootOverrides = map[string]string{
	"margin-top":    "0px",
	"margin-right":  "0px",
	"margin-bottom": "0px",
	"margin-left":   "0px",
	"transform":     "none",
}

// SandboxDocument wraps isolated region markup into a standalone document
// with an opaque white page.
func SandboxDocument(region string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<style>html, body { margin: 0; padding: 0; background: #ffffff; }</style>\n")
	b.WriteString("</head>\n<body style=\"margin: 0; background-color: #ffffff\">\n")
	b.WriteString(region)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// Isolate builds the sandbox document for a captured region. Every element
// gets its computed style inlined; capture-excluded elements, scripts and
// stylesheets are dropped; colors the rasterizer cannot parse are resolved
// through resolver, then converted locally, then replaced by a fallback.
func Isolate(ctx context.Context, snap *Snapshot, resolver ColorResolver, logger *slog.Logger) (string, error) {
	if snap == nil || strings.TrimSpace(snap.HTML) == "" {
		return "", fmt.Errorf("empty snapshot")
	}
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return "", fmt.Errorf("failed to parse snapshot: %w", err)
	}
	root := doc.Find("body").Children().First()
	if root.Length() == 0 {
		return "", fmt.Errorf("snapshot has no root element")
	}

	resolved := resolveSnapshotColors(ctx, snap.Styles, resolver, logger)

	doc.Find("[" + CaptureIndexAttr + "]").Each(func(_ int, el *goquery.Selection) {
		raw, _ := el.Attr(CaptureIndexAttr)
		el.RemoveAttr(CaptureIndexAttr)
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 || idx >= len(snap.Styles) {
			return
		}
		style := snap.Styles[idx]
		if el.IsSelection(root) {
			style = withOverrides(style, rootOverrides)
		}
		el.SetAttr("style", inlineStyle(style, resolved))
		el.RemoveAttr("class")
	})

	doc.Find("[" + ExcludeAttr + "], script, style, link, noscript").Remove()

	region, err := goquery.OuterHtml(root)
	if err != nil {
		return "", fmt.Errorf("failed to serialize region: %w", err)
	}
	return SandboxDocument(region), nil
}

// resolveSnapshotColors maps every unsupported color found in styles to an
// rgb() equivalent. Colors left out of the result fall back per property.
func resolveSnapshotColors(ctx context.Context, styles []map[string]string, resolver ColorResolver, logger *slog.Logger) map[string]string {
	seen := map[string]bool{}
	var tokens []string
	for _, style := range styles {
		for _, value := range style {
			for _, token := range FindUnsupportedColors(value) {
				if !seen[token] {
					seen[token] = true
					tokens = append(tokens, token)
				}
			}
		}
	}
	resolved := make(map[string]string, len(tokens))
	if len(tokens) == 0 {
		return resolved
	}
	sort.Strings(tokens)

	if resolver != nil {
		probed, err := resolver.ResolveColors(ctx, tokens)
		if err != nil {
			logger.Warn("color probe failed, converting locally", "component", "capture", "colors", len(tokens), "error", err)
		}
		for token, rgb := range probed {
			if len(FindUnsupportedColors(rgb)) == 0 && rgb != "" {
				resolved[token] = rgb
			}
		}
	}

	var fallbacks int
	for _, token := range tokens {
		if _, ok := resolved[token]; ok {
			continue
		}
		if rgb, ok := ConvertColor(token); ok {
			resolved[token] = rgb
			continue
		}
		fallbacks++
	}
	if fallbacks > 0 {
		logger.Debug("colors replaced by fallback", "component", "capture", "count", fallbacks)
	}
	return resolved
}

func withOverrides(style, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(style)+len(overrides))
	for k, v := range style {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}

// inlineStyle serializes a computed style in property order so identical
// snapshots produce identical documents.
func inlineStyle(style map[string]string, resolved map[string]string) string {
	props := make([]string, 0, len(style))
	for p, v := range style {
		if p == "" || strings.TrimSpace(v) == "" {
			continue
		}
		props = append(props, p)
	}
	sort.Strings(props)

	var b strings.Builder
	for i, p := range props {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
		b.WriteString(": ")
		b.WriteString(RewriteColors(p, style[p], resolved))
		b.WriteByte(';')
	}
	return b.String()
}
