package sitemap

import (
	"fmt"
	"strings"
	"time"
)

// RenderXML renders entries as a sitemaps.org urlset. Locations are written as
// is since Build already escaped them.
func RenderXML(entries []Entry) string {
	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", entry.Location))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		if entry.Priority != "" {
			builder.WriteString(fmt.Sprintf("    <priority>%s</priority>\n", entry.Priority))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

// RenderRobots returns a robots.txt allowing everything and pointing at the
// sitemap.
func RenderRobots(prodHost string) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", trimHost(prodHost)))
	return builder.String()
}
