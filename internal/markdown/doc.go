// Package markdown renders content bodies. Sources may open with a YAML, TOML
// or JSON frontmatter block, which is split off before goldmark converts the
// remainder to HTML.
package markdown
