package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-flatcms"
)

type treeStyles struct {
	dir   lipgloss.Style
	file  lipgloss.Style
	muted lipgloss.Style
}

func defaultTreeStyles() treeStyles {
	return treeStyles{
		dir:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		file:  lipgloss.NewStyle(),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
}

func renderTree(root *flatcms.DirTree, styles treeStyles) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	name := root.RelativePath
	if name == "" {
		name = "/"
	}
	b.WriteString(styles.dir.Render(name + "/"))
	b.WriteString("\n")
	renderChildren(&b, root, "", styles)

	stats := root.Stats()
	b.WriteString(styles.muted.Render(fmt.Sprintf("%d directories, %d files", stats.Directories, stats.Files)))
	b.WriteString("\n")
	return b.String()
}

func renderChildren(b *strings.Builder, node *flatcms.DirTree, indent string, styles treeStyles) {
	dirs := node.SortedDirectoryNames()
	files := node.SortedFileNames()
	total := len(dirs) + len(files)
	i := 0
	for _, name := range dirs {
		i++
		branch, next := branches(indent, i == total)
		b.WriteString(styles.muted.Render(branch))
		b.WriteString(styles.dir.Render(name + "/"))
		b.WriteString("\n")
		renderChildren(b, node.Directories[name], next, styles)
	}
	for _, name := range files {
		i++
		branch, _ := branches(indent, i == total)
		meta := node.Files[name]
		b.WriteString(styles.muted.Render(branch))
		b.WriteString(styles.file.Render(name))
		b.WriteString(styles.muted.Render(fmt.Sprintf("  %d B  %s", meta.Size, meta.Modified.UTC().Format("2006-01-02 15:04"))))
		b.WriteString("\n")
	}
}

func branches(indent string, last bool) (string, string) {
	if last {
		return indent + "└── ", indent + "    "
	}
	return indent + "├── ", indent + "│   "
}
