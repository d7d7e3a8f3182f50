package models

import (
	"sort"
	"strings"
)

// FileSet is one Terraform configuration snapshot: a flat mapping of
// forward-slash relative paths to file content. The flat map is the wire
// format and the canonical in-memory form; the nested view exists only for
// display.
type FileSet map[string]string

func (fs FileSet) Copy() FileSet {
	if fs == nil {
		return nil
	}
	out := make(FileSet, len(fs))
	for path, content := range fs {
		out[path] = content
	}
	return out
}

// Paths returns every file path in lexical order.
func (fs FileSet) Paths() []string {
	paths := make([]string, 0, len(fs))
	for path := range fs {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// HasContent reports whether any file carries non-whitespace content.
func (fs FileSet) HasContent() bool {
	for _, content := range fs {
		if strings.TrimSpace(content) != "" {
			return true
		}
	}
	return false
}

// FileNode is one entry in the nested display tree. Directories carry
// children, files carry nothing but their name and full path.
type FileNode struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	Dir      bool        `json:"dir"`
	Children []*FileNode `json:"children,omitempty"`
}

// Tree builds the nested display view of the flat map. Children are sorted
// directories first, then files, both lexically.
func (fs FileSet) Tree() []*FileNode {
	root := &FileNode{Dir: true}
	index := map[string]*FileNode{"": root}

	for _, path := range fs.Paths() {
		parts := strings.Split(path, "/")
		parent := root
		for i := range parts {
			prefix := strings.Join(parts[:i+1], "/")
			node, ok := index[prefix]
			if !ok {
				node = &FileNode{
					Name: parts[i],
					Path: prefix,
					Dir:  i < len(parts)-1,
				}
				index[prefix] = node
				parent.Children = append(parent.Children, node)
			}
			parent = node
		}
	}

	sortNodes(root)
	return root.Children
}

func sortNodes(node *FileNode) {
	sort.Slice(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.Dir != b.Dir {
			return a.Dir
		}
		return a.Name < b.Name
	})
	for _, child := range node.Children {
		sortNodes(child)
	}
}
