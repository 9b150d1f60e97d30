package jexl

import (
	"strconv"
	"strings"

	"github.com/cwbudde/go-jexl/internal/ast"
)

// variablesOf walks root and returns the distinct dotted variable paths it
// references, in first-seen order: for each Reference/ArrayAccess node it
// records a path of identifier images, with constant string/int indices
// folded into the path; any other sub-expression breaks the path and is
// walked independently, rooted at its own references.
func variablesOf(root ast.Node) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(path []string) {
		if len(path) == 0 {
			return
		}
		joined := strings.Join(path, ".")
		if !seen[joined] {
			seen[joined] = true
			out = append(out, joined)
		}
	}

	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		switch v := n.(type) {
		case *ast.Identifier:
			if v.Register < 0 {
				add([]string{v.Name})
			}
			return
		case *ast.Reference:
			path, rest := referencePath(v.Parts)
			add(path)
			for _, r := range rest {
				walk(r)
			}
			return
		case *ast.ArrayAccess:
			path, rest, ok := arrayAccessPath(v)
			if ok {
				add(path)
			} else {
				walk(v.Target)
			}
			for _, r := range rest {
				walk(r)
			}
			return
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(root)
	return out
}

// referencePath splits a Reference's Parts into a leading run of plain
// identifiers (the path) and the remaining parts (method calls or other
// steps, walked independently since they are not part of a variable
// path).
func referencePath(parts []ast.Expression) (path []string, rest []ast.Node) {
	i := 0
	for ; i < len(parts); i++ {
		id, ok := parts[i].(*ast.Identifier)
		if !ok {
			break
		}
		path = append(path, id.Name)
	}
	for ; i < len(parts); i++ {
		rest = append(rest, parts[i])
	}
	return path, rest
}

// arrayAccessPath resolves `base[index]...` into a dotted path when base
// is itself an identifier or a plain reference chain and every index is a
// constant string or int literal; ok is false when the base or an index
// is a dynamic expression, in which case the caller walks the pieces
// independently instead.
func arrayAccessPath(v *ast.ArrayAccess) (path []string, rest []ast.Node, ok bool) {
	switch t := v.Target.(type) {
	case *ast.Identifier:
		path = []string{t.Name}
	case *ast.Reference:
		p, r := referencePath(t.Parts)
		if len(r) > 0 {
			return nil, append([]ast.Node{v.Target}, indexNodes(v.Indices)...), false
		}
		path = p
	default:
		return nil, append([]ast.Node{v.Target}, indexNodes(v.Indices)...), false
	}
	for _, idx := range v.Indices {
		switch lit := idx.(type) {
		case *ast.StringLit:
			path = append(path, lit.Value)
		case *ast.IntLit:
			path = append(path, strconv.FormatInt(lit.Value, 10))
		default:
			rest = append(rest, idx)
		}
	}
	return path, rest, true
}

func indexNodes(indices []ast.Expression) []ast.Node {
	out := make([]ast.Node, len(indices))
	for i, idx := range indices {
		out[i] = idx
	}
	return out
}
