package swagger

import (
	"fmt"
	"strings"
)

// pathMacro is a named path-segment constraint: {id:uuid}.
type pathMacro struct {
	pattern string
	typ     string
	format  string
}

// pathMacros maps macro names to their regex and the parameter type they
// imply.
var pathMacros = map[string]pathMacro{
	"uuid":     {`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`, "string", "uuid"},
	"int":      {`[0-9]+`, "integer", ""},
	"float":    {`[0-9]*\.?[0-9]+`, "number", ""},
	"slug":     {`[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`, "string", ""},
	"alpha":    {`[a-zA-Z]+`, "string", ""},
	"alphanum": {`[a-zA-Z0-9]+`, "string", ""},
	"date":     {`[0-9]{4}-[0-9]{2}-[0-9]{2}`, "string", "date"},
	"hex":      {`[0-9a-fA-F]+`, "string", ""},
	"domain":   {`(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`, "string", "hostname"},
}

// PathTemplate is a normalized path with its template variables.
type PathTemplate struct {
	// Path is absolute, has no empty segments and no trailing slash unless
	// it is exactly "/". Variables appear as {name}.
	Path string

	// Vars lists the template variable names in order of appearance.
	Vars []string

	// Patterns holds the regex constraint captured for each constrained
	// variable. Macro constraints are expanded to their regex.
	Patterns map[string]string

	// Macros holds the macro name for variables constrained by a macro.
	Macros map[string]string
}

// JoinPath concatenates a parent prefix, a service path and a method path.
// It reports false when neither the service nor the method declares a path,
// in which case the method is not an exposed route.
func JoinPath(prefix, servicePath, methodPath string) (string, bool) {
	if servicePath == "" && methodPath == "" {
		return "", false
	}

	var b strings.Builder
	if prefix != "" && prefix != "/" {
		if !strings.HasPrefix(prefix, "/") {
			b.WriteByte('/')
		}
		b.WriteString(strings.TrimSuffix(prefix, "/"))
	}
	b.WriteString(servicePath)

	if methodPath != "" && methodPath != "/" {
		if !strings.HasPrefix(methodPath, "/") && !strings.HasSuffix(b.String(), "/") {
			b.WriteByte('/')
		}
		b.WriteString(strings.TrimSuffix(methodPath, "/"))
	}

	out := b.String()
	if !strings.HasPrefix(out, "/") {
		out = "/" + out
	}
	if len(out) > 1 && strings.HasSuffix(out, "/") {
		out = out[:len(out)-1]
	}
	return out, true
}

// ParsePath normalizes a raw path and extracts its variables. Constrained
// variables ({name:regex} or {name:macro}) are rewritten to {name} and the
// constraint is recorded in Patterns. Empty segments are collapsed:
//
//	"//a/{id:[0-9]+}/" -> "/a/{id}", Patterns{"id": "[0-9]+"}
//
// Normalizing an already normalized path returns it unchanged.
func ParsePath(raw string) (PathTemplate, error) {
	idxs, err := braceIndices(raw)
	if err != nil {
		return PathTemplate{}, err
	}

	tpl := PathTemplate{
		Patterns: make(map[string]string),
		Macros:   make(map[string]string),
	}

	var (
		b   strings.Builder
		end int
	)
	for i := 0; i < len(idxs); i += 2 {
		b.WriteString(raw[end:idxs[i]])
		end = idxs[i+1]

		name, pattern, constrained := strings.Cut(raw[idxs[i]+1:end-1], ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return PathTemplate{}, fmt.Errorf("missing variable name in %q from %q", raw[idxs[i]:end], raw)
		}
		if strings.Contains(name, "/") {
			return PathTemplate{}, fmt.Errorf("variable %q in %q contains a slash", name, raw)
		}

		if constrained && pattern != "" {
			if m, ok := pathMacros[pattern]; ok {
				tpl.Macros[name] = pattern
				pattern = m.pattern
			}
			tpl.Patterns[name] = pattern
		}

		tpl.Vars = append(tpl.Vars, name)
		b.WriteString("{" + name + "}")
	}
	b.WriteString(raw[end:])

	if err := checkDuplicateVars(tpl.Vars); err != nil {
		return PathTemplate{}, err
	}

	tpl.Path = collapseSlashes(b.String())
	return tpl, nil
}

// NormalizePath returns the visible template of raw. See ParsePath.
func NormalizePath(raw string) (string, error) {
	tpl, err := ParsePath(raw)
	if err != nil {
		return "", err
	}
	return tpl.Path, nil
}

func collapseSlashes(p string) string {
	var b strings.Builder
	for seg := range strings.SplitSeq(p, "/") {
		if seg == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(seg)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// validPath reports whether p satisfies the normalized path shape.
func validPath(p string) bool {
	if p == "/" {
		return true
	}
	if !strings.HasPrefix(p, "/") || strings.HasSuffix(p, "/") || strings.Contains(p, "//") {
		return false
	}
	idxs, err := braceIndices(p)
	if err != nil {
		return false
	}
	for i := 0; i < len(idxs); i += 2 {
		if strings.ContainsAny(p[idxs[i]+1:idxs[i+1]-1], ":{}") {
			return false
		}
	}
	return true
}

// braceIndices returns the first level curly brace indices from a string.
// It returns an error in case of unbalanced braces.
func braceIndices(s string) ([]int, error) {
	var (
		idxs  []int
		level int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			if level++; level == 1 {
				idxs = append(idxs, i)
			}
		case '}':
			if level--; level == 0 {
				idxs = append(idxs, i+1)
			} else if level < 0 {
				return nil, fmt.Errorf("unbalanced braces in %q", s)
			}
		}
	}
	if level != 0 {
		return nil, fmt.Errorf("unbalanced braces in %q", s)
	}
	return idxs, nil
}

// checkDuplicateVars returns an error if any variable name is repeated.
func checkDuplicateVars(vars []string) error {
	seen := make(map[string]bool, len(vars))
	for _, v := range vars {
		if seen[v] {
			return fmt.Errorf("duplicated path variable %q", v)
		}
		seen[v] = true
	}
	return nil
}
