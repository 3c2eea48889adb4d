// Package template implements the string-template render engine used for
// notification content: `{{a.b.c}}` substitution with dotted lookups,
// `{{#if key}}` conditional blocks, and `{{#each key}}` loop blocks.
// Unresolved placeholders render as empty strings and never fail; only
// malformed template syntax (unbalanced blocks) produces an error.
package template

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// CompilationError reports malformed template syntax.
type CompilationError struct {
	Reason string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("template compilation failed: %s", e.Reason)
}

type Compiler struct{}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile renders body against data in a single pass.
func (c *Compiler) Compile(body string, data map[string]interface{}) (string, error) {
	root, err := parse(body)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	renderNodes(&out, root, []interface{}{data})
	return out.String(), nil
}

// ==========================
// Parsing
// ==========================

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeVar
	nodeIf
	nodeEach
)

type node struct {
	kind     nodeKind
	text     string // nodeText
	path     string // nodeVar, nodeIf, nodeEach
	children []node
}

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

type blockFrame struct {
	tag   string // "if" or "each"
	path  string
	nodes []node
}

func parse(body string) ([]node, error) {
	stack := []blockFrame{{}}
	rest := body

	for {
		open := strings.Index(rest, openDelim)
		if open < 0 {
			break
		}
		end := strings.Index(rest[open:], closeDelim)
		if end < 0 {
			// An unterminated tag is kept as literal text.
			break
		}

		if open > 0 {
			appendText(&stack, rest[:open])
		}

		tag := strings.TrimSpace(rest[open+len(openDelim) : open+end])
		rest = rest[open+end+len(closeDelim):]

		switch {
		case strings.HasPrefix(tag, "#if"):
			path := strings.TrimSpace(strings.TrimPrefix(tag, "#if"))
			stack = append(stack, blockFrame{tag: "if", path: path})
		case strings.HasPrefix(tag, "#each"):
			path := strings.TrimSpace(strings.TrimPrefix(tag, "#each"))
			stack = append(stack, blockFrame{tag: "each", path: path})
		case tag == "/if", tag == "/each":
			want := strings.TrimPrefix(tag, "/")
			if len(stack) == 1 {
				return nil, &CompilationError{Reason: fmt.Sprintf("unexpected {{%s}} with no open block", tag)}
			}
			top := stack[len(stack)-1]
			if top.tag != want {
				return nil, &CompilationError{Reason: fmt.Sprintf("unbalanced block: {{#%s %s}} closed by {{%s}}", top.tag, top.path, tag)}
			}
			stack = stack[:len(stack)-1]
			kind := nodeIf
			if want == "each" {
				kind = nodeEach
			}
			appendNode(&stack, node{kind: kind, path: top.path, children: top.nodes})
		case tag == "":
			// {{}} renders as nothing.
		default:
			appendNode(&stack, node{kind: nodeVar, path: tag})
		}
	}

	if rest != "" {
		appendText(&stack, rest)
	}

	if len(stack) > 1 {
		top := stack[len(stack)-1]
		return nil, &CompilationError{Reason: fmt.Sprintf("unclosed {{#%s %s}} block", top.tag, top.path)}
	}

	return stack[0].nodes, nil
}

func appendText(stack *[]blockFrame, text string) {
	appendNode(stack, node{kind: nodeText, text: text})
}

func appendNode(stack *[]blockFrame, n node) {
	frames := *stack
	frames[len(frames)-1].nodes = append(frames[len(frames)-1].nodes, n)
}

// ==========================
// Rendering
// ==========================

// scopes holds the current data context innermost-last; loop bodies push the
// element being iterated.
func renderNodes(out *strings.Builder, nodes []node, scopes []interface{}) {
	for _, n := range nodes {
		switch n.kind {
		case nodeText:
			out.WriteString(n.text)
		case nodeVar:
			out.WriteString(stringify(lookup(scopes, n.path)))
		case nodeIf:
			if truthy(lookup(scopes, n.path)) {
				renderNodes(out, n.children, scopes)
			}
		case nodeEach:
			value := lookup(scopes, n.path)
			rv := reflect.ValueOf(value)
			if value == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
				continue
			}
			for i := 0; i < rv.Len(); i++ {
				renderNodes(out, n.children, append(scopes, rv.Index(i).Interface()))
			}
		}
	}
}

func lookup(scopes []interface{}, path string) interface{} {
	segments := strings.Split(path, ".")

	for i := len(scopes) - 1; i >= 0; i-- {
		scope := scopes[i]

		if segments[0] == "this" {
			return resolve(scope, segments[1:])
		}

		if first, ok := field(scope, segments[0]); ok {
			return resolve(first, segments[1:])
		}
	}

	return nil
}

func resolve(value interface{}, segments []string) interface{} {
	for _, segment := range segments {
		next, ok := field(value, segment)
		if !ok {
			return nil
		}
		value = next
	}
	return value
}

func field(value interface{}, name string) (interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		out, ok := v[name]
		return out, ok
	case map[string]string:
		out, ok := v[name]
		return out, ok
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		entry := rv.MapIndex(reflect.ValueOf(name))
		if entry.IsValid() {
			return entry.Interface(), true
		}
	}
	return nil, false
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", value)
}
