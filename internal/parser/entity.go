package parser

import (
	"path/filepath"
	"strings"

	"github.com/cinject/cli/internal/ast"
	sitter "github.com/smacker/go-tree-sitter"
)

type memberMode int

const (
	itemsNone memberMode = iota
	// itemsTopLevel: translation unit or namespace body
	itemsTopLevel
	// itemsClass: class or struct body
	itemsClass
)

// otherDecls are node types exposed as ast.KindOther
var otherDecls = map[string]bool{
	"declaration":               true,
	"field_declaration":         true,
	"type_definition":           true,
	"alias_declaration":         true,
	"using_declaration":         true,
	"static_assert_declaration": true,
	"enum_specifier":            true,
	"union_specifier":           true,
	"preproc_def":               true,
	"preproc_function_def":      true,
	"friend_declaration":        true,
	"concept_definition":        true,
	"template_instantiation":    true,
	"function_definition":       true,
}

// entity is an ast.Entity backed by a tree-sitter node. Children are built on
// first use and memoized.
type entity struct {
	tu         *TranslationUnit
	file       *sourceFile
	node       *sitter.Node
	body       *sitter.Node
	nameNode   *sitter.Node
	kind       ast.Kind
	definition bool
	name       string
	members    memberMode

	children []ast.Entity
	expanded bool
}

func (e *entity) Kind() ast.Kind     { return e.kind }
func (e *entity) IsDefinition() bool { return e.definition }
func (e *entity) Name() string       { return e.name }

func (e *entity) Children() []ast.Entity {
	if e.expanded {
		return e.children
	}
	e.expanded = true
	if e.members == itemsNone {
		return nil
	}

	body := e.body
	if body == nil {
		body = e.node
	}
	b := &builder{tu: e.tu, file: e.file, inClass: e.members == itemsClass}
	b.items(body)
	e.children = b.out
	return e.children
}

// RawLocation and ExpansionLocation agree: tree-sitter does not expand macros
func (e *entity) RawLocation() (ast.Location, bool) { return e.location() }

func (e *entity) ExpansionLocation() (ast.Location, bool) { return e.location() }

func (e *entity) location() (ast.Location, bool) {
	n := e.nameNode
	if n == nil {
		n = e.node
	}
	if n == nil {
		return ast.Location{}, false
	}
	p := n.StartPoint()
	return ast.Location{
		File:   e.file.path,
		Line:   uint(p.Row) + 1,
		Column: uint(p.Column) + 1,
		Offset: uint(n.StartByte()),
	}, true
}

// builder turns the items of a declaration list into entities
type builder struct {
	tu      *TranslationUnit
	file    *sourceFile
	inClass bool
	out     []ast.Entity
}

func (b *builder) items(parent *sitter.Node) {
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		b.item(parent.NamedChild(i), nil)
	}
}

// item handles one node; tmpl is the enclosing template_declaration, if any
func (b *builder) item(n *sitter.Node, tmpl *sitter.Node) {
	switch n.Type() {
	case "preproc_include":
		b.include(n)
	case "preproc_if", "preproc_ifdef", "preproc_else", "preproc_elif", "preproc_elifdef",
		"declaration_list", "ERROR":
		b.items(n)
	case "linkage_specification":
		body := n.ChildByFieldName("body")
		if body == nil {
			return
		}
		if body.Type() == "declaration_list" {
			b.items(body)
		} else {
			b.item(body, nil)
		}
	case "template_declaration":
		b.template(n)
	case "function_definition":
		if !b.function(n, tmpl, true) {
			b.other(n)
		}
	case "declaration", "field_declaration":
		if b.function(n, tmpl, false) {
			return
		}
		if !b.record(n.ChildByFieldName("type"), tmpl) {
			b.other(n)
		}
	case "type_definition":
		if !b.record(n.ChildByFieldName("type"), nil) {
			b.other(n)
		}
	case "class_specifier", "struct_specifier":
		b.record(n, tmpl)
	case "namespace_definition":
		b.namespace(n)
	default:
		if otherDecls[n.Type()] {
			b.other(n)
		}
	}
}

func (b *builder) template(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "template_parameter_list", "requires_clause", "comment":
			continue
		}
		b.item(child, n)
	}
}

// function adds a function or method entity when n declares one
func (b *builder) function(n *sitter.Node, tmpl *sitter.Node, withBody bool) bool {
	nameNode, qualified, ok := functionName(n.ChildByFieldName("declarator"))
	if !ok {
		return false
	}

	kind := ast.KindFunctionDecl
	switch {
	case tmpl != nil:
		kind = ast.KindFunctionTemplate
	case b.inClass || qualified:
		kind = ast.KindMethod
	}

	b.out = append(b.out, &entity{
		tu:         b.tu,
		file:       b.file,
		node:       n,
		nameNode:   nameNode,
		kind:       kind,
		definition: withBody && n.ChildByFieldName("body") != nil,
		name:       b.nameText(nameNode),
	})
	return true
}

// record adds a class or struct entity when n is a class or struct specifier
func (b *builder) record(n *sitter.Node, tmpl *sitter.Node) bool {
	if n == nil {
		return false
	}

	var kind ast.Kind
	switch n.Type() {
	case "class_specifier":
		kind = ast.KindClassDecl
	case "struct_specifier":
		kind = ast.KindStructDecl
	default:
		return false
	}

	nameNode, specialized := recordName(n.ChildByFieldName("name"))
	if tmpl != nil {
		params := tmpl.ChildByFieldName("parameters")
		hasParams := params != nil && params.NamedChildCount() > 0
		switch {
		case specialized && hasParams:
			kind = ast.KindClassTemplatePartialSpecialization
		case !specialized:
			kind = ast.KindClassTemplate
		}
	}

	body := n.ChildByFieldName("body")
	e := &entity{
		tu:         b.tu,
		file:       b.file,
		node:       n,
		body:       body,
		nameNode:   nameNode,
		kind:       kind,
		definition: body != nil,
	}
	if nameNode != nil {
		e.name = nameNode.Content(b.file.content)
	}
	if body != nil {
		e.members = itemsClass
	}
	b.out = append(b.out, e)
	return true
}

func (b *builder) namespace(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	e := &entity{
		tu:         b.tu,
		file:       b.file,
		node:       n,
		body:       body,
		nameNode:   nameNode,
		kind:       ast.KindNamespace,
		definition: body != nil,
	}
	if nameNode != nil {
		e.name = nameNode.Content(b.file.content)
	}
	if body != nil {
		e.members = itemsTopLevel
	}
	b.out = append(b.out, e)
}

func (b *builder) other(n *sitter.Node) {
	b.out = append(b.out, &entity{
		tu:   b.tu,
		file: b.file,
		node: n,
		kind: ast.KindOther,
	})
}

// include splices the top-level items of a resolved header, once per
// translation unit
func (b *builder) include(n *sitter.Node) {
	inc, ok := parseInclude(n, b.file.content)
	if !ok {
		return
	}
	path, ok := b.tu.resolved[includeKey{dir: filepath.Dir(b.file.path), includeDirective: inc}]
	if !ok || b.tu.included[path] {
		return
	}
	header, ok := b.tu.files[path]
	if !ok {
		return
	}
	b.tu.included[path] = true

	hb := &builder{tu: b.tu, file: header, inClass: b.inClass}
	hb.items(header.tree.RootNode())
	b.out = append(b.out, hb.out...)
}

func (b *builder) nameText(n *sitter.Node) string {
	text := n.Content(b.file.content)
	if n.Type() == "operator_cast" {
		if i := strings.IndexByte(text, '('); i > 0 {
			text = strings.TrimSpace(text[:i])
		}
	}
	return text
}

// functionName follows a declarator chain down to the function's name. It
// fails for anything that is not a function, including pointers to functions.
func functionName(d *sitter.Node) (*sitter.Node, bool, bool) {
	for d != nil {
		switch d.Type() {
		case "function_declarator":
			inner := d.ChildByFieldName("declarator")
			if inner == nil || inner.Type() == "parenthesized_declarator" {
				return nil, false, false
			}
			name, qualified := unqualified(inner)
			return name, qualified, name != nil
		case "operator_cast":
			return d, false, true
		case "pointer_declarator", "reference_declarator", "attributed_declarator", "init_declarator":
			d = innerDeclarator(d)
		default:
			return nil, false, false
		}
	}
	return nil, false, false
}

func innerDeclarator(d *sitter.Node) *sitter.Node {
	if inner := d.ChildByFieldName("declarator"); inner != nil {
		return inner
	}
	for i := 0; i < int(d.NamedChildCount()); i++ {
		c := d.NamedChild(i)
		if strings.HasSuffix(c.Type(), "declarator") {
			return c
		}
	}
	return nil
}

// unqualified strips scopes and template arguments from a name
func unqualified(n *sitter.Node) (*sitter.Node, bool) {
	qualified := false
	for n != nil {
		switch n.Type() {
		case "qualified_identifier":
			qualified = true
			n = n.ChildByFieldName("name")
		case "template_function", "template_method":
			n = n.ChildByFieldName("name")
		default:
			return n, qualified
		}
	}
	return nil, qualified
}

// recordName returns the plain class name and whether it carries template
// arguments, as in a specialization
func recordName(n *sitter.Node) (*sitter.Node, bool) {
	if n == nil {
		return nil, false
	}
	n, _ = unqualified(n)
	if n != nil && n.Type() == "template_type" {
		return n.ChildByFieldName("name"), true
	}
	return n, false
}
