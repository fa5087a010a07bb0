package discovery

import "github.com/cinject/cli/internal/ast"

// Class is the role an entity plays during collection
type Class int

const (
	// Ignore entities are neither collected nor descended into
	Ignore Class = iota
	// Definition entities are functions or methods with a body
	Definition
	// Container entities are complete classes, structs and namespaces
	Container
)

func (c Class) String() string {
	switch c {
	case Definition:
		return "definition"
	case Container:
		return "container"
	default:
		return "ignore"
	}
}

// Classify decides whether e is a definition site, a container of further
// definitions, or neither
func Classify(e ast.Entity) Class {
	if !e.IsDefinition() {
		return Ignore
	}

	switch e.Kind() {
	case ast.KindFunctionDecl, ast.KindFunctionTemplate, ast.KindMethod:
		return Definition
	case ast.KindClassDecl,
		ast.KindStructDecl,
		ast.KindClassTemplate,
		ast.KindClassTemplatePartialSpecialization,
		ast.KindNamespace:
		return Container
	default:
		return Ignore
	}
}
