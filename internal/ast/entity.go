package ast

import "fmt"

// Kind is the declaration kind a Source Parser reports for an entity
type Kind string

const (
	KindFunctionDecl                       Kind = "FunctionDecl"
	KindFunctionTemplate                   Kind = "FunctionTemplate"
	KindMethod                             Kind = "Method"
	KindClassDecl                          Kind = "ClassDecl"
	KindStructDecl                         Kind = "StructDecl"
	KindClassTemplate                      Kind = "ClassTemplate"
	KindClassTemplatePartialSpecialization Kind = "ClassTemplatePartialSpecialization"
	KindNamespace                          Kind = "Namespace"
	KindOther                              Kind = "Other"
)

// Location is a resolved source position
type Location struct {
	File   string `json:"file"`
	Line   uint   `json:"line"`   // 1-based
	Column uint   `json:"column"` // 1-based, in bytes
	Offset uint   `json:"offset"` // 0-based byte offset
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d:%d", l.File, l.Line, l.Column, l.Offset)
}

// Entity is a node of the declaration tree produced by a Source Parser.
// Entities are borrowed from the parser session that produced them and must
// not be used after that session is closed.
type Entity interface {
	// Kind returns the declaration kind
	Kind() Kind

	// IsDefinition reports whether the entity carries a body (functions) or
	// is a complete definition (classes, namespaces)
	IsDefinition() bool

	// Name returns the unqualified display name
	Name() string

	// Children returns nested entities in source order
	Children() []Entity

	// RawLocation returns the position before macro expansion, i.e. the file
	// that textually declares the entity
	RawLocation() (Location, bool)

	// ExpansionLocation returns the position after macro expansion
	ExpansionLocation() (Location, bool)
}
