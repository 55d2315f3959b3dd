// Package staticdata parses and regenerates the `.static` data-only file
// format: a declaration list with no executable constructs, compiled to a
// plain `export const …` JavaScript module (spec.md §4.3/§6).
package staticdata

// Kind tags the five shapes a parsed value can take.
type Kind int

const (
	KindArray Kind = iota
	KindObject
	KindEnum
	KindLiteral
	KindReference
)

// LitType distinguishes a Literal node's payload.
type LitType int

const (
	LitString LitType = iota
	LitNumber
	LitBool
)

// EnumMember is one `Name = value` pair inside a backtick-delimited enum
// shorthand block.
type EnumMember struct {
	Name  string
	Value *Node
}

// Node is the tagged tree StaticLoader produces: Array{Values}, Object{Keys,
// Props}, Enum{Members}, Literal{LitType,...}, Reference{Path} — each
// carrying Secret (spec.md §4.3). The root of a parsed file is always a
// KindObject node whose Keys are the declaration names in source order.
type Node struct {
	Kind   Kind
	Secret bool

	Keys  []string
	Props map[string]*Node

	Values []*Node

	Members []EnumMember

	LitType LitType
	Str     string
	Num     string
	Bool    bool

	Path []string
}
