package registry

// Kind tags the structural category a Shape describes (spec.md §4.4).
type Kind int

const (
	Unknown Kind = iota
	Any
	Number
	String
	Boolean
	Null
	Void
	Array
	Object
	Function
	Enum
)

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "unknown"
	case Any:
		return "any"
	case Number:
		return "number"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case Null:
		return "null"
	case Void:
		return "void"
	case Array:
		return "array"
	case Object:
		return "object"
	case Function:
		return "function"
	case Enum:
		return "enum"
	}
	return "unknown"
}

// Shape is the structural type the checker attaches to every binding and
// every module's export surface: `unknown, any, number, string, boolean,
// null, void, array{element}, object{props}, function{params, return},
// enum{name, members}` (spec.md §4.4).
type Shape struct {
	Kind Kind

	Element *Shape // Array

	Props map[string]*Shape // Object; also the export shape of a module

	// Required names the subset of Props a DepStmt override must cover:
	// the export-contributing `arg`/`env` declarations marked required with `!`
	// (spec.md §6 "validate each DepStmt's override object covers every
	// required arg of the target module found in the registry"). Object
	// only; nil means no required props (or none tracked).
	Required map[string]bool

	Params []*Shape // Function
	Return *Shape   // Function

	Name    string   // Enum
	Members []string // Enum
}

func Prim(k Kind) *Shape { return &Shape{Kind: k} }

func ArrayOf(el *Shape) *Shape { return &Shape{Kind: Array, Element: el} }

func ObjectOf(props map[string]*Shape) *Shape { return &Shape{Kind: Object, Props: props} }

// ObjectOfRequired builds an Object shape that additionally tracks which
// props a DepStmt override must cover.
func ObjectOfRequired(props map[string]*Shape, required map[string]bool) *Shape {
	return &Shape{Kind: Object, Props: props, Required: required}
}

func FuncOf(params []*Shape, ret *Shape) *Shape {
	return &Shape{Kind: Function, Params: params, Return: ret}
}

func EnumOf(name string, members []string) *Shape {
	return &Shape{Kind: Enum, Name: name, Members: members}
}

// Compatible reports whether a value of shape `actual` may be used where
// `expected` is required. `any`/`unknown` are bidirectional wildcards;
// arrays compare by element; objects compare structurally — every key
// `expected` requires must exist in `actual` and be compatible in turn
// (spec.md §4.4 "Compatibility").
func Compatible(expected, actual *Shape) bool {
	if expected == nil || actual == nil {
		return true
	}
	if expected.Kind == Any || expected.Kind == Unknown {
		return true
	}
	if actual.Kind == Any || actual.Kind == Unknown {
		return true
	}
	if expected.Kind != actual.Kind {
		return false
	}
	switch expected.Kind {
	case Array:
		return Compatible(expected.Element, actual.Element)
	case Object:
		for key, wantShape := range expected.Props {
			gotShape, ok := actual.Props[key]
			if !ok || !Compatible(wantShape, gotShape) {
				return false
			}
		}
		return true
	case Function:
		if len(expected.Params) != len(actual.Params) {
			return false
		}
		for i := range expected.Params {
			if !Compatible(expected.Params[i], actual.Params[i]) {
				return false
			}
		}
		return Compatible(expected.Return, actual.Return)
	case Enum:
		return expected.Name == actual.Name
	}
	return true
}
