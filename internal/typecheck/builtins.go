package typecheck

import "github.com/oxhq/kimchilang/internal/registry"

// builtinWhitelist is the small set of globals an unresolved identifier is
// allowed to reference without raising an undefined-identifier error
// (spec.md §6).
var builtinWhitelist = map[string]bool{}

func init() {
	for _, name := range []string{
		"console", "Math", "JSON", "Object", "Array", "String", "Number",
		"Boolean", "Date", "Promise", "fetch", "setTimeout", "setInterval",
		"clearTimeout", "clearInterval", "parseInt", "parseFloat", "isNaN",
		"isFinite", "encodeURI", "decodeURI", "encodeURIComponent",
		"decodeURIComponent", "Error", "TypeError", "RangeError",
		"SyntaxError", "RegExp", "Map", "Set", "WeakMap", "WeakSet",
		"Symbol", "Proxy", "Reflect", "Intl", "undefined", "null", "NaN",
		"Infinity", "globalThis", "process", "Buffer", "require", "module",
		"exports", "__dirname", "__filename", "_pipe", "_range",
		"_deepFreeze", "true", "false",
	} {
		builtinWhitelist[name] = true
	}
}

func isBuiltin(name string) bool { return builtinWhitelist[name] }

// builtinMethodShape returns the return shape of a well-known array/string
// method (or the `length` property), as specified by spec.md §4.4: "map →
// array{unknown}, filter → self, find → element, some/every → boolean,
// join → string, length → number, etc." Reports false when name isn't one
// of these, so the caller falls back to ordinary member-shape resolution.
func builtinMethodShape(receiver *registry.Shape, name string) (*registry.Shape, bool) {
	if receiver == nil {
		return nil, false
	}
	switch name {
	case "length":
		return registry.Prim(registry.Number), true
	case "map":
		return registry.ArrayOf(registry.Prim(registry.Unknown)), true
	case "filter":
		return receiver, true
	case "find":
		if receiver.Kind == registry.Array && receiver.Element != nil {
			return receiver.Element, true
		}
		return registry.Prim(registry.Unknown), true
	case "some", "every", "includes", "isEmpty", "isBlank":
		return registry.Prim(registry.Boolean), true
	case "join", "toLines", "capitalize", "first", "last":
		return registry.Prim(registry.String), true
	case "sum", "product", "average", "max", "min":
		return registry.Prim(registry.Number), true
	case "take", "drop", "flatten", "unique", "toChars":
		return receiver, true
	}
	return nil, false
}

// isBuiltinMethodName reports whether name is one of the builtin
// array/string helpers, independent of call-site receiver shape — used to
// suppress the missing-property rule for unknown-shaped or primitive
// receivers where no Props map exists to check against.
func isBuiltinMethodName(name string) bool {
	switch name {
	case "length", "map", "filter", "find", "some", "every", "includes",
		"isEmpty", "isBlank", "join", "toLines", "capitalize", "first",
		"last", "sum", "product", "average", "max", "min", "take", "drop",
		"flatten", "unique", "toChars", "forEach", "reduce", "push", "pop",
		"slice", "concat", "indexOf", "reverse", "sort", "split", "replace",
		"trim", "toUpperCase", "toLowerCase", "padStart", "padEnd",
		"startsWith", "endsWith", "repeat":
		return true
	}
	return false
}
