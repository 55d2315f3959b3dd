package staticdata

import (
	"fmt"
	"strconv"
	"strings"
)

const secretHelper = `class _Secret {
  constructor(value) { this._value = value; }
  toString() { return "********"; }
  valueOf() { return this._value; }
}
function _secret(value) { return new _Secret(value); }
`

// Generate renders a parsed `.static` tree back to a JS module: a header
// comment, the `_Secret` helper when any declaration needs it, then one
// `export const Name = …;` per declaration in source order (spec.md §6).
func Generate(n *Node, modulePath string) (string, error) {
	if n == nil || n.Kind != KindObject {
		return "", fmt.Errorf("staticdata: Generate requires a root object node")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated from static data for module %q. DO NOT EDIT.\n\n", modulePath)
	if needsSecretHelper(n) {
		b.WriteString(secretHelper)
		b.WriteString("\n")
	}
	for _, key := range n.Keys {
		val, err := renderValue(n.Props[key])
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "export const %s = %s;\n", key, val)
	}
	return b.String(), nil
}

func needsSecretHelper(n *Node) bool {
	if n == nil {
		return false
	}
	if n.Secret {
		return true
	}
	switch n.Kind {
	case KindArray:
		for _, v := range n.Values {
			if needsSecretHelper(v) {
				return true
			}
		}
	case KindObject:
		for _, k := range n.Keys {
			if needsSecretHelper(n.Props[k]) {
				return true
			}
		}
	case KindEnum:
		for _, m := range n.Members {
			if needsSecretHelper(m.Value) {
				return true
			}
		}
	}
	return false
}

func renderValue(n *Node) (string, error) {
	inner, err := renderBare(n)
	if err != nil {
		return "", err
	}
	if n.Secret {
		return "_secret(" + inner + ")", nil
	}
	return inner, nil
}

func renderBare(n *Node) (string, error) {
	switch n.Kind {
	case KindLiteral:
		switch n.LitType {
		case LitString:
			return strconv.Quote(n.Str), nil
		case LitNumber:
			return n.Num, nil
		case LitBool:
			if n.Bool {
				return "true", nil
			}
			return "false", nil
		}
		return "", fmt.Errorf("staticdata: unknown literal type %d", n.LitType)

	case KindReference:
		return strings.Join(n.Path, "."), nil

	case KindArray:
		parts := make([]string, len(n.Values))
		for i, v := range n.Values {
			s, err := renderValue(v)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return "[" + strings.Join(parts, ", ") + "]", nil

	case KindObject:
		parts := make([]string, len(n.Keys))
		for i, k := range n.Keys {
			s, err := renderValue(n.Props[k])
			if err != nil {
				return "", err
			}
			parts[i] = k + ": " + s
		}
		return "{ " + strings.Join(parts, ", ") + " }", nil

	case KindEnum:
		parts := make([]string, len(n.Members))
		for i, m := range n.Members {
			s, err := renderValue(m.Value)
			if err != nil {
				return "", err
			}
			parts[i] = m.Name + ": " + s
		}
		return "Object.freeze({ " + strings.Join(parts, ", ") + " })", nil
	}
	return "", fmt.Errorf("staticdata: unknown node kind %d", n.Kind)
}
