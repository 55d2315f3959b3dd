package emit

import "github.com/oxhq/kimchilang/internal/token"

// binaryOpText maps every non-identity binary operator to its emitted JS
// symbol. `==`/`!=` strengthen to `===`/`!==`; `is`/`is not` are handled
// separately by binary since they expand to an identity-tag comparison
// rather than a plain infix symbol.
var binaryOpText = map[token.Kind]string{
	token.PLUS:    "+",
	token.MINUS:   "-",
	token.STAR:    "*",
	token.SLASH:   "/",
	token.PERCENT: "%",
	token.LT:      "<",
	token.GT:      ">",
	token.LTEQ:    "<=",
	token.GTEQ:    ">=",
	token.ANDAND:  "&&",
	token.OROR:    "||",
	token.PIPE:    "|",
	token.CARET:   "^",
	token.AMP:     "&",
	token.SHL:     "<<",
	token.SHR:     ">>",
	token.STARSTAR: "**",
	token.EQEQ:    "===",
	token.NOTEQ:   "!==",
}

// assignOpText maps a compound-assignment token to its JS spelling.
var assignOpText = map[token.Kind]string{
	token.EQ:      "=",
	token.PLUSEQ:  "+=",
	token.MINUSEQ: "-=",
	token.STAREQ:  "*=",
	token.SLASHEQ: "/=",
}

// unaryOpText maps a prefix-operator token to its JS spelling. `not` reads
// the same as `!`.
var unaryOpText = map[token.Kind]string{
	token.BANG:  "!",
	token.NOT:   "!",
	token.MINUS: "-",
	token.TILDE: "~",
}

// identityOpKind is the Binary.Op value for `is`/`is not`, which expand to
// an identity-tag comparison rather than a plain infix symbol.
const identityOpKind = token.IS
