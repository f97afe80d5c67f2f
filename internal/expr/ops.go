package expr

// Op identifies a unary or binary operator.
type Op int

const (
	OpInvalid Op = iota

	// Unary operators.
	OpNot
	OpNeg

	// Logical.
	OpAnd
	OpOr

	// Comparison.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Set membership and string predicates.
	OpIn
	OpNotIn
	OpHas
	OpNotHas
	OpContains
	OpNotContains
	OpStartsWith
	OpEndsWith
	OpMatches

	// Arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

// Precedence levels, lowest binding first.
const (
	precOr = iota + 1
	precAnd
	precCompare
	precAdditive
	precMultiplicative
	precUnary
	precAtom
)

type opInfo struct {
	token string
	prec  int
	unary bool
}

var ops = map[Op]opInfo{
	OpNot: {token: "not", prec: precAtom, unary: true},
	OpNeg: {token: "-", prec: precUnary, unary: true},

	OpAnd: {token: "and", prec: precAnd},
	OpOr:  {token: "or", prec: precOr},

	OpEq: {token: "==", prec: precCompare},
	OpNe: {token: "!=", prec: precCompare},
	OpLt: {token: "<", prec: precCompare},
	OpLe: {token: "<=", prec: precCompare},
	OpGt: {token: ">", prec: precCompare},
	OpGe: {token: ">=", prec: precCompare},

	OpIn:          {token: "in", prec: precCompare},
	OpNotIn:       {token: "!in", prec: precCompare},
	OpHas:         {token: "has", prec: precCompare},
	OpNotHas:      {token: "!has", prec: precCompare},
	OpContains:    {token: "contains", prec: precCompare},
	OpNotContains: {token: "!contains", prec: precCompare},
	OpStartsWith:  {token: "startswith", prec: precCompare},
	OpEndsWith:    {token: "endswith", prec: precCompare},
	OpMatches:     {token: "matches regex", prec: precCompare},

	OpAdd: {token: "+", prec: precAdditive},
	OpSub: {token: "-", prec: precAdditive},
	OpMul: {token: "*", prec: precMultiplicative},
	OpDiv: {token: "/", prec: precMultiplicative},
	OpMod: {token: "%", prec: precMultiplicative},
}

// binaryTokens maps KQL operator spellings to binary operators. Used by
// ParseBinaryOp; "=" is accepted as an alias for "==".
var binaryTokens = map[string]Op{}

func init() {
	for op, info := range ops {
		if !info.unary {
			binaryTokens[info.token] = op
		}
	}
	binaryTokens["="] = OpEq
	binaryTokens["matches"] = OpMatches
}

// String returns the KQL token for the operator.
func (o Op) String() string {
	if info, ok := ops[o]; ok {
		return info.token
	}
	return "<invalid op>"
}

// IsUnary reports whether o is a unary operator.
func (o Op) IsUnary() bool {
	info, ok := ops[o]
	return ok && info.unary
}

// IsBinary reports whether o is a binary operator.
func (o Op) IsBinary() bool {
	info, ok := ops[o]
	return ok && !info.unary
}

// IsComparison reports whether o yields a boolean from two scalar operands.
func (o Op) IsComparison() bool {
	info, ok := ops[o]
	return ok && info.prec == precCompare
}

// IsLogical reports whether o is "and" or "or".
func (o Op) IsLogical() bool {
	return o == OpAnd || o == OpOr
}

// ParseBinaryOp looks up a binary operator by its KQL spelling.
func ParseBinaryOp(token string) (Op, bool) {
	op, ok := binaryTokens[token]
	return op, ok
}

func (o Op) precedence() int {
	return ops[o].prec
}
