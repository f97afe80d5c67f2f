package expr

// Fluent operator forms. Each is a thin wrapper over the package function of
// the same name with the receiver as left operand.

func (c Column) Eq(r any) Binary            { return Eq(c, r) }
func (c Column) Ne(r any) Binary            { return Ne(c, r) }
func (c Column) Lt(r any) Binary            { return Lt(c, r) }
func (c Column) Le(r any) Binary            { return Le(c, r) }
func (c Column) Gt(r any) Binary            { return Gt(c, r) }
func (c Column) Ge(r any) Binary            { return Ge(c, r) }
func (c Column) In(values ...any) Binary    { return In(c, values...) }
func (c Column) NotIn(values ...any) Binary { return NotIn(c, values...) }
func (c Column) Has(r any) Binary           { return Has(c, r) }
func (c Column) NotHas(r any) Binary        { return NotHas(c, r) }
func (c Column) Contains(r any) Binary      { return Contains(c, r) }
func (c Column) NotContains(r any) Binary   { return NotContains(c, r) }
func (c Column) StartsWith(r any) Binary    { return StartsWith(c, r) }
func (c Column) EndsWith(r any) Binary      { return EndsWith(c, r) }
func (c Column) Matches(r any) Binary       { return Matches(c, r) }
func (c Column) Add(r any) Binary           { return Add(c, r) }
func (c Column) Sub(r any) Binary           { return Sub(c, r) }
func (c Column) Mul(r any) Binary           { return Mul(c, r) }
func (c Column) Div(r any) Binary           { return Div(c, r) }
func (c Column) Mod(r any) Binary           { return Mod(c, r) }
func (c Column) And(r any) Binary           { return And(c, r) }
func (c Column) Or(r any) Binary            { return Or(c, r) }
func (c Column) Not() Unary                 { return Not(c) }
func (c Column) Neg() Unary                 { return Neg(c) }
func (c Column) As(name string) Alias       { return As(name, c) }

func (c FuncCall) Eq(r any) Binary      { return Eq(c, r) }
func (c FuncCall) Ne(r any) Binary      { return Ne(c, r) }
func (c FuncCall) Lt(r any) Binary      { return Lt(c, r) }
func (c FuncCall) Le(r any) Binary      { return Le(c, r) }
func (c FuncCall) Gt(r any) Binary      { return Gt(c, r) }
func (c FuncCall) Ge(r any) Binary      { return Ge(c, r) }
func (c FuncCall) Add(r any) Binary     { return Add(c, r) }
func (c FuncCall) Sub(r any) Binary     { return Sub(c, r) }
func (c FuncCall) Mul(r any) Binary     { return Mul(c, r) }
func (c FuncCall) Div(r any) Binary     { return Div(c, r) }
func (c FuncCall) And(r any) Binary     { return And(c, r) }
func (c FuncCall) Or(r any) Binary      { return Or(c, r) }
func (c FuncCall) Not() Unary           { return Not(c) }
func (c FuncCall) As(name string) Alias { return As(name, c) }

func (b Binary) And(r any) Binary     { return And(b, r) }
func (b Binary) Or(r any) Binary      { return Or(b, r) }
func (b Binary) Not() Unary           { return Not(b) }
func (b Binary) Eq(r any) Binary      { return Eq(b, r) }
func (b Binary) Gt(r any) Binary      { return Gt(b, r) }
func (b Binary) Lt(r any) Binary      { return Lt(b, r) }
func (b Binary) As(name string) Alias { return As(name, b) }

func (u Unary) And(r any) Binary     { return And(u, r) }
func (u Unary) Or(r any) Binary      { return Or(u, r) }
func (u Unary) As(name string) Alias { return As(name, u) }
