// Package fn holds shorthand factories for common KQL functions.
//
// Every factory is a thin wrapper over expr.Call: Go strings among the
// arguments are column names, other Go values are literals. Nothing here
// knows which functions a cluster actually provides.
package fn

import "github.com/roach88/kustoq/internal/expr"

// Func builds a call to any function by name.
func Func(name string, args ...any) expr.FuncCall {
	return expr.Call(name, args...)
}

// Aggregations.

// Sum is sum(col).
func Sum(col any) expr.FuncCall { return expr.Call("sum", col) }

// SumIf is sumif(col, pred).
func SumIf(col, pred any) expr.FuncCall { return expr.Call("sumif", col, pred) }

// Avg is avg(col).
func Avg(col any) expr.FuncCall { return expr.Call("avg", col) }

// Min is min(col).
func Min(col any) expr.FuncCall { return expr.Call("min", col) }

// Max is max(col).
func Max(col any) expr.FuncCall { return expr.Call("max", col) }

// Dcount is dcount(col), an estimated distinct count.
func Dcount(col any) expr.FuncCall { return expr.Call("dcount", col) }

// MakeSet is make_set(col).
func MakeSet(col any) expr.FuncCall { return expr.Call("make_set", col) }

// MakeList is make_list(col).
func MakeList(col any) expr.FuncCall { return expr.Call("make_list", col) }

// CountIf is countif(pred).
func CountIf(pred any) expr.FuncCall { return expr.Call("countif", pred) }

// Stdev is stdev(col).
func Stdev(col any) expr.FuncCall { return expr.Call("stdev", col) }

// Variance is variance(col).
func Variance(col any) expr.FuncCall { return expr.Call("variance", col) }

// TakeAny is take_any(col), one arbitrary value per group.
func TakeAny(col any) expr.FuncCall { return expr.Call("take_any", col) }

// Count is count() with no arguments, or count(col) when one is given.
func Count(col ...any) expr.FuncCall {
	return expr.Call("count", col...)
}

// Percentile is percentile(col, p).
func Percentile(col, p any) expr.FuncCall {
	return expr.Call("percentile", col, p)
}

// ArgMax is arg_max(col, returned...).
func ArgMax(col any, returned ...any) expr.FuncCall {
	return expr.Call("arg_max", append([]any{col}, returned...)...)
}

// ArgMin mirrors ArgMax.
func ArgMin(col any, returned ...any) expr.FuncCall {
	return expr.Call("arg_min", append([]any{col}, returned...)...)
}

// Scalars.

// Bin rounds col down to a multiple of size. size is usually a timespan
// built with Timespan.
func Bin(col, size any) expr.FuncCall { return expr.Call("bin", col, size) }

// Timespan is totimespan('<text>'), e.g. Timespan("1h").
func Timespan(text string) expr.FuncCall {
	return expr.Call("totimespan", expr.Str(text))
}

// Datetime is todatetime('<text>').
func Datetime(text string) expr.FuncCall {
	return expr.Call("todatetime", expr.Str(text))
}

// Ago is ago(span), e.g. Ago(Timespan("1d")).
func Ago(span any) expr.FuncCall { return expr.Call("ago", span) }

// Now is now().
func Now() expr.FuncCall { return expr.Call("now") }

// ToLower is tolower(col).
func ToLower(col any) expr.FuncCall { return expr.Call("tolower", col) }

// ToUpper is toupper(col).
func ToUpper(col any) expr.FuncCall { return expr.Call("toupper", col) }

// StrLen is strlen(col).
func StrLen(col any) expr.FuncCall { return expr.Call("strlen", col) }

// StrCat is strcat(args...). Wrap literal text in expr.Str.
func StrCat(args ...any) expr.FuncCall { return expr.Call("strcat", args...) }

// IsEmpty is isempty(col).
func IsEmpty(col any) expr.FuncCall { return expr.Call("isempty", col) }

// IsNotEmpty is isnotempty(col).
func IsNotEmpty(col any) expr.FuncCall { return expr.Call("isnotempty", col) }

// IsNull is isnull(col).
func IsNull(col any) expr.FuncCall { return expr.Call("isnull", col) }

// IsNotNull is isnotnull(col).
func IsNotNull(col any) expr.FuncCall { return expr.Call("isnotnull", col) }

// Iff is iff(pred, then, els). Remember that Go strings are column names
// here; wrap string results in expr.Str.
func Iff(pred, then, els any) expr.FuncCall {
	return expr.Call("iff", pred, then, els)
}
