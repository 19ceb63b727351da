package formula

// OperatorID identifies a built-in arithmetic operator.
type OperatorID int

const (
	OpAdd OperatorID = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulus
	OpIntDivide
	OpPower
	OpFactorial
)

// Precedence weights, low to high. Comparators carry no weight; they always
// bind looser than any operator.
const (
	weightAdditive       = 0
	weightMultiplicative = 1
	weightPower          = 2
	weightFactorial      = 3
)

type operatorEntry struct {
	id     OperatorID
	weight int
}

// operatorTable maps operator symbols to their identifier and precedence
// weight. Built once; never mutated.
var operatorTable = map[string]operatorEntry{
	"+":  {OpAdd, weightAdditive},
	"-":  {OpSubtract, weightAdditive},
	"*":  {OpMultiply, weightMultiplicative},
	"/":  {OpDivide, weightMultiplicative},
	"%":  {OpModulus, weightMultiplicative},
	"//": {OpIntDivide, weightMultiplicative},
	"^":  {OpPower, weightPower},
	"!":  {OpFactorial, weightFactorial},
}

// ComparatorID identifies a built-in comparison or boolean operator.
type ComparatorID int

const (
	CmpEqual ComparatorID = iota
	CmpNotEqual
	CmpLess
	CmpLessEqual
	CmpGreater
	CmpGreaterEqual
	CmpLooseOr
	CmpStrictOr
	CmpLooseAnd
	CmpStrictAnd
)

var comparatorTable = map[string]ComparatorID{
	"==": CmpEqual,
	"!=": CmpNotEqual,
	"<":  CmpLess,
	"<=": CmpLessEqual,
	">":  CmpGreater,
	">=": CmpGreaterEqual,
	"|":  CmpLooseOr,
	"||": CmpStrictOr,
	"&":  CmpLooseAnd,
	"&&": CmpStrictAnd,
}

// FunctionID identifies a built-in function.
type FunctionID int

const (
	FnToday FunctionID = iota
	FnAsDate
	FnSeconds
	FnMinutes
	FnHours
	FnDays
	FnWeeks
	FnMonths
	FnYears
	FnSum
	FnAvg
	FnLog10
	FnLn
	FnLog
	FnSqrt
	FnNchar
	FnIsNull
	FnIn

	// FnCustom marks a function resolved from an engine's custom function
	// registry rather than the built-in table.
	FnCustom
)

// functionTable maps lowercased function names to their identifier.
// Lookups fold case, so asDate, ASDATE, and asdate are equivalent.
var functionTable = map[string]FunctionID{
	"today":   FnToday,
	"asdate":  FnAsDate,
	"seconds": FnSeconds,
	"minutes": FnMinutes,
	"hours":   FnHours,
	"days":    FnDays,
	"weeks":   FnWeeks,
	"months":  FnMonths,
	"years":   FnYears,
	"sum":     FnSum,
	"avg":     FnAvg,
	"log10":   FnLog10,
	"ln":      FnLn,
	"log":     FnLog,
	"sqrt":    FnSqrt,
	"nchar":   FnNchar,
	"isnull":  FnIsNull,
	"in":      FnIn,
}
