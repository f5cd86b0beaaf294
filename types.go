package condense

// NumberMode dictates how wire numbers are decoded into raw values.
type NumberMode int

const (
	NumberFloat64    NumberMode = iota // Double precision (the wire grammar's number model).
	NumberJSONNumber                   // Preserve the literal as json.Number.
)

// Severity expresses how an enforcement finding is treated.
type Severity int

const (
	SeverityIgnore Severity = iota
	SeverityError
)

// Strictness configures enforcement for duplicate object keys.
type Strictness struct {
	OnDuplicateKey Severity // SeverityIgnore keeps the last occurrence.
}

// ParseOpt bundles wire parsing options. The zero value parses numbers as
// float64, keeps the last of duplicated keys and applies no size limits.
type ParseOpt struct {
	Strictness Strictness
	MaxDepth   int
	MaxBytes   int64
	NumberMode NumberMode
}
