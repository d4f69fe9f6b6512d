package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Compile errors
//   - E2xxx: Load errors
//   - E3xxx: Runtime errors
//   - E4xxx: Code generation errors
type ErrorCode string

const (
	// Compile errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unclosed left bracket
	E1002 ErrorCode = "E1002" // Unexpected right bracket

	// Load errors (E2xxx)
	E2001 ErrorCode = "E2001" // Source could not be read

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // I/O failure
	E3002 ErrorCode = "E3002" // Pointer overflow

	// Code generation errors (E4xxx)
	E4001 ErrorCode = "E4001" // Malformed program
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unclosed left bracket",
	E1002: "unexpected right bracket",

	E2001: "source could not be read",

	E3001: "i/o failure",
	E3002: "pointer overflow",

	E4001: "malformed program",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "compile"
	case '2':
		return "load"
	case '3':
		return "runtime"
	case '4':
		return "generate"
	default:
		return "unknown"
	}
}
