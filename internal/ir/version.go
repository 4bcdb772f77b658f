package ir

// Version constants for the compiled model schema and the compiler.
const (
	// ModelVersion is the compiled-model schema version recorded in the store.
	ModelVersion = "1"

	// CompilerVersion is the amk compiler version printed in Maple headings.
	CompilerVersion = "0.1.0"
)
