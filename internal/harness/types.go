package harness

import "github.com/roach88/amk/internal/ir"

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed assertion.
	Errors []string `json:"errors,omitempty"`

	// Hash is the content hash of the compiled model; empty when the
	// compile failed.
	Hash string `json:"hash,omitempty"`

	// Model is the model as read back from the registry.
	Model *ir.Model `json:"-"`

	// Maple is the rendered worksheet.
	Maple []byte `json:"-"`

	// CompileErr is the compile failure, if any.
	CompileErr error `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
