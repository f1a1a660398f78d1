package vision

import (
	"context"

	// Packages
	schema "github.com/mutablelogic/go-vision/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// INTERFACES

// Completer is a hosted multimodal model which accepts an instruction and an
// image reference and returns one or more candidate completions
type Completer interface {
	// Return the provider name
	Name() string

	// Send a single request and return the candidate completions
	Complete(context.Context, *schema.Request) (*schema.Completions, error)
}
