package schema

import (
	"encoding/json"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Request is a single multimodal user turn: an instruction and an image
// reference, with a ceiling on the number of generated tokens. It is built
// fresh for every call and never persisted.
type Request struct {
	Role        string   `json:"role"`
	Instruction string   `json:"instruction"`
	Image       string   `json:"image"`
	MaxTokens   uint     `json:"max_tokens"`
	Model       string   `json:"model,omitempty"`
	Detail      string   `json:"detail,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Format      *Format  `json:"format,omitempty"`
}

// Format constrains the completion to JSON matching a named schema
type Format struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	RoleUser = "user"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewRequest returns a user-role request for an image and instruction. Both
// values are stored verbatim.
func NewRequest(image, instruction string, maxTokens uint) *Request {
	return &Request{
		Role:        RoleUser,
		Instruction: instruction,
		Image:       image,
		MaxTokens:   maxTokens,
	}
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Request) String() string {
	return Stringify(r)
}
