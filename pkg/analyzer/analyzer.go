/*
analyzer forwards an image reference and a natural-language instruction to a
hosted multimodal model and returns the generated text. Each operation is a
fixed prompt template over the same Submit call.
*/
package analyzer

import (
	"os"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	vision "github.com/mutablelogic/go-vision"
	openai "github.com/mutablelogic/go-vision/pkg/openai"
	zerolog "github.com/rs/zerolog"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Analyzer holds a credential and a completer. It is immutable after
// construction and safe for concurrent use.
type Analyzer struct {
	credential string
	completer  vision.Completer
	model      string
	maxTokens  uint
	log        zerolog.Logger
	tracer     trace.Tracer
	clientOpts []client.ClientOpt
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// The environment variable which holds the credential
	EnvCredential = "OPENAI_API_KEY"

	// The token ceiling sent with every request unless overridden
	DefaultMaxTokens = 300
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns an analyzer for the given credential. It returns
// ErrConfiguration immediately if the credential is empty.
func New(credential string, opts ...Opt) (*Analyzer, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, vision.ErrConfiguration.With("credential is required")
	}

	self := &Analyzer{
		credential: credential,
		model:      openai.DefaultModel,
		maxTokens:  DefaultMaxTokens,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(self); err != nil {
			return nil, err
		}
	}

	// Create the default completer
	if self.completer == nil {
		clientOpts := self.clientOpts
		if self.tracer != nil {
			clientOpts = append(clientOpts, client.OptTracer(self.tracer))
		}
		if completer, err := openai.New(self.credential, clientOpts...); err != nil {
			return nil, err
		} else {
			self.completer = completer
		}
	}

	// Return success
	return self, nil
}

// NewFromEnv returns an analyzer with the credential read from the
// OPENAI_API_KEY environment variable
func NewFromEnv(opts ...Opt) (*Analyzer, error) {
	credential, ok := os.LookupEnv(EnvCredential)
	if !ok || strings.TrimSpace(credential) == "" {
		return nil, vision.ErrConfiguration.Withf("No %s provided", EnvCredential)
	}
	return New(credential, opts...)
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Credential returns the credential the analyzer was created with
func (a *Analyzer) Credential() string {
	return a.credential
}

// Model returns the default model name
func (a *Analyzer) Model() string {
	return a.model
}

// MaxTokens returns the default token ceiling
func (a *Analyzer) MaxTokens() uint {
	return a.maxTokens
}
