package analyzer

import (
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	vision "github.com/mutablelogic/go-vision"
	zerolog "github.com/rs/zerolog"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for configuring an analyzer
type Opt func(*Analyzer) error

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithCompleter replaces the OpenAI completer, for example with a fake in
// tests or another provider
func WithCompleter(completer vision.Completer) Opt {
	return func(a *Analyzer) error {
		if completer == nil {
			return vision.ErrBadParameter.With("completer is required")
		}
		a.completer = completer
		return nil
	}
}

// WithModel sets the default model for every request
func WithModel(model string) Opt {
	return func(a *Analyzer) error {
		if model = strings.TrimSpace(model); model == "" {
			return vision.ErrBadParameter.With("model is required")
		}
		a.model = model
		return nil
	}
}

// WithMaxTokens sets the default token ceiling for every request
func WithMaxTokens(value uint) Opt {
	return func(a *Analyzer) error {
		if value < 1 {
			return vision.ErrBadParameter.With("max tokens must be at least 1")
		}
		a.maxTokens = value
		return nil
	}
}

// WithLogger sets the logger which receives request failures
func WithLogger(log zerolog.Logger) Opt {
	return func(a *Analyzer) error {
		a.log = log
		return nil
	}
}

// WithTracer sets the tracer for request spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(a *Analyzer) error {
		a.tracer = tracer
		return nil
	}
}

// WithClientOpts appends options for the default OpenAI completer, such as
// a timeout, trace output or an alternative endpoint. They are ignored when
// WithCompleter is used.
func WithClientOpts(opts ...client.ClientOpt) Opt {
	return func(a *Analyzer) error {
		a.clientOpts = append(a.clientOpts, opts...)
		return nil
	}
}
