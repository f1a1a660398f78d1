package openai

import (
	"encoding/json"
	"strings"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	vision "github.com/mutablelogic/go-vision"
	opt "github.com/mutablelogic/go-vision/pkg/opt"
)

///////////////////////////////////////////////////////////////////////////////
// REQUEST OPTIONS
//
// See: https://platform.openai.com/docs/api-reference/chat/create

// WithModel sets the model for the request.
func WithModel(value string) opt.Opt {
	if value = strings.TrimSpace(value); value == "" {
		return opt.Error(vision.ErrBadParameter.With("model is required"))
	}
	return opt.SetString(opt.ModelKey, value)
}

// WithMaxTokens sets the maximum number of tokens to generate (minimum 1).
func WithMaxTokens(value uint) opt.Opt {
	if value < 1 {
		return opt.Error(vision.ErrBadParameter.With("max_tokens must be at least 1"))
	}
	return opt.SetUint(opt.MaxTokensKey, value)
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(value float64) opt.Opt {
	if value < 0 || value > 2 {
		return opt.Error(vision.ErrBadParameter.With("temperature must be between 0.0 and 2.0"))
	}
	return opt.SetFloat64(opt.TemperatureKey, value)
}

// WithDetail sets the image fidelity: "auto", "low" or "high".
func WithDetail(value string) opt.Opt {
	switch value {
	case "auto", "low", "high":
		return opt.SetString(opt.DetailKey, value)
	default:
		return opt.Error(vision.ErrBadParameter.Withf("invalid detail %q", value))
	}
}

// WithJSONOutput constrains the model to produce JSON conforming to the given
// schema. The name identifies the schema to the service.
func WithJSONOutput(name string, schema *jsonschema.Schema) opt.Opt {
	if name = strings.TrimSpace(name); name == "" {
		return opt.Error(vision.ErrBadParameter.With("schema name is required for JSON output"))
	}
	if schema == nil {
		return opt.Error(vision.ErrBadParameter.With("schema is required for JSON output"))
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return opt.Error(vision.ErrBadParameter.Withf("failed to serialize JSON schema: %v", err))
	}
	return opt.WithOpts(
		opt.SetString(opt.FormatNameKey, name),
		opt.SetString(opt.JSONSchemaKey, string(data)),
	)
}
