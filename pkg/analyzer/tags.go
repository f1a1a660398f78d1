package analyzer

import (
	"context"
	"encoding/json"
	"strings"

	// Packages
	jsonschema "github.com/google/jsonschema-go/jsonschema"
	vision "github.com/mutablelogic/go-vision"
	openai "github.com/mutablelogic/go-vision/pkg/openai"
	opt "github.com/mutablelogic/go-vision/pkg/opt"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type tagList struct {
	Tags []string `json:"tags"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	tagListSchemaName = "image_tags"
)

// {"tags": [string]}, with no other properties
var tagListSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"tags": {
			Type:  "array",
			Items: &jsonschema.Schema{Type: "string"},
		},
	},
	Required:             []string{"tags"},
	AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// GenerateImageTagList asks for tags constrained to a JSON schema and returns
// them as a list. Empty and duplicate tags are dropped.
func (a *Analyzer) GenerateImageTagList(ctx context.Context, image string, opts ...opt.Opt) ([]string, error) {
	opts = append(opts, openai.WithJSONOutput(tagListSchemaName, tagListSchema))
	text, err := a.submit(ctx, OpTagList, image, TagsTemplate, opts...)
	if err != nil {
		return nil, err
	}
	tags, err := parseTagList(text)
	if err != nil {
		a.failed(OpTagList, image, nil, err)
		return nil, err
	}
	return tags, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func parseTagList(text string) ([]string, error) {
	var list tagList
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, vision.ErrService.Withf("invalid tag list: %v", err)
	}
	result := make([]string, 0, len(list.Tags))
	seen := make(map[string]bool, len(list.Tags))
	for _, tag := range list.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result, nil
}
