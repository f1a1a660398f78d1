package analyzer

import (
	"context"

	// Packages
	opt "github.com/mutablelogic/go-vision/pkg/opt"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Operation names, used for logging and span names
const (
	OpSubmit      = "submit"
	OpDescription = "description"
	OpTags        = "tags"
	OpTagList     = "tag_list"
	OpQuery       = "query"
	OpCaption     = "caption"
	OpAltText     = "alt_text"
	OpStory       = "story"
)

// Fixed instructions. The "under 100 tokens" wording is a hint to the model,
// the ceiling actually sent is DefaultMaxTokens unless overridden.
const (
	DescriptionTemplate = "Generate a description for this image and only output it. Try to keep it under 100 tokens"
	TagsTemplate        = "Generate tags for this image in an array and only output it. Try to keep it under 100 tokens"
	CaptionTemplate     = "Generate a caption for this image and only output it. Try to keep it under 100 tokens"
	AltTextTemplate     = "Generate alt text for this image and only output it. Try to keep it under 100 tokens"
	StoryTemplate       = "Create a story from these images and only output it. Try to keep it under 100 tokens"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Templates returns the fixed instruction for each templated operation
func Templates() map[string]string {
	return map[string]string{
		OpDescription: DescriptionTemplate,
		OpTags:        TagsTemplate,
		OpCaption:     CaptionTemplate,
		OpAltText:     AltTextTemplate,
		OpStory:       StoryTemplate,
	}
}

// AnalyzeImageDescription returns a free-text description of the image
func (a *Analyzer) AnalyzeImageDescription(ctx context.Context, image string, opts ...opt.Opt) (string, error) {
	return a.submit(ctx, OpDescription, image, DescriptionTemplate, opts...)
}

// GenerateImageTags returns tags for the image as raw model output. The
// format is not enforced; use GenerateImageTagList for a parsed list.
func (a *Analyzer) GenerateImageTags(ctx context.Context, image string, opts ...opt.Opt) (string, error) {
	return a.submit(ctx, OpTags, image, TagsTemplate, opts...)
}

// AnswerQueryOfImage sends the caller's question about the image verbatim
func (a *Analyzer) AnswerQueryOfImage(ctx context.Context, image, query string, opts ...opt.Opt) (string, error) {
	return a.submit(ctx, OpQuery, image, query, opts...)
}

// GenerateCaption returns a short caption for the image
func (a *Analyzer) GenerateCaption(ctx context.Context, image string, opts ...opt.Opt) (string, error) {
	return a.submit(ctx, OpCaption, image, CaptionTemplate, opts...)
}

// GenerateAltText returns accessibility alt text for the image
func (a *Analyzer) GenerateAltText(ctx context.Context, image string, opts ...opt.Opt) (string, error) {
	return a.submit(ctx, OpAltText, image, AltTextTemplate, opts...)
}

// CreateStoryFromImages returns a short narrative. Only a single image is
// sent, despite the name.
func (a *Analyzer) CreateStoryFromImages(ctx context.Context, image string, opts ...opt.Opt) (string, error) {
	return a.submit(ctx, OpStory, image, StoryTemplate, opts...)
}
