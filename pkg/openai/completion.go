package openai

import (
	"context"

	// Packages
	client "github.com/mutablelogic/go-client"
	types "github.com/mutablelogic/go-server/pkg/types"
	vision "github.com/mutablelogic/go-vision"
	schema "github.com/mutablelogic/go-vision/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Complete sends a single image and instruction turn and returns the
// candidate completions in the order the service returned them
func (c *Client) Complete(ctx context.Context, req *schema.Request) (*schema.Completions, error) {
	request, err := c.chatRequestFromSchema(req)
	if err != nil {
		return nil, err
	}

	// Create JSON payload
	payload, err := client.NewJSONRequest(request)
	if err != nil {
		return nil, err
	}

	var response chatCompletionResponse
	if err := c.DoWithContext(ctx, payload, &response, client.OptPath("chat", "completions")); err != nil {
		return nil, err
	}

	return completionsFromResponse(&response), nil
}

// ChatRequest builds the wire request without sending it.
// Useful for testing and debugging.
func (c *Client) ChatRequest(req *schema.Request) (any, error) {
	return c.chatRequestFromSchema(req)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (c *Client) chatRequestFromSchema(req *schema.Request) (*chatCompletionRequest, error) {
	if req == nil {
		return nil, vision.ErrBadParameter.With("request is required")
	}

	role := req.Role
	if role == "" {
		role = schema.RoleUser
	}
	model := req.Model
	if model == "" {
		model = c.model
	}

	// Text instruction first, then the image reference
	request := &chatCompletionRequest{
		Model: model,
		Messages: []openaiMessage{{
			Role: role,
			Content: []contentPart{
				{Type: partText, Text: req.Instruction},
				{Type: partImageURL, ImageURL: &imageURL{URL: req.Image, Detail: req.Detail}},
			},
		}},
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		request.MaxTokens = types.Ptr(req.MaxTokens)
	}
	if req.Format != nil {
		request.ResponseFormat = &responseFormat{
			Type: responseFormatJSONSchema,
			JSONSchema: &jsonSchema{
				Name:   req.Format.Name,
				Schema: req.Format.Schema,
				Strict: true,
			},
		}
	}

	return request, nil
}

func completionsFromResponse(response *chatCompletionResponse) *schema.Completions {
	result := &schema.Completions{
		Id:      response.Id,
		Model:   response.Model,
		Choices: make([]schema.Completion, 0, len(response.Choices)),
		Usage: schema.Usage{
			InputTokens:  response.Usage.PromptTokens,
			OutputTokens: response.Usage.CompletionTokens,
		},
	}
	for _, choice := range response.Choices {
		completion := schema.Completion{
			Result: resultFromFinishReason(choice.FinishReason),
		}
		if choice.Message.Content != nil {
			completion.Text = *choice.Message.Content
		}
		if choice.Message.Refusal != nil && *choice.Message.Refusal != "" {
			completion.Refusal = *choice.Message.Refusal
			completion.Result = schema.ResultRefusal
		}
		result.Choices = append(result.Choices, completion)
	}
	return result
}

func resultFromFinishReason(reason string) schema.ResultType {
	switch reason {
	case finishReasonStop, "":
		return schema.ResultStop
	case finishReasonLength:
		return schema.ResultMaxTokens
	case finishReasonContentFilter:
		return schema.ResultBlocked
	default:
		return schema.ResultOther
	}
}
