package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
	"strings"

	// Packages
	otel "github.com/mutablelogic/go-client/pkg/otel"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	types "github.com/mutablelogic/go-server/pkg/types"
	vision "github.com/mutablelogic/go-vision"
	opt "github.com/mutablelogic/go-vision/pkg/opt"
	schema "github.com/mutablelogic/go-vision/pkg/schema"
	attribute "go.opentelemetry.io/otel/attribute"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Submit sends the instruction and image reference as a single user turn and
// returns the text of the first completion. Failures are logged and returned
// wrapping one of ErrBadParameter, ErrTransport, ErrService, ErrNoContent,
// ErrRefusal or ErrMaxTokens. A successful but empty completion returns an
// empty string and no error.
func (a *Analyzer) Submit(ctx context.Context, image, instruction string, opts ...opt.Opt) (string, error) {
	return a.submit(ctx, OpSubmit, image, instruction, opts...)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (a *Analyzer) submit(ctx context.Context, op, image, instruction string, opts ...opt.Opt) (text string, err error) {
	// Build the request before starting the span so it can carry the ceiling
	request, err := a.request(image, instruction, opts...)
	if err != nil {
		a.failed(op, image, request, err)
		return "", err
	}

	// Otel span
	ctx, endSpan := otel.StartSpan(a.tracer, ctx, "vision."+op,
		attribute.String("image", imageRef(image)),
		attribute.String("model", request.Model),
		attribute.Int("max_tokens", int(request.MaxTokens)),
	)
	defer func() { endSpan(err) }()

	// Send the request
	completions, err := a.completer.Complete(ctx, request)
	if err != nil {
		err = classify(err)
		a.failed(op, image, request, err)
		return "", err
	}

	// Only the first completion is used
	first := completions.First()
	if first == nil {
		err = vision.ErrNoContent.With("no completions returned")
		a.failed(op, image, request, err)
		return "", err
	}
	switch first.Result {
	case schema.ResultMaxTokens:
		err = vision.ErrMaxTokens.Withf("output truncated at %d tokens", request.MaxTokens)
		a.failed(op, image, request, err)
		return first.Text, err
	case schema.ResultRefusal:
		err = vision.ErrRefusal.With(first.Refusal)
		a.failed(op, image, request, err)
		return "", err
	case schema.ResultBlocked:
		err = vision.ErrRefusal.With("blocked by content filter")
		a.failed(op, image, request, err)
		return "", err
	}

	a.log.Debug().
		Str("op", op).
		Str("image", imageRef(image)).
		Str("model", completions.Model).
		Int("candidates", completions.Num()).
		Uint("input_tokens", completions.Usage.InputTokens).
		Uint("output_tokens", completions.Usage.OutputTokens).
		Msg("completed")

	// Return success
	return first.Text, nil
}

// request builds a fresh request from the defaults and per-request options
func (a *Analyzer) request(image, instruction string, opts ...opt.Opt) (*schema.Request, error) {
	if strings.TrimSpace(image) == "" {
		return nil, vision.ErrBadParameter.With("image reference is required")
	}
	if strings.TrimSpace(instruction) == "" {
		return nil, vision.ErrBadParameter.With("instruction is required")
	}

	options, err := opt.Apply(opts...)
	if err != nil {
		return nil, err
	}

	request := schema.NewRequest(image, instruction, a.maxTokens)
	request.Model = a.model
	if options.Has(opt.MaxTokensKey) {
		request.MaxTokens = options.GetUint(opt.MaxTokensKey)
	}
	if model := options.GetString(opt.ModelKey); model != "" {
		request.Model = model
	}
	if detail := options.GetString(opt.DetailKey); detail != "" {
		request.Detail = detail
	}
	if options.Has(opt.TemperatureKey) {
		request.Temperature = types.Ptr(options.GetFloat64(opt.TemperatureKey))
	}
	if data := options.GetString(opt.JSONSchemaKey); data != "" {
		request.Format = &schema.Format{
			Name:   options.GetString(opt.FormatNameKey),
			Schema: json.RawMessage(data),
		}
	}

	// Return success
	return request, nil
}

// failed reports an error on the logging side channel
func (a *Analyzer) failed(op, image string, request *schema.Request, err error) {
	event := a.log.Error()
	if errors.Is(err, vision.ErrMaxTokens) {
		event = a.log.Warn()
	}
	event = event.Err(err).Str("op", op).Str("image", imageRef(image))
	if request != nil {
		event = event.Str("model", request.Model).Uint("max_tokens", request.MaxTokens)
	}
	event.Msg("request failed")
}

// imageRef shortens data URIs to their media type for logs and spans
func imageRef(image string) string {
	if strings.HasPrefix(image, "data:") {
		if i := strings.IndexByte(image, ','); i > 0 {
			return image[:i] + ",..."
		}
	}
	return image
}

// classify maps an error from the completer onto the error taxonomy
func classify(err error) error {
	var visionErr vision.Err
	var httpErr httpresponse.Err
	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.As(err, &visionErr):
		return err
	case errors.As(err, &httpErr):
		return vision.ErrService.Wrap(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return vision.ErrTransport.Wrap(err)
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return vision.ErrTransport.Wrap(err)
	default:
		return vision.ErrService.Wrap(err)
	}
}
