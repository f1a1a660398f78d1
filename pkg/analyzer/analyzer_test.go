package analyzer_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	// Packages
	client "github.com/mutablelogic/go-client"
	vision "github.com/mutablelogic/go-vision"
	analyzer "github.com/mutablelogic/go-vision/pkg/analyzer"
	openai "github.com/mutablelogic/go-vision/pkg/openai"
	schema "github.com/mutablelogic/go-vision/pkg/schema"
	zerolog "github.com/rs/zerolog"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// TEST SET-UP

// fake is a completer which records requests and returns a fixed result
type fake struct {
	sync.Mutex
	requests    []schema.Request
	completions *schema.Completions
	err         error
}

var _ vision.Completer = (*fake)(nil)

func (*fake) Name() string {
	return "fake"
}

func (f *fake) Complete(_ context.Context, req *schema.Request) (*schema.Completions, error) {
	f.Lock()
	defer f.Unlock()
	f.requests = append(f.requests, *req)
	if f.err != nil {
		return nil, f.err
	}
	return f.completions, nil
}

func (f *fake) Requests() []schema.Request {
	f.Lock()
	defer f.Unlock()
	return append([]schema.Request(nil), f.requests...)
}

func newFake(text ...string) *fake {
	f := &fake{completions: &schema.Completions{Model: "fake"}}
	for _, t := range text {
		f.completions.Choices = append(f.completions.Choices, schema.Completion{Text: t})
	}
	return f
}

func newAnalyzer(t *testing.T, f *fake, opts ...analyzer.Opt) *analyzer.Analyzer {
	t.Helper()
	a, err := analyzer.New("test-key", append([]analyzer.Opt{analyzer.WithCompleter(f)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

///////////////////////////////////////////////////////////////////////////////
// CONSTRUCTION

func Test_new_001(t *testing.T) {
	// Missing credential fails at construction
	assert := assert.New(t)
	for _, credential := range []string{"", "   "} {
		a, err := analyzer.New(credential)
		assert.ErrorIs(err, vision.ErrConfiguration)
		assert.Nil(a)
	}
}

func Test_new_002(t *testing.T) {
	// Credential is stored unmodified and defaults are applied
	assert := assert.New(t)
	a, err := analyzer.New(" sk-test ")
	if !assert.NoError(err) {
		t.FailNow()
	}
	assert.Equal(" sk-test ", a.Credential())
	assert.Equal(uint(analyzer.DefaultMaxTokens), a.MaxTokens())
	assert.Equal(openai.DefaultModel, a.Model())
}

func Test_new_003(t *testing.T) {
	// Credential from the environment
	assert := assert.New(t)

	t.Setenv(analyzer.EnvCredential, "")
	_, err := analyzer.NewFromEnv()
	assert.ErrorIs(err, vision.ErrConfiguration)

	t.Setenv(analyzer.EnvCredential, "sk-env")
	a, err := analyzer.NewFromEnv()
	if assert.NoError(err) {
		assert.Equal("sk-env", a.Credential())
	}
}

func Test_new_004(t *testing.T) {
	// Invalid options are rejected
	assert := assert.New(t)
	_, err := analyzer.New("key", analyzer.WithMaxTokens(0))
	assert.ErrorIs(err, vision.ErrBadParameter)
	_, err = analyzer.New("key", analyzer.WithModel(""))
	assert.ErrorIs(err, vision.ErrBadParameter)
	_, err = analyzer.New("key", analyzer.WithCompleter(nil))
	assert.ErrorIs(err, vision.ErrBadParameter)

	a, err := analyzer.New("key", analyzer.WithMaxTokens(100), analyzer.WithModel("gpt-4o-mini"))
	if assert.NoError(err) {
		assert.Equal(uint(100), a.MaxTokens())
		assert.Equal("gpt-4o-mini", a.Model())
	}
}

///////////////////////////////////////////////////////////////////////////////
// SUBMIT

func Test_submit_001(t *testing.T) {
	// One request carrying both values verbatim and one token ceiling
	assert := assert.New(t)
	f := newFake("X")
	a := newAnalyzer(t, f)

	text, err := a.Submit(context.Background(), "http://img/1.png", "What is this?")
	assert.NoError(err)
	assert.Equal("X", text)

	requests := f.Requests()
	if assert.Len(requests, 1) {
		assert.Equal(schema.RoleUser, requests[0].Role)
		assert.Equal("http://img/1.png", requests[0].Image)
		assert.Equal("What is this?", requests[0].Instruction)
		assert.Equal(uint(300), requests[0].MaxTokens)
		assert.Equal(openai.DefaultModel, requests[0].Model)
		assert.Nil(requests[0].Format)
	}
}

func Test_submit_002(t *testing.T) {
	// Only the first completion is returned
	assert := assert.New(t)
	a := newAnalyzer(t, newFake("X", "Y"))
	text, err := a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.NoError(err)
	assert.Equal("X", text)
}

func Test_submit_003(t *testing.T) {
	// Failures are logged and returned, never panicking
	assert := assert.New(t)
	var buf bytes.Buffer
	f := &fake{err: errors.New("boom")}
	a := newAnalyzer(t, f, analyzer.WithLogger(zerolog.New(&buf)))

	text, err := a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.Equal("", text)
	assert.ErrorIs(err, vision.ErrService)
	assert.Contains(buf.String(), "request failed")
	assert.Contains(buf.String(), "boom")
	assert.Contains(buf.String(), `"op":"submit"`)
}

func Test_submit_004(t *testing.T) {
	// Transport failures are distinguished from service failures
	assert := assert.New(t)
	f := &fake{err: &url.Error{Op: "Post", URL: "http://localhost", Err: errors.New("connection refused")}}
	a := newAnalyzer(t, f)
	_, err := a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.ErrorIs(err, vision.ErrTransport)
	assert.NotErrorIs(err, vision.ErrService)

	f = &fake{err: context.DeadlineExceeded}
	a = newAnalyzer(t, f)
	_, err = a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.ErrorIs(err, vision.ErrTransport)
	assert.ErrorIs(err, context.DeadlineExceeded)
}

func Test_submit_005(t *testing.T) {
	// No candidates is distinguished from an empty candidate
	assert := assert.New(t)
	a := newAnalyzer(t, newFake())
	text, err := a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.Equal("", text)
	assert.ErrorIs(err, vision.ErrNoContent)

	a = newAnalyzer(t, newFake(""))
	text, err = a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.Equal("", text)
	assert.NoError(err)
}

func Test_submit_006(t *testing.T) {
	// Truncated output is returned alongside ErrMaxTokens, refusals are errors
	assert := assert.New(t)
	f := newFake("partial")
	f.completions.Choices[0].Result = schema.ResultMaxTokens
	a := newAnalyzer(t, f)
	text, err := a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.Equal("partial", text)
	assert.ErrorIs(err, vision.ErrMaxTokens)

	f = newFake("")
	f.completions.Choices[0].Result = schema.ResultRefusal
	f.completions.Choices[0].Refusal = "I can't help with that"
	a = newAnalyzer(t, f)
	text, err = a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.Equal("", text)
	assert.ErrorIs(err, vision.ErrRefusal)

	f = newFake("")
	f.completions.Choices[0].Result = schema.ResultBlocked
	a = newAnalyzer(t, f)
	_, err = a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.ErrorIs(err, vision.ErrRefusal)
}

func Test_submit_007(t *testing.T) {
	// Empty inputs are rejected without a request
	assert := assert.New(t)
	f := newFake("X")
	a := newAnalyzer(t, f)
	_, err := a.Submit(context.Background(), "", "Describe")
	assert.ErrorIs(err, vision.ErrBadParameter)
	_, err = a.Submit(context.Background(), "http://img/1.png", " ")
	assert.ErrorIs(err, vision.ErrBadParameter)
	_, err = a.AnswerQueryOfImage(context.Background(), "http://img/1.png", "")
	assert.ErrorIs(err, vision.ErrBadParameter)
	assert.Empty(f.Requests())
}

func Test_submit_008(t *testing.T) {
	// Per-request options override the defaults
	assert := assert.New(t)
	f := newFake("X")
	a := newAnalyzer(t, f, analyzer.WithMaxTokens(120))

	_, err := a.Submit(context.Background(), "http://img/1.png", "Describe",
		openai.WithMaxTokens(50),
		openai.WithModel("gpt-4o-mini"),
		openai.WithDetail("low"),
		openai.WithTemperature(0),
	)
	assert.NoError(err)
	_, err = a.Submit(context.Background(), "http://img/1.png", "Describe")
	assert.NoError(err)

	requests := f.Requests()
	if assert.Len(requests, 2) {
		assert.Equal(uint(50), requests[0].MaxTokens)
		assert.Equal("gpt-4o-mini", requests[0].Model)
		assert.Equal("low", requests[0].Detail)
		if assert.NotNil(requests[0].Temperature) {
			assert.Equal(0.0, *requests[0].Temperature)
		}
		assert.Equal(uint(120), requests[1].MaxTokens)
		assert.Nil(requests[1].Temperature)
	}

	// Invalid per-request options fail before sending
	_, err = a.Submit(context.Background(), "http://img/1.png", "Describe", openai.WithMaxTokens(0))
	assert.ErrorIs(err, vision.ErrBadParameter)
	assert.Len(f.Requests(), 2)
}

func Test_submit_009(t *testing.T) {
	// Concurrent calls are independent
	assert := assert.New(t)
	f := newFake("X")
	a := newAnalyzer(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text, err := a.GenerateCaption(context.Background(), "http://img/1.png")
			assert.NoError(err)
			assert.Equal("X", text)
		}()
	}
	wg.Wait()
	assert.Len(f.Requests(), 20)
}

///////////////////////////////////////////////////////////////////////////////
// HTTP

func Test_http_001(t *testing.T) {
	// End to end against a fake endpoint
	assert := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"A red car"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	a, err := analyzer.New("test-key", analyzer.WithClientOpts(client.OptEndpoint(srv.URL)))
	if !assert.NoError(err) {
		t.FailNow()
	}
	text, err := a.GenerateCaption(context.Background(), "http://img/1.png")
	assert.NoError(err)
	assert.Equal("A red car", text)
}

func Test_http_002(t *testing.T) {
	// Service-side failures become ErrService
	assert := assert.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"The server had an error","type":"server_error"}}`))
	}))
	defer srv.Close()

	a, err := analyzer.New("test-key", analyzer.WithClientOpts(client.OptEndpoint(srv.URL)))
	if !assert.NoError(err) {
		t.FailNow()
	}
	text, err := a.AnalyzeImageDescription(context.Background(), "http://img/1.png")
	assert.Equal("", text)
	assert.ErrorIs(err, vision.ErrService)
}

func Test_http_003(t *testing.T) {
	// Unreachable endpoints become ErrTransport
	assert := assert.New(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	a, err := analyzer.New("test-key", analyzer.WithClientOpts(client.OptEndpoint(endpoint)))
	if !assert.NoError(err) {
		t.FailNow()
	}
	text, err := a.GenerateAltText(context.Background(), "http://img/1.png")
	assert.Equal("", text)
	assert.ErrorIs(err, vision.ErrTransport)
}
