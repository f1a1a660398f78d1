package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Completions is the ordered list of candidate completions returned for
// a single request
type Completions struct {
	Id      string       `json:"id,omitempty"`
	Model   string       `json:"model,omitempty"`
	Choices []Completion `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// Completion is one candidate result
type Completion struct {
	Text    string     `json:"text"`
	Refusal string     `json:"refusal,omitempty"`
	Result  ResultType `json:"result"`
}

// Usage reports token counts for a request
type Usage struct {
	InputTokens  uint `json:"input_tokens"`
	OutputTokens uint `json:"output_tokens"`
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (c Completions) String() string {
	return Stringify(c)
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Num returns the number of candidate completions
func (c *Completions) Num() int {
	if c == nil {
		return 0
	}
	return len(c.Choices)
}

// First returns the first candidate, or nil if there are none
func (c *Completions) First() *Completion {
	if c.Num() == 0 {
		return nil
	}
	return &c.Choices[0]
}

// Text returns the text for a specific candidate
func (c *Completions) Text(index int) string {
	if index < 0 || index >= c.Num() {
		return ""
	}
	return c.Choices[index].Text
}
