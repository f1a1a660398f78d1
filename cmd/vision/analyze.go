package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	// Packages
	vision "github.com/mutablelogic/go-vision"
	analyzer "github.com/mutablelogic/go-vision/pkg/analyzer"
	openai "github.com/mutablelogic/go-vision/pkg/openai"
	opt "github.com/mutablelogic/go-vision/pkg/opt"
	version "github.com/mutablelogic/go-vision/pkg/version"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type AnalyzeCommands struct {
	Describe DescribeCommand `cmd:"" name:"describe" help:"Describe an image." group:"ANALYZE"`
	Tags     TagsCommand     `cmd:"" name:"tags" help:"Generate tags for an image." group:"ANALYZE"`
	Ask      AskCommand      `cmd:"" name:"ask" help:"Ask a question about an image." group:"ANALYZE"`
	Caption  CaptionCommand  `cmd:"" name:"caption" help:"Generate a caption for an image." group:"ANALYZE"`
	Alt      AltCommand      `cmd:"" name:"alt" help:"Generate alt text for an image." group:"ANALYZE"`
	Story    StoryCommand    `cmd:"" name:"story" help:"Create a short story from an image." group:"ANALYZE"`
	Submit   SubmitCommand   `cmd:"" name:"submit" help:"Send a custom instruction with an image." group:"ANALYZE"`
}

type ImageArg struct {
	URL string `arg:"" name:"url" help:"Image URL or data URI"`
}

type DescribeCommand struct {
	ImageArg
}

type TagsCommand struct {
	ImageArg
	JSON bool `name:"json" help:"Request and print a JSON list of tags"`
}

type AskCommand struct {
	ImageArg
	Question string `arg:"" name:"question" help:"Question about the image"`
}

type CaptionCommand struct {
	ImageArg
}

type AltCommand struct {
	ImageArg
}

type StoryCommand struct {
	ImageArg
}

type SubmitCommand struct {
	ImageArg
	Instruction string `arg:"" name:"instruction" help:"Instruction for the model"`
}

type TemplatesCommand struct{}

type VersionCommand struct{}

// operation is any of the single-image text operations
type operation func(*analyzer.Analyzer, context.Context, string, ...opt.Opt) (string, error)

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *DescribeCommand) Run(ctx *Globals) error {
	return ctx.run(cmd.URL, (*analyzer.Analyzer).AnalyzeImageDescription)
}

func (cmd *TagsCommand) Run(ctx *Globals) error {
	if !cmd.JSON {
		return ctx.run(cmd.URL, (*analyzer.Analyzer).GenerateImageTags)
	}
	a, err := ctx.Analyzer()
	if err != nil {
		return err
	}
	tags, err := a.GenerateImageTagList(ctx.ctx, cmd.URL, ctx.requestOpts()...)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(tags, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func (cmd *AskCommand) Run(ctx *Globals) error {
	return ctx.run(cmd.URL, func(a *analyzer.Analyzer, parent context.Context, image string, opts ...opt.Opt) (string, error) {
		return a.AnswerQueryOfImage(parent, image, cmd.Question, opts...)
	})
}

func (cmd *CaptionCommand) Run(ctx *Globals) error {
	return ctx.run(cmd.URL, (*analyzer.Analyzer).GenerateCaption)
}

func (cmd *AltCommand) Run(ctx *Globals) error {
	return ctx.run(cmd.URL, (*analyzer.Analyzer).GenerateAltText)
}

func (cmd *StoryCommand) Run(ctx *Globals) error {
	return ctx.run(cmd.URL, (*analyzer.Analyzer).CreateStoryFromImages)
}

func (cmd *SubmitCommand) Run(ctx *Globals) error {
	return ctx.run(cmd.URL, func(a *analyzer.Analyzer, parent context.Context, image string, opts ...opt.Opt) (string, error) {
		return a.Submit(parent, image, cmd.Instruction, opts...)
	})
}

func (cmd *TemplatesCommand) Run(ctx *Globals) error {
	templates := analyzer.Templates()
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-12s %s\n", name, templates[name])
	}
	return nil
}

func (cmd *VersionCommand) Run(ctx *Globals) error {
	fmt.Println(string(version.JSON(ctx.execName)))
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (g *Globals) run(image string, fn operation) error {
	a, err := g.Analyzer()
	if err != nil {
		return err
	}
	text, err := fn(a, g.ctx, image, g.requestOpts()...)
	if errors.Is(err, vision.ErrMaxTokens) {
		// Truncated output has already been logged as a warning
		err = nil
	}
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func (g *Globals) requestOpts() []opt.Opt {
	if g.Detail == "" || g.Detail == "auto" {
		return nil
	}
	return []opt.Opt{openai.WithDetail(g.Detail)}
}
