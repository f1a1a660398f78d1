package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	client "github.com/mutablelogic/go-client"
	analyzer "github.com/mutablelogic/go-vision/pkg/analyzer"
	version "github.com/mutablelogic/go-vision/pkg/version"
	zerolog "github.com/rs/zerolog"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool `name:"debug" help:"Enable debug output"`
	Verbose bool `name:"verbose" help:"Enable verbose output"`

	// OpenAI
	OpenAI `embed:"" help:"OpenAI configuration"`

	// Context
	ctx      context.Context
	log      zerolog.Logger
	execName string
}

type OpenAI struct {
	OpenAIKey string        `name:"openai-api-key" env:"OPENAI_API_KEY" help:"OpenAI API Key"`
	Model     string        `name:"model" env:"VISION_MODEL" help:"Model name" default:"gpt-4o"`
	MaxTokens uint          `name:"max-tokens" help:"Maximum number of tokens to generate" default:"300"`
	Detail    string        `name:"detail" help:"Image detail (auto, low, high)" enum:"auto,low,high" default:"auto"`
	Timeout   time.Duration `name:"timeout" help:"Request timeout" default:"60s"`
}

type CLI struct {
	Globals

	// Commands
	AnalyzeCommands `embed:""`

	Templates TemplatesCommand `cmd:"" name:"templates" help:"List the fixed instructions"`
	Version   VersionCommand   `cmd:"" name:"version" help:"Print version information"`
}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Image description, tags, captions and stories from a multimodal model"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.execName = execName()

	// Create a logger
	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	cli.Globals.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	// Run the command
	if err := cmd.Run(&cli.Globals); err != nil {
		cmd.FatalIfErrorf(err)
		return
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Analyzer returns an analyzer configured from the global flags
func (g *Globals) Analyzer() (*analyzer.Analyzer, error) {
	clientOpts := []client.ClientOpt{
		client.OptUserAgent(version.UserAgent(g.execName)),
	}
	if g.Debug || g.Verbose {
		clientOpts = append(clientOpts, client.OptTrace(os.Stderr, g.Verbose))
	}
	if g.Timeout > 0 {
		clientOpts = append(clientOpts, client.OptTimeout(g.Timeout))
	}
	return analyzer.New(g.OpenAIKey,
		analyzer.WithModel(g.Model),
		analyzer.WithMaxTokens(g.MaxTokens),
		analyzer.WithLogger(g.log),
		analyzer.WithClientOpts(clientOpts...),
	)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}
