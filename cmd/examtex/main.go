// Command examtex compiles exam markup into LaTeX exam, answer sheet and
// answer key documents.
package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/ExamTeX/internal/config"
	"github.com/FocuswithJustin/ExamTeX/internal/logging"
)

const version = "0.4.0"

// CLI defines the command-line interface for examtex.
type CLI struct {
	// Global flags
	Config    string `name:"config" short:"c" help:"Config file (default: ./examtex.yaml)" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error (overrides config)"`
	LogFormat string `name:"log-format" help:"Log format: text or json (overrides config)"`
	DSN       string `name:"dsn" help:"Answer key registry: SQLite path or postgres:// URL (overrides config)"`

	Compile  CompileCmd    `cmd:"" help:"Compile an exam into exam, answer sheet and answer key .tex files"`
	Check    CheckCmd      `cmd:"" help:"Parse and render an exam without writing files"`
	Bundle   BundleCmd     `cmd:"" help:"Compile an exam into a .tar.xz bundle with a manifest"`
	Keys     KeysGroup     `cmd:"" help:"Answer key registry"`
	Serve    ServeCmd      `cmd:"" help:"Start the HTTP compile service"`
	Template TemplateGroup `cmd:"" help:"Template operations"`
	Version  VersionCmd    `cmd:"" help:"Print version information"`
}

// KeysGroup contains answer key registry operations.
type KeysGroup struct {
	List KeysListCmd `cmd:"" help:"List recorded builds"`
	Show KeysShowCmd `cmd:"" help:"Show the answers of a build"`
}

// TemplateGroup contains template operations.
type TemplateGroup struct {
	Dump TemplateDumpCmd `cmd:"" help:"Print the effective template snippets"`
}

// App is the state shared by every command.
type App struct {
	Config *config.Config
	Out    io.Writer
}

// newApp loads configuration and applies the global flags.
func newApp(cli *CLI, out io.Writer) (*App, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	if cli.DSN != "" {
		cfg.Store.DSN = cli.DSN
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.InitLogger(cfg.Logging())
	return &App{Config: cfg, Out: out}, nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("examtex"),
		kong.Description("ExamTeX - exam markup to LaTeX compiler"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	app, err := newApp(&cli, os.Stdout)
	ctx.FatalIfErrorf(err)
	err = ctx.Run(app)
	ctx.FatalIfErrorf(err)
}
