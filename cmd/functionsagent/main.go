package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/avi3tal/functionsagent/internal/config"
)

type CLI struct {
	Run      RunCmd      `cmd:"" help:"Run the agent once over a batch of items."`
	Watch    WatchCmd    `cmd:"" help:"Run the agent for every JSON line read from stdin."`
	Schedule ScheduleCmd `cmd:"" help:"Run the agent over a batch on a cron schedule."`
	Validate ValidateCmd `cmd:"" help:"Validate a node configuration file."`
	Version  VersionCmd  `cmd:"" help:"Show version information."`

	Config    string `short:"c" help:"Path to node config file." type:"path" default:"node.yaml"`
	EnvFile   string `name:"env-file" help:"Additional .env file to load." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info" enum:"debug,info,warn,error"`
	LogFormat string `help:"Log format (text, json)." default:"text" enum:"text,json"`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("functionsagent version %s\n", version)
	return nil
}

type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	fmt.Printf("%s: ok (mode=%s, provider=%s, tools=%d, parsers=%d)\n",
		cfg.Name, cfg.Mode, cfg.Model.Provider, len(cfg.Tools), len(cfg.OutputParsers))
	return nil
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("functionsagent"),
		kong.Description("OpenAI functions agent node runner"),
		kong.UsageOnError(),
	)

	if err := config.LoadDotEnv(cli.EnvFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}
	_ = config.LoadDotEnvForConfig(cli.Config)

	slog.SetDefault(newLogger(os.Stderr, cli.LogLevel, cli.LogFormat))

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
