package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/config"
	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/env"
	"github.com/abdul-hamid-achik/jsonrpcake/packages/output"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// options holds the flag values of one invocation.
type options struct {
	pretty      string
	style       string
	output      string
	timeout     float64
	checkStatus bool
	ignoreStdin bool
	traceback   bool
	debug       bool
	watch       bool
	configPath  string
	auth        string
	proxy       string
	insecure    bool
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Main(ctx, env.FromOS(), os.Args[1:])
	stop()
	os.Exit(code)
}

// Main runs the CLI against e and returns the exit status.
func Main(ctx context.Context, e *env.Environment, args []string) int {
	console := output.NewConsole(
		output.WithWriter(e.Stderr),
		output.WithProgName(e.ProgName),
		output.WithNoColor(!e.StderrIsTTY),
	)

	if slices.Equal(args, []string{"--debug"}) {
		printDebugInfo(e.Stderr)
		return ExitSuccess
	}

	loaded, err := config.LoadConfig(configPathFromArgs(args))
	if err != nil {
		console.Error(err.Error())
		return ExitError
	}
	cfg := config.DefaultConfig().Merge(loaded)
	args = append(slices.Clone(cfg.DefaultOptions), args...)

	a := &app{
		env:     e,
		cfg:     cfg,
		opts:    &options{},
		console: console,
		stdin:   newReplayReader(e.Stdin),
	}
	root := newRootCmd(a)

	args, err = resetNoOptions(root.Flags(), args)
	if err != nil {
		return usageError(root, console, err)
	}

	root.SetArgs(args)
	root.SetIn(e.Stdin)
	root.SetOut(e.Stdout)
	root.SetErr(e.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		return usageError(root, console, err)
	}
	return a.code
}

func usageError(root *cobra.Command, console *output.Console, err error) int {
	fmt.Fprintf(root.ErrOrStderr(), "usage: %s\n", root.UseLine())
	console.Error(err.Error())
	return ExitError
}

func newRootCmd(a *app) *cobra.Command {
	cfg, opts := a.cfg, a.opts

	root := &cobra.Command{
		Use:   "jsonrpc [flags] ADDR METHOD [REQUEST_ITEM...]",
		Short: "JSON-RPC for humans.",
		Long: `jsonrpc sends a JSON-RPC 2.0 call built from command-line items and
prints the response.

ADDR is host:port (":3000" means localhost:3000) for netstring over TCP,
or an http(s) URL for JSON-RPC over HTTP POST.

Request items:
  key=value       string param
  key:=json       raw JSON param
  key=@file       string param read from a UTF-8 text file
  key:=@file      raw JSON param read from a file
  Header:value    HTTP header
  name==value     URL query parameter
  field@file      file upload

Use "\" to escape separator characters in keys or values.

Examples:
  jsonrpc :3000 ping
  jsonrpc localhost:3000 user.create name=John age:=29 tags:='["a","b"]'
  echo '[1, 2]' | jsonrpc :3000 sum
  jsonrpc https://api.example.com/rpc status X-API-Token:secret`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.debug && len(args) == 0 {
				return nil
			}
			return cobra.MinimumNArgs(2)(cmd, args)
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.code = a.run(cmd.Context(), args)
			return nil
		},
	}

	f := root.Flags()
	// Output flags
	f.StringVar(&opts.pretty, "pretty", getEnvString("JSONRPC_PRETTY", cfg.Pretty), "Output processing: all, colors, format, none (default: all for a terminal, none otherwise) (env: JSONRPC_PRETTY)")
	f.StringVarP(&opts.style, "style", "s", getEnvString("JSONRPC_STYLE", cfg.Style), "Output coloring style: "+strings.Join(output.Styles(), ", ")+" (env: JSONRPC_STYLE)")
	f.StringVarP(&opts.output, "output", "o", "", "Save output to FILE instead of stdout")

	// Input flags
	f.BoolVar(&opts.ignoreStdin, "ignore-stdin", getEnvBool("JSONRPC_IGNORE_STDIN", cfg.GetIgnoreStdin()), "Do not read a request body from stdin (env: JSONRPC_IGNORE_STDIN)")

	// Network flags
	f.Float64Var(&opts.timeout, "timeout", getEnvFloat("JSONRPC_TIMEOUT", cfg.Timeout), "Call timeout in seconds, 0 disables it (env: JSONRPC_TIMEOUT)")
	f.BoolVar(&opts.checkStatus, "check-status", getEnvBool("JSONRPC_CHECK_STATUS", cfg.GetCheckStatus()), "Exit with an error when the response is a JSON-RPC error (env: JSONRPC_CHECK_STATUS)")
	f.StringVarP(&opts.auth, "auth", "a", getEnvString("JSONRPC_AUTH", ""), "USER[:PASS] basic auth for HTTP endpoints (env: JSONRPC_AUTH)")
	f.StringVar(&opts.proxy, "proxy", getEnvString("JSONRPC_PROXY", ""), "Proxy URL for HTTP endpoints (env: JSONRPC_PROXY)")
	f.BoolVarP(&opts.insecure, "insecure", "k", getEnvBool("JSONRPC_INSECURE", false), "Disable SSL certificate validation (env: JSONRPC_INSECURE)")

	// Troubleshooting flags
	f.BoolVar(&opts.traceback, "traceback", false, "Print the full error chain on failure")
	f.BoolVar(&opts.debug, "debug", false, "Enable debug logging, implies --traceback")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Watch files referenced by items and repeat the call when they change")
	f.StringVar(&opts.configPath, "config", getEnvString("JSONRPC_CONFIG", ""), "Path to config file (env: JSONRPC_CONFIG)")

	_ = root.RegisterFlagCompletionFunc("pretty", cobra.FixedCompletions(output.PrettyChoices(), cobra.ShellCompDirectiveNoFileComp))
	_ = root.RegisterFlagCompletionFunc("style", cobra.FixedCompletions(output.Styles(), cobra.ShellCompDirectiveNoFileComp))

	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompletionCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// configPathFromArgs finds --config before flags are parsed, since the
// config file can contribute arguments of its own.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--config="); ok {
			return v
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return getEnvString("JSONRPC_CONFIG", "")
}
