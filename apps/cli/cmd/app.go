package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/config"
	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/env"
	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/items"
	"github.com/abdul-hamid-achik/jsonrpcake/packages/output"
	"github.com/abdul-hamid-achik/jsonrpcake/packages/rpc"
)

// errRedirectedOutput is reported for --output when stdout is not a
// terminal.
var errRedirectedOutput = errors.New("Cannot use --output, -o with redirected output.")

// app carries the state of one invocation.
type app struct {
	env     *env.Environment
	cfg     *config.Config
	opts    *options
	console *output.Console
	logger  *slog.Logger
	stdin   *replayReader
	code    int

	// newCaller builds the RPC client; replaced in tests.
	newCaller func(opts ...rpc.ClientOption) rpc.Caller
}

func (a *app) run(ctx context.Context, args []string) int {
	if a.opts.debug {
		a.opts.traceback = true
	}
	a.logger = newLogger(a.env.Stderr, a.opts.debug)
	a.logger.Debug("config",
		"component", "cli",
		"path", a.cfg.Path,
		"default", a.cfg.IsDefault(),
	)

	if len(args) == 0 {
		printDebugInfo(a.env.Stderr)
		return ExitSuccess
	}
	if a.opts.output != "" && !a.env.StdoutIsTTY {
		return a.fail(errRedirectedOutput)
	}
	if a.opts.style != "" && !output.IsStyle(a.opts.style) {
		return a.fail(fmt.Errorf("invalid choice %q for --style (choose from %v)", a.opts.style, output.Styles()))
	}
	if _, err := output.GroupsFor(a.opts.pretty, a.env); err != nil {
		return a.fail(err)
	}

	addr, method, itemArgs := args[0], args[1], args[2:]
	a.logger.Debug("invocation",
		"component", "cli",
		"addr", addr,
		"method", method,
		"items", len(itemArgs),
	)

	if a.opts.watch {
		return a.watch(ctx, addr, method, itemArgs)
	}
	code, _ := a.call(ctx, addr, method, itemArgs)
	return code
}

// call performs one request/response exchange and writes the response. It
// returns the exit status and the files referenced by the items.
func (a *app) call(ctx context.Context, addr, method string, itemArgs []string) (int, []string) {
	parser := items.NewParser(items.WithLogger(a.logger.With("component", "items")))
	parts, err := parser.Parse(itemArgs)
	if err != nil {
		return a.fail(err), parser.Sources(itemArgs)
	}

	if a.readsStdin() {
		if err := parts.ReadBody(a.stdin.Reader()); err != nil {
			return a.fail(err), parts.Sources
		}
	}

	if n := parts.Files.Len(); n > 0 {
		a.logger.Warn("file upload items are not sent over JSON-RPC", "component", "cli", "count", n)
	}

	caller := a.caller(parts)
	result, err := caller.Call(ctx, addr, method, parts.RPCParams())

	code := ExitSuccess
	var rpcErr *rpc.Error
	switch {
	case errors.As(err, &rpcErr):
		result = rpcErr.Value()
		if a.opts.checkStatus {
			code = ExitError
			a.console.Warning(rpcErr.Error())
		}
	case err != nil:
		return a.fail(err), parts.Sources
	}

	if err := a.write(result); err != nil {
		if errors.Is(err, syscall.EPIPE) && !a.opts.traceback {
			a.console.Newline()
			return code, parts.Sources
		}
		return a.fail(err), parts.Sources
	}
	return code, parts.Sources
}

func (a *app) readsStdin() bool {
	return !a.opts.ignoreStdin && !a.env.StdinIsTTY && a.env.Stdin != nil
}

func (a *app) caller(parts *items.RequestParts) rpc.Caller {
	opts := []rpc.ClientOption{
		rpc.WithTimeout(a.timeout()),
		rpc.WithLogger(a.logger),
		rpc.WithDefaultHeaders(a.cfg.Headers),
		rpc.WithValidateSSL(!a.opts.insecure),
	}
	if a.opts.proxy != "" {
		opts = append(opts, rpc.WithProxy(a.opts.proxy))
	}
	if a.opts.auth != "" {
		creds := items.ParseCredentials(a.opts.auth)
		opts = append(opts, rpc.WithBasicAuth(creds.Username, creds.Password))
	}
	for _, key := range parts.Headers.Keys() {
		for _, v := range parts.Headers.Values(key) {
			opts = append(opts, rpc.WithHeader(key, fmt.Sprint(v)))
		}
	}
	for _, key := range parts.Params.Keys() {
		for _, v := range parts.Params.Values(key) {
			opts = append(opts, rpc.WithQueryParam(key, fmt.Sprint(v)))
		}
	}

	if a.newCaller != nil {
		return a.newCaller(opts...)
	}
	return rpc.NewClient(opts...)
}

func (a *app) timeout() time.Duration {
	if a.opts.timeout <= 0 {
		return 0
	}
	return time.Duration(a.opts.timeout * float64(time.Second))
}

// write runs result through the output pipeline to stdout or --output.
func (a *app) write(result []byte) error {
	e := a.env
	if a.opts.output != "" {
		f, err := os.Create(a.opts.output)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer f.Close()
		e = e.WithStdout(f)
	}

	groups, err := output.GroupsFor(a.opts.pretty, e)
	if err != nil {
		return err
	}
	pipeline, err := output.NewPipeline(e, groups, output.Options{Style: a.opts.style})
	if err != nil {
		return err
	}

	var flush func() error
	if e.StdoutIsTTY {
		flush = e.FlushStdout
	}
	return output.Write(output.BuildStream(e, pipeline, result), e.Stdout, flush)
}

// fail reports err and returns the matching exit status.
func (a *app) fail(err error) int {
	if errors.Is(err, context.Canceled) {
		a.console.Newline()
		return ExitError
	}

	code := ExitError
	if rpc.IsTimeout(err) {
		a.console.Error(fmt.Sprintf("Request timed out (%gs).", a.opts.timeout))
		code = ExitTimeout
	} else {
		a.console.Error(err.Error())
	}
	if a.opts.traceback {
		a.console.Traceback(err)
	}
	return code
}

// replayReader reads its source once and replays what was read, so a
// watched call can reuse the stdin body.
type replayReader struct {
	src  io.Reader
	buf  bytes.Buffer
	done bool
}

func newReplayReader(src io.Reader) *replayReader {
	return &replayReader{src: src}
}

func (r *replayReader) Reader() io.Reader {
	if r.done {
		return bytes.NewReader(r.buf.Bytes())
	}
	return readerFunc(func(p []byte) (int, error) {
		n, err := r.src.Read(p)
		r.buf.Write(p[:n])
		if err == io.EOF {
			r.done = true
		}
		return n, err
	})
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) { return f(p) }
