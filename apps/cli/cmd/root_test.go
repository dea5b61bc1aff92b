package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/config"
	"github.com/abdul-hamid-achik/jsonrpcake/packages/core/env"
	"github.com/abdul-hamid-achik/jsonrpcake/packages/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type testEnv struct {
	*env.Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	// Keep config lookup away from the developer's own files.
	chdir(t, t.TempDir())
	t.Setenv("JSONRPC_CONFIG_DIR", t.TempDir())
	t.Setenv("JSONRPC_CONFIG", "")
	for _, key := range []string{"JSONRPC_PRETTY", "JSONRPC_STYLE", "JSONRPC_TIMEOUT", "JSONRPC_CHECK_STATUS", "JSONRPC_IGNORE_STDIN"} {
		t.Setenv(key, "")
	}

	var stdout, stderr bytes.Buffer
	return &testEnv{
		Environment: &env.Environment{
			ProgName:   env.ProgName,
			StdinIsTTY: true,
			Stdout:     &stdout,
			Stderr:     &stderr,
		},
		stdout: &stdout,
		stderr: &stderr,
	}
}

func (te *testEnv) withStdin(body string) *testEnv {
	te.Stdin = strings.NewReader(body)
	te.StdinIsTTY = false
	return te
}

// serveRPC starts a netstring JSON-RPC server answering every request with
// respond.
func serveRPC(t *testing.T, respond func(req []byte) []byte) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				req, err := rpc.ReadNetstring(bufio.NewReader(conn), rpc.MaxNetstringSize)
				if err != nil {
					return
				}
				_ = rpc.WriteNetstring(conn, respond(req))
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func echoParams(req []byte) []byte {
	params := gjson.GetBytes(req, "params").Raw
	if params == "" {
		params = "null"
	}
	return fmt.Appendf(nil, `{"jsonrpc":"2.0","result":%s,"id":%s}`, params, gjson.GetBytes(req, "id").Raw)
}

func methodNotFound(req []byte) []byte {
	return fmt.Appendf(nil, `{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"},"id":%s}`, gjson.GetBytes(req, "id").Raw)
}

func TestMain_SendsItemsAsParams(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, echoParams)

	code := Main(context.Background(), te.Environment, []string{addr, "echo", "name=John", "age:=29", `tags:=["a","b"]`})

	assert.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Equal(t, `{"name":"John","age":29,"tags":["a","b"]}`, te.stdout.String())
}

func TestMain_PortShorthand(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, echoParams)
	_, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)

	code := Main(context.Background(), te.Environment, []string{":" + port, "ping"})

	assert.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Equal(t, "null", te.stdout.String())
}

func TestMain_PrettyFormat(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, echoParams)

	code := Main(context.Background(), te.Environment, []string{"--pretty", "format", addr, "echo", "b=2", "a=1"})

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "{\n    \"a\": \"1\",\n    \"b\": \"2\"\n}", te.stdout.String())
}

func TestMain_TerminalOutput(t *testing.T) {
	te := newTestEnv(t)
	te.StdoutIsTTY = true
	addr := serveRPC(t, echoParams)

	code := Main(context.Background(), te.Environment, []string{addr, "echo", "a=1"})

	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "{\n    \"a\": \"1\"\n}\n\n", te.stdout.String())
}

func TestMain_InvalidPretty(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"--pretty", "loud", "localhost:1", "echo"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), `invalid choice "loud"`)
}

func TestMain_RPCErrorIsOutput(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, methodNotFound)

	code := Main(context.Background(), te.Environment, []string{addr, "nope"})

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, te.stdout.String(), `"message":"Method not found"`)
	assert.Empty(t, te.stderr.String())
}

func TestMain_CheckStatus(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, methodNotFound)

	code := Main(context.Background(), te.Environment, []string{"--check-status", addr, "nope"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stdout.String(), `"code":-32601`)
	assert.Equal(t, "\njsonrpc: warning: JSONRPC -32601 Method not found\n", te.stderr.String())
}

func TestMain_NoOptionResetsFlag(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, methodNotFound)

	code := Main(context.Background(), te.Environment, []string{"--check-status", addr, "nope", "--no-check-status"})

	assert.Equal(t, ExitSuccess, code)
}

func TestMain_UnknownNoOption(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"--no-sparkles", "localhost:1", "ping"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), "jsonrpc: error: unrecognized arguments: --no-sparkles")
}

func TestMain_ItemError(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"localhost:1", "echo", "novalue"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), `jsonrpc: error: "novalue" is not a valid value`)
	assert.Empty(t, te.stdout.String())
}

func TestMain_EmbedFile(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, echoParams)
	require.NoError(t, os.WriteFile("note.txt", []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile("data.json", []byte(`{"x":[1,2]}`), 0o644))

	code := Main(context.Background(), te.Environment, []string{addr, "echo", "note=@note.txt", "data:=@data.json"})

	assert.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Equal(t, `{"note":"hello","data":{"x":[1,2]}}`, te.stdout.String())
}

func TestMain_StdinBody(t *testing.T) {
	te := newTestEnv(t).withStdin(`[1, 2.5, "three"]`)
	addr := serveRPC(t, echoParams)

	code := Main(context.Background(), te.Environment, []string{addr, "sum"})

	assert.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Equal(t, `[1,2.5,"three"]`, te.stdout.String())
}

func TestMain_StdinBodyConflict(t *testing.T) {
	te := newTestEnv(t).withStdin(`{"a":1}`)

	code := Main(context.Background(), te.Environment, []string{"localhost:1", "echo", "a=1"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), "Request body (from stdin or a file) and request data (key=value) cannot be mixed.")
}

func TestMain_InvalidStdinBody(t *testing.T) {
	te := newTestEnv(t).withStdin(`{broken`)

	code := Main(context.Background(), te.Environment, []string{"localhost:1", "echo"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), "Failed to parse request body (from stdin or a file):\n{broken")
}

func TestMain_IgnoreStdin(t *testing.T) {
	te := newTestEnv(t).withStdin(`{broken`)
	addr := serveRPC(t, echoParams)

	code := Main(context.Background(), te.Environment, []string{"--ignore-stdin", addr, "echo", "a=1"})

	assert.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Equal(t, `{"a":"1"}`, te.stdout.String())
}

func TestMain_Timeout(t *testing.T) {
	te := newTestEnv(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.Copy(io.Discard, conn)
	}()

	code := Main(context.Background(), te.Environment, []string{"--timeout", "0.2", ln.Addr().String(), "slow"})

	assert.Equal(t, ExitTimeout, code)
	assert.Contains(t, te.stderr.String(), "jsonrpc: error: Request timed out (0.2s).")
}

func TestMain_ConnectionRefusedTraceback(t *testing.T) {
	te := newTestEnv(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	code := Main(context.Background(), te.Environment, []string{"--traceback", addr, "ping"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), "jsonrpc: error: connecting to "+addr)
	assert.Contains(t, te.stderr.String(), "Traceback:")
}

func TestMain_DebugAlone(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"--debug"})

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, te.stderr.String(), "jsonrpc dev")
}

func TestMain_DebugLogging(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, echoParams)

	code := Main(context.Background(), te.Environment, []string{"--debug", addr, "echo", "a=1"})

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, te.stderr.String(), "level=DEBUG")
	assert.Contains(t, te.stderr.String(), "component=rpc")
	assert.Equal(t, `{"a":"1"}`, te.stdout.String())
}

func TestMain_MissingArguments(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"localhost:1"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), "usage: jsonrpc")
}

func TestMain_OutputWithRedirectedStdout(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"-o", "out.json", "localhost:1", "ping"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), "Cannot use --output, -o with redirected output.")
}

func TestMain_OutputFile(t *testing.T) {
	te := newTestEnv(t)
	te.StdoutIsTTY = true
	addr := serveRPC(t, echoParams)
	out := filepath.Join(t.TempDir(), "out.json")

	code := Main(context.Background(), te.Environment, []string{"--output", out, addr, "echo", "a:=1"})

	assert.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Empty(t, te.stdout.String())
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestMain_ConfigDefaultOptions(t *testing.T) {
	te := newTestEnv(t)
	addr := serveRPC(t, methodNotFound)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("defaultOptions:\n  - --check-status\n"), 0o644))

	code := Main(context.Background(), te.Environment, []string{"--config", cfgPath, addr, "nope"})
	assert.Equal(t, ExitError, code)

	te.stdout.Reset()
	te.stderr.Reset()
	code = Main(context.Background(), te.Environment, []string{"--config", cfgPath, "--no-check-status", addr, "nope"})
	assert.Equal(t, ExitSuccess, code)
}

func TestMain_ConfigMergedOverDefaults(t *testing.T) {
	te := newTestEnv(t)
	te.Colors = env.Colors256
	addr := serveRPC(t, echoParams)
	require.NoError(t, os.WriteFile(DefaultConfigFile, []byte(`{"style": "monokai", "pretty": "all"}`), 0o644))

	code := Main(context.Background(), te.Environment, []string{addr, "echo", "a:=1"})

	assert.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Contains(t, te.stdout.String(), "\x1b[38;5;197m\"a\"")
	assert.Contains(t, te.stdout.String(), "\n    ")
}

func TestNewRootCmd_FlagDefaultsFromConfig(t *testing.T) {
	te := newTestEnv(t)
	cfg := config.DefaultConfig().Merge(&config.Config{Pretty: "format"})

	root := newRootCmd(&app{env: te.Environment, cfg: cfg, opts: &options{}})

	assert.Equal(t, "format", root.Flags().Lookup("pretty").DefValue)
	assert.Equal(t, config.DefaultStyle, root.Flags().Lookup("style").DefValue)
	assert.Equal(t, "30", root.Flags().Lookup("timeout").DefValue)
	assert.Equal(t, "false", root.Flags().Lookup("check-status").DefValue)
}

func TestMain_ConfigInit(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"config", "init"})
	require.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Contains(t, te.stdout.String(), "Created: "+DefaultConfigFile)

	cfg, err := config.LoadConfig(DefaultConfigFile)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultStyle, cfg.Style)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.True(t, cfg.IsDefault())

	te.stderr.Reset()
	code = Main(context.Background(), te.Environment, []string{"config", "init"})
	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), "file already exists: "+DefaultConfigFile)

	code = Main(context.Background(), te.Environment, []string{"config", "init", "--force"})
	assert.Equal(t, ExitSuccess, code)
}

func TestMain_ConfigInitYAML(t *testing.T) {
	te := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")

	code := Main(context.Background(), te.Environment, []string{"config", "init", path})
	require.Equal(t, ExitSuccess, code, te.stderr.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "style: solarized")
}

func TestMain_InvalidConfig(t *testing.T) {
	te := newTestEnv(t)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"timeout": "soon"}`), 0o644))

	code := Main(context.Background(), te.Environment, []string{"--config", cfgPath, "localhost:1", "ping"})

	assert.Equal(t, ExitError, code)
	assert.Contains(t, te.stderr.String(), "jsonrpc: error:")
}

func TestMain_HTTPTransport(t *testing.T) {
	te := newTestEnv(t)

	var gotHeader, gotQuery, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Token")
		gotQuery = r.URL.Query().Get("trace")
		gotUser, gotPass, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(echoParams(body))
	}))
	t.Cleanup(srv.Close)

	code := Main(context.Background(), te.Environment, []string{
		"--auth", "alice:s3cret",
		srv.URL, "echo", "X-Token:abc", "trace==1", "n:=3",
	})

	assert.Equal(t, ExitSuccess, code, te.stderr.String())
	assert.Equal(t, `{"n":3}`, te.stdout.String())
	assert.Equal(t, "abc", gotHeader)
	assert.Equal(t, "1", gotQuery)
	assert.Equal(t, "alice", gotUser)
	assert.Equal(t, "s3cret", gotPass)
}

func TestMain_Version(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"version"})

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, te.stdout.String(), "jsonrpc version dev")
}

func TestMain_Completion(t *testing.T) {
	te := newTestEnv(t)

	code := Main(context.Background(), te.Environment, []string{"completion", "bash"})

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, te.stdout.String(), "bash completion")
}

func TestReplayReader(t *testing.T) {
	r := newReplayReader(strings.NewReader("payload"))

	first, err := io.ReadAll(r.Reader())
	require.NoError(t, err)
	second, err := io.ReadAll(r.Reader())
	require.NoError(t, err)

	assert.Equal(t, "payload", string(first))
	assert.Equal(t, "payload", string(second))
}

func TestConfigPathFromArgs(t *testing.T) {
	t.Setenv("JSONRPC_CONFIG", "from-env.yaml")

	assert.Equal(t, "a.yaml", configPathFromArgs([]string{"--config", "a.yaml", ":3000", "ping"}))
	assert.Equal(t, "b.json", configPathFromArgs([]string{":3000", "--config=b.json", "ping"}))
	assert.Equal(t, "from-env.yaml", configPathFromArgs([]string{":3000", "ping", "--", "--config", "x"}))
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
