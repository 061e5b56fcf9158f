package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"

	"github.com/99designs/keyring"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	salamoonder "github.com/anatolykoptev/go-salamoonder"
	"github.com/anatolykoptev/go-salamoonder/internal/keychain"
)

func TestMain(m *testing.M) {
	pterm.DisableOutput()
	os.Exit(m.Run())
}

// fakeAPI answers createTask with a fixed id and getTaskResult with queued bodies.
type fakeAPI struct {
	mu       sync.Mutex
	lastKey  string
	lastTask map[string]any
	results  []string
}

func (f *fakeAPI) DoWithHeaderOrderCtx(_ context.Context, method, url string, _ map[string]string, body io.Reader, _ []string) ([]byte, map[string]string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var req map[string]any
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return []byte(`{"error":"bad json"}`), nil, 400, nil
	}
	f.lastKey, _ = req["api_key"].(string)

	if strings.HasSuffix(url, "/createTask") {
		f.lastTask, _ = req["task"].(map[string]any)
		return []byte(`{"taskId":"task-1"}`), nil, 200, nil
	}
	if len(f.results) == 0 {
		return []byte(`{"error":"Task not found"}`), nil, 404, nil
	}
	next := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return []byte(next), nil, 200, nil
}

// setup installs a fake API and an in-memory keychain for one test.
func setup(t *testing.T) (*fakeAPI, *keychain.Store) {
	t.Helper()
	api := &fakeAPI{}
	store := keychain.New(keyring.NewArrayKeyring(nil))

	prevTransport, prevOpen := transport, openKeychain
	transport = api
	openKeychain = func() (*keychain.Store, error) { return store, nil }
	t.Cleanup(func() { transport, openKeychain = prevTransport, prevOpen })
	t.Setenv(envAPIKey, "")
	return api, store
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	flags = rootFlags{}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCreate(t *testing.T) {
	api, _ := setup(t)

	out, err := run(t, "", "create", "twitch_checkintegrity", "token=v4.public.abc", "--api-key", "sk_flag")
	require.NoError(t, err)
	assert.Equal(t, "task-1\n", out)
	assert.Equal(t, "sk_flag", api.lastKey)
	assert.Equal(t, map[string]any{"type": "Twitch_CheckIntegrity", "token": "v4.public.abc"}, api.lastTask)
}

func TestCreate_TypedAndFileParams(t *testing.T) {
	api, _ := setup(t)

	script := filepath.Join(t.TempDir(), "akamai.js")
	require.NoError(t, os.WriteFile(script, []byte("var bmak={};"), 0o600))

	_, err := run(t, "", "--api-key", "k", "create", "AkamaiWebSensorSolver",
		"url=https://www.example.com", "abck=a", "bmsz=b", "script=@"+script,
		"sensor_url=https://www.example.com/x", "count=2", "data=")
	require.NoError(t, err)
	assert.Equal(t, "var bmak={};", api.lastTask["script"])
	assert.Equal(t, float64(2), api.lastTask["count"])
	assert.Equal(t, "", api.lastTask["data"])

	_, err = run(t, "", "--api-key", "k", "create", "IncapsulaReese84Solver", "website=https://a", "submit_payload=true")
	require.NoError(t, err)
	assert.Equal(t, true, api.lastTask["submit_payload"])
}

func TestCreate_BadArguments(t *testing.T) {
	setup(t)

	_, err := run(t, "", "--api-key", "k", "create", "RecaptchaV2")
	assert.ErrorContains(t, err, "unknown task type")

	_, err = run(t, "", "--api-key", "k", "create", "Twitch_CheckIntegrity", "token")
	assert.ErrorContains(t, err, "want key=value")

	_, err = run(t, "", "--api-key", "k", "create", "AkamaiWebSensorSolver", "count=many")
	assert.Error(t, err)

	_, err = run(t, "", "--api-key", "k", "create", "Twitch_CheckIntegrity")
	var re *salamoonder.RequestError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, salamoonder.ReasonInvalidTask, re.Reason)
}

func TestResult(t *testing.T) {
	api, _ := setup(t)

	api.results = []string{`{"status":"PENDING"}`}
	out, err := run(t, "", "--api-key", "k", "result", "task-1")
	require.NoError(t, err)
	assert.Equal(t, "pending\n", out)

	api.results = []string{`{"status":"ready","solution":"SOLVED_TOKEN"}`}
	out, err = run(t, "", "--api-key", "k", "result", "task-1")
	require.NoError(t, err)
	assert.Equal(t, "SOLVED_TOKEN\n", out)

	api.results = []string{`{"status":"ready","solution":{"payload":"p","user-agent":"UA"}}`}
	out, err = run(t, "", "--api-key", "k", "result", "task-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"payload":"p","user-agent":"UA"}`, out)

	api.results = []string{`{"status":"failed","error":"unsolvable"}`}
	_, err = run(t, "", "--api-key", "k", "result", "task-1")
	var se *salamoonder.ServiceError
	require.ErrorAs(t, err, &se)

	api.results = nil
	_, err = run(t, "", "--api-key", "k", "result", "gone")
	assert.True(t, salamoonder.IsNotFound(err))
}

func TestSolve(t *testing.T) {
	api, _ := setup(t)
	api.results = []string{`{"status":"PENDING"}`, `{"status":"ready","solution":"tok"}`}

	out, err := run(t, "", "--api-key", "k", "solve", "Twitch_RegisterAccount", "email=a@b.c", "--poll-interval", "1ms")
	require.NoError(t, err)
	assert.Equal(t, "tok\n", out)
}

func TestSolve_Failed(t *testing.T) {
	api, _ := setup(t)
	api.results = []string{`{"status":"failed","error_description":"proxy banned"}`}

	_, err := run(t, "", "--api-key", "k", "solve", "Twitch_RegisterAccount", "email=a@b.c", "--poll-interval", "1ms")
	var se *salamoonder.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "proxy banned", se.Message)
}

func TestTypes(t *testing.T) {
	setup(t)

	out, err := run(t, "", "types")
	require.NoError(t, err)
	for _, tt := range salamoonder.TaskTypes {
		assert.Contains(t, out, string(tt))
	}
	assert.Contains(t, out, "cdOnly")

	out, err = run(t, "", "types", "kasadacaptchasolver")
	require.NoError(t, err)
	assert.Contains(t, out, "pjs_url")
	assert.NotContains(t, out, "DataDomeSliderSolver")
}

func TestAPIKeyResolution(t *testing.T) {
	api, store := setup(t)

	_, err := run(t, "", "create", "Twitch_RegisterAccount", "email=a@b.c")
	assert.ErrorIs(t, err, salamoonder.ErrMissingAPIKey)

	require.NoError(t, store.Save("sk_keychain"))
	_, err = run(t, "", "create", "Twitch_RegisterAccount", "email=a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "sk_keychain", api.lastKey)

	t.Setenv(envAPIKey, "sk_env")
	_, err = run(t, "", "create", "Twitch_RegisterAccount", "email=a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "sk_env", api.lastKey)

	_, err = run(t, "", "--api-key", "sk_flag", "create", "Twitch_RegisterAccount", "email=a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "sk_flag", api.lastKey)
}

func TestLoginLogout(t *testing.T) {
	_, store := setup(t)

	_, err := run(t, "sk_from_stdin\n", "login")
	require.NoError(t, err)
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk_from_stdin", got)

	_, err = run(t, "", "login", "sk_arg")
	require.NoError(t, err)
	got, _ = store.Load()
	assert.Equal(t, "sk_arg", got)

	_, err = run(t, "", "logout")
	require.NoError(t, err)
	_, err = store.Load()
	assert.ErrorIs(t, err, keychain.ErrNotFound)

	_, err = run(t, "", "login")
	assert.Error(t, err)
}

func TestShutdownSignals(t *testing.T) {
	assert.Contains(t, shutdownSignals, os.Interrupt)
	assert.Contains(t, shutdownSignals, os.Signal(syscall.SIGTERM))
}
