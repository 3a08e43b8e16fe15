package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todo-client/internal/model"
	"github.com/idilsaglam/todo-client/internal/todoapi/todoapitest"
	"github.com/idilsaglam/todo-client/internal/ui"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// run executes the CLI against srv with a throwaway config home.
func run(t *testing.T, srv *todoapitest.Server, args ...string) result {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TODO_BASE_URL", "")
	t.Setenv("TODO_THEME", "")
	t.Cleanup(func() {
		ui.SetColorForcing(false, false)
		ui.SetTheme("classic")
	})

	full := []string{"--theme", "mono", "--no-color"}
	if srv != nil {
		full = append(full, "--base-url", srv.URL)
	}
	full = append(full, args...)

	var out, errOut bytes.Buffer
	code := Run(context.Background(), full, &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestNoArgsPrintsHelp(t *testing.T) {
	r := run(t, nil)
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stdout, "Usage:")
}

func TestUnknownCommand(t *testing.T) {
	r := run(t, nil, "frobnicate")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown command")
}

func TestList(t *testing.T) {
	srv := todoapitest.New(t,
		model.Item{ID: "1", Text: "buy milk"},
		model.Item{ID: "2", Text: "walk", Completed: true},
	)

	r := run(t, srv, "ls")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Todos  x 1  - 1  Total 2")
	assert.Contains(t, r.stdout, "1 [ ] buy milk")
	assert.Contains(t, r.stdout, "2 [x] walk")
}

func TestListGrouped(t *testing.T) {
	srv := todoapitest.New(t, model.Item{ID: "1", Text: "a", Completed: true}, model.Item{ID: "2", Text: "b"})

	r := run(t, srv, "ls", "--group")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Less(t, bytes.Index([]byte(r.stdout), []byte("Pending")), bytes.Index([]byte(r.stdout), []byte("Done")))
}

func TestListJSON(t *testing.T) {
	seed := []model.Item{{ID: "1", Text: "a"}}
	srv := todoapitest.New(t, seed...)

	r := run(t, srv, "ls", "--json")
	require.Equal(t, ExitOK, r.code, r.stderr)

	var got []model.Item
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &got))
	assert.Equal(t, seed, got)
}

func TestListServerDown(t *testing.T) {
	srv := todoapitest.New(t)
	srv.Close()

	r := run(t, srv, "ls")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "load: Could not reach the server")
}

func TestAdd(t *testing.T) {
	srv := todoapitest.New(t)
	srv.NextID = func() string { return "7" }

	r := run(t, srv, "add", "buy", "milk")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "added 7")
	assert.Equal(t, []model.Item{{ID: "7", Text: "buy milk"}}, srv.Items())
}

func TestAddBlank(t *testing.T) {
	srv := todoapitest.New(t)

	r := run(t, srv, "add", "   ")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "add: empty text")
	assert.Zero(t, srv.TotalCalls())
}

func TestAddServerError(t *testing.T) {
	srv := todoapitest.New(t)
	srv.Fail("create", todoapitest.Failure{Status: http.StatusBadRequest, Message: "duplicate"})

	r := run(t, srv, "add", "x")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "add: duplicate")
}

func TestDone(t *testing.T) {
	srv := todoapitest.New(t, model.Item{ID: "1", Text: "a"})

	r := run(t, srv, "done", "1")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "marked done")
	assert.True(t, srv.Items()[0].Completed)

	r = run(t, srv, "done", "1")
	assert.Contains(t, r.stdout, "marked pending")
}

func TestDoneUnknownID(t *testing.T) {
	srv := todoapitest.New(t, model.Item{ID: "1", Text: "a"})

	r := run(t, srv, "done", "9")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "no item with id 9")
	assert.Contains(t, r.stderr, "todo ls")
	assert.Zero(t, srv.Calls("update"))
}

func TestEdit(t *testing.T) {
	srv := todoapitest.New(t, model.Item{ID: "1", Text: "milk"})

	r := run(t, srv, "edit", "1", "oat", "milk")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "saved")
	assert.Equal(t, "oat milk", srv.Items()[0].Text)
}

func TestEditUnchanged(t *testing.T) {
	srv := todoapitest.New(t, model.Item{ID: "1", Text: "milk"})

	r := run(t, srv, "edit", "1", "milk")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, "unchanged")
	assert.Zero(t, srv.Calls("update"))
}

func TestEditMissingArgs(t *testing.T) {
	r := run(t, nil, "edit", "1")
	assert.Equal(t, ExitUsage, r.code)
}

func TestRemove(t *testing.T) {
	srv := todoapitest.New(t, model.Item{ID: "1", Text: "a"}, model.Item{ID: "2", Text: "b"})

	r := run(t, srv, "rm", "1")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Equal(t, []model.Item{{ID: "2", Text: "b"}}, srv.Items())
}

func TestRemoveUnknown(t *testing.T) {
	srv := todoapitest.New(t)

	r := run(t, srv, "rm", "nope")
	assert.Equal(t, ExitError, r.code)
	assert.Contains(t, r.stderr, "rm: todo not found")
}

func TestBadConfigIsUsageError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: soon\n"), 0o644))

	r := run(t, nil, "--config", path, "ls")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "timeout")
}

func TestConfigCommand(t *testing.T) {
	srv := todoapitest.New(t)

	r := run(t, srv, "config")
	require.Equal(t, ExitOK, r.code, r.stderr)
	assert.Contains(t, r.stdout, srv.URL)
	assert.Contains(t, r.stdout, "# base_url: flag")
	assert.Contains(t, r.stdout, "# timeout: default")
}

func TestVersion(t *testing.T) {
	r := run(t, nil, "version")
	require.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.stdout, "todo version")
}
