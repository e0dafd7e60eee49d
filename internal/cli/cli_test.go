package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/internal/config"
	"github.com/meikuraledutech/flow/validate"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FLOW_LISTEN", "")

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seqIDs() func() string {
	ids := []string{"start", "end", "link"}
	return func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
}

func writeFlow(t *testing.T, g flow.Graph) string {
	t.Helper()
	raw, err := flow.Marshal(g)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestValidateValid(t *testing.T) {
	path := writeFlow(t, flow.Default(nil))

	out, err := run(t, "", "validate", path)

	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestValidateInvalid(t *testing.T) {
	g := flow.Default(seqIDs())
	g.Edges = nil

	out, err := run(t, "", "validate", writeFlow(t, g))

	require.Error(t, err)
	assert.ErrorIs(t, err, flow.ErrInvalidGraph)
	assert.Equal(t, "Unreachable(end)\nNoPathToEnd\nOrphanNode(end)\n", out)
}

func TestValidateArgs(t *testing.T) {
	_, err := run(t, "", "validate")
	assert.Error(t, err)

	_, err = run(t, "", "validate", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestDescribeStdin(t *testing.T) {
	raw, err := flow.Marshal(flow.Default(seqIDs()))
	require.NoError(t, err)

	out, err := run(t, string(raw), "describe", "-")

	require.NoError(t, err)
	assert.Equal(t, flow.Describe(flow.Default(seqIDs())), out)
}

func TestExportYAML(t *testing.T) {
	path := writeFlow(t, flow.Default(seqIDs()))

	out, err := run(t, "", "export", "--format", "yaml", path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc["nodes"], 2)
	assert.Len(t, doc["edges"], 1)
}

func TestExportJSON(t *testing.T) {
	g := flow.Default(seqIDs())

	out, err := run(t, "", "export", writeFlow(t, g))
	require.NoError(t, err)

	got, err := flow.Unmarshal([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, g, *got)
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := run(t, "", "export", "--format", "xml", writeFlow(t, flow.Default(nil)))
	assert.ErrorContains(t, err, "unknown format")
}

func TestValidateRemote(t *testing.T) {
	g := flow.Default(seqIDs())
	raw, err := flow.Marshal(g)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/flow/owner-1" {
			http.NotFound(w, r)
			return
		}
		w.Write(raw)
	}))
	defer srv.Close()

	cfgPath := filepath.Join(t.TempDir(), "flowctl.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("remote = \""+srv.URL+"\"\n"), 0o644))

	out, err := run(t, "", "--config", cfgPath, "describe", "--owner", "owner-1")
	require.NoError(t, err)
	assert.Contains(t, out, "- start → end\n")

	_, err = run(t, "", "--config", cfgPath, "validate", "--owner", "owner-2")
	assert.ErrorIs(t, err, flow.ErrNotFound)
}

func TestBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "flowctl.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[store]\ndriver = \"redis\"\n"), 0o644))

	_, err := run(t, "", "--config", cfgPath, "validate", "x.json")
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := openStore(ctx, config.StoreConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "f.db")})
	require.NoError(t, err)
	defer closeFn()

	g := flow.Default(nil)
	require.NoError(t, s.Save(ctx, "owner-1", &g))
	got, err := s.Load(ctx, "owner-1")
	require.NoError(t, err)
	assert.True(t, validate.Graph(*got).Valid)

	_, _, err = openStore(ctx, config.StoreConfig{Driver: "redis"})
	assert.Error(t, err)
}
