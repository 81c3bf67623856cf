package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/daoism/internal/dao"
	"github.com/roach88/daoism/internal/querysql"
	"github.com/roach88/daoism/internal/store"
	"github.com/roach88/daoism/internal/testutil"
	"github.com/roach88/daoism/internal/vserver"
)

const testCatalog = "testdata/catalog"

// cliEnv points the DAOISM_* environment at a fresh SQLite file and the
// test catalog, and returns the database path.
func cliEnv(t *testing.T) string {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("DAOISM_DB_DRIVER", "sqlite3")
	t.Setenv("DAOISM_DB_DSN", dsn)
	t.Setenv("DAOISM_CATALOG", testCatalog)
	t.Setenv("DAOISM_LOG_LEVEL", "error")
	t.Setenv("DAOISM_LOG_FORMAT", "json")
	return dsn
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp
}

// seedVServers creates the vserver table at dsn and stores three servers:
// a (web-1 on rack-1, 10 nics, 10 ports), b (web-2 on rack-1, 10 nics,
// 5 ports) and c (db-1 on rack-2, 2 nics, 8 ports).
func seedVServers(t *testing.T, dsn string) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(dsn)
	require.NoError(t, err)
	defer s.Close()

	cat, err := vserver.Catalog()
	require.NoError(t, err)
	ddl, err := vserver.Schema(cat, querysql.SQLite)
	require.NoError(t, err)
	require.NoError(t, s.Exec(ctx, ddl))

	p, err := dao.NewProvider(s, cat, dao.WithClock(testutil.NewDeterministicClock()))
	require.NoError(t, err)
	d, err := vserver.NewDAO(p)
	require.NoError(t, err)

	now := testutil.NewDeterministicClock().Now()
	servers := []*vserver.VServer{
		vserver.New(now).WithNics(10).WithPorts(10),
		vserver.New(now).WithNics(10).WithPorts(5),
		vserver.New(now).WithNics(2).WithPorts(8),
	}
	for i, meta := range []struct{ id, name, host string }{
		{"a", "web-1", "rack-1"},
		{"b", "web-2", "rack-1"},
		{"c", "db-1", "rack-2"},
	} {
		servers[i].UUID, servers[i].Name, servers[i].Host = meta.id, meta.name, meta.host
	}

	_, err = d.PersistAll(ctx, servers)
	require.NoError(t, err)
}
