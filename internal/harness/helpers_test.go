package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/daoism/internal/mapping"
)

const comparisonsScenario = "testdata/scenarios/vserver_comparisons.yaml"

// catalogPath returns the absolute path of the test catalog.
func catalogPath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs("testdata/catalog/vserver.cue")
	require.NoError(t, err)
	return p
}

// writeScenario writes body to a YAML file in a temp directory. The token
// CATALOG is replaced by the test catalog path.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	body = strings.ReplaceAll(body, "CATALOG", catalogPath(t))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func vserverEntity(t *testing.T) *mapping.Entity {
	t.Helper()
	cat, err := LoadCatalog(catalogPath(t))
	require.NoError(t, err)
	e, ok := cat.Entity("VServer")
	require.True(t, ok)
	return e
}
