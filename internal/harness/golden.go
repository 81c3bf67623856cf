package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/daoism/internal/ir"
)

// Snapshot renders the SQL, arguments and count of every case as
// canonical JSON.
func Snapshot(r *Result) ([]byte, error) {
	cases := make([]any, len(r.Cases))
	for i, c := range r.Cases {
		cases[i] = map[string]any{
			"name":  c.Name,
			"sql":   c.SQL,
			"args":  c.Args,
			"count": c.Count,
		}
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario": r.Scenario,
		"cases":    cases,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
