package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/redraw/internal/domain/plan"
)

// AssertYAMLEquals asserts that two YAML strings are semantically equal.
func AssertYAMLEquals(t testing.TB, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedMap, actualMap interface{}

	err := yaml.Unmarshal([]byte(expected), &expectedMap)
	require.NoError(t, err, "failed to parse expected YAML")

	err = yaml.Unmarshal([]byte(actual), &actualMap)
	require.NoError(t, err, "failed to parse actual YAML")

	assert.Equal(t, expectedMap, actualMap, msgAndArgs...)
}

// AssertStepOrder asserts that the plan holds exactly the given step ids in
// order.
func AssertStepOrder(t testing.TB, p *plan.Plan, ids ...string) {
	t.Helper()
	assert.Equal(t, ids, p.IDs())
}

// AssertBefore asserts that step a precedes step b.
func AssertBefore(t testing.TB, p *plan.Plan, a, b string) {
	t.Helper()

	ia, ib := p.Index(a), p.Index(b)
	require.GreaterOrEqual(t, ia, 0, "step %s missing", a)
	require.GreaterOrEqual(t, ib, 0, "step %s missing", b)
	assert.Less(t, ia, ib, "%s should precede %s", a, b)
}

// AssertNoStep asserts that no step with the given id is planned.
func AssertNoStep(t testing.TB, p *plan.Plan, id string) {
	t.Helper()
	assert.False(t, p.Has(id), "unexpected step %s", id)
}
