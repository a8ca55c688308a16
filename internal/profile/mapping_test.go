package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
)

func TestBuildMapping(t *testing.T) {
	t.Parallel()

	headers := []string{"Row Labels", "Units", "Dollars", "Stores"}
	m, err := BuildMapping(map[string]string{"chain": "Row Labels", "units": "Units", "dollars": "Dollars"}, headers)
	require.NoError(t, err)
	assert.Equal(t, "Units", m[model.RoleUnits])
	assert.Equal(t, "", m[model.RoleStores])
	assert.Len(t, m, len(model.AllRoles))

	_, err = BuildMapping(map[string]string{"chain": "Row Labels", "units": "Units", "dollars": "Dollars", "upc": "Units"}, headers)
	assert.ErrorContains(t, err, "unknown role")

	_, err = BuildMapping(map[string]string{"chain": "Row Labels", "units": "Units", "dollars": "Sales"}, headers)
	assert.ErrorContains(t, err, "not in headers")

	_, err = BuildMapping(map[string]string{"chain": "Row Labels", "units": "Units"}, headers)
	assert.ErrorContains(t, err, "dollars")
}

func TestUsableHeaders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"A", "C"}, UsableHeaders([]string{"A", "", "C", ""}))
	assert.Empty(t, UsableHeaders(nil))
}
