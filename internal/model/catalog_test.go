package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_DisplayName(t *testing.T) {
	catalog := MeterCatalog{"3100": "Main Building"}

	name, err := catalog.DisplayName("3100")
	require.NoError(t, err)
	assert.Equal(t, "Main Building", name)
}

func TestCatalog_LookupMiss(t *testing.T) {
	catalog := MeterCatalog{"3100": "Main Building"}

	_, err := catalog.DisplayName("9999")
	require.Error(t, err)

	var miss *LookupMissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, "9999", miss.MeterID)
}

func TestPhaseAndTotalColumnsPartition(t *testing.T) {
	seen := make(map[ColumnID]bool)
	for _, c := range PhaseColumns {
		seen[c] = true
	}
	for _, c := range TotalColumns {
		assert.False(t, seen[c], "column %s appears in both series", c)
	}
}
