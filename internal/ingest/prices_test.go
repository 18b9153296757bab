package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceParser_Parse(t *testing.T) {
	csv := `ts,price
2024-01-15T00:00:00,87.41
2024-01-15T01:00:00,-5.02
bad-row,100
`
	samples, err := (&PriceParser{}).Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), samples[0].Hour)
	assert.InDelta(t, 87.41, samples[0].EURPerMWh, 1e-9)
	assert.InDelta(t, -5.02, samples[1].EURPerMWh, 1e-9, "negative prices are valid")
}

func TestPriceParser_BadHeader(t *testing.T) {
	csv := "hour,eur\n2024-01-15T00:00:00,87.41\n"
	_, err := (&PriceParser{}).Parse(strings.NewReader(csv))
	assert.Error(t, err)
}
