package model

import (
	"fmt"
	"sort"
)

// MeterCatalog maps meter identifiers to human-readable display names.
type MeterCatalog map[string]string

// DefaultMeterCatalog covers the meters of the deployed fleet. A catalog
// loaded from a config file overrides this, it does not extend it.
var DefaultMeterCatalog = MeterCatalog{
	"3100":  "Main Building",
	"3101":  "Warehouse",
	"3102":  "Workshop",
	"3103":  "Office Annex",
	"3104":  "Cold Storage",
	"31014": "Solar Array Feed",
}

// LookupMissError reports a meter identifier with no catalog entry. This is
// a configuration defect, not a data condition, and is never swallowed.
type LookupMissError struct {
	MeterID string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("meter %q has no catalog entry", e.MeterID)
}

// DisplayName resolves a meter identifier to its display name.
func (c MeterCatalog) DisplayName(meterID string) (string, error) {
	name, ok := c[meterID]
	if !ok {
		return "", &LookupMissError{MeterID: meterID}
	}
	return name, nil
}

// MeterIDs returns the catalog's identifiers in sorted order.
func (c MeterCatalog) MeterIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
