package pipeline

import (
	"math"

	"github.com/mabackma/meter-dashboard/internal/model"
)

// ComputeExpenses adds the two derived columns to a Total-series frame:
//
//	expenses             = total_active_power [W] × price [EUR/MWh] / 1e6  → EUR/h
//	power_to_price_ratio = total_active_power / price
//
// The expense sign follows the power sign: export on a bidirectional meter
// yields negative expenses, i.e. revenue. A zero price makes the ratio
// non-finite; callers run SanitizeNonFinite on it before normalizing or
// charting. A missing power or price leaves both derived values missing.
func ComputeExpenses(f *Frame) (*Frame, error) {
	power, ok := f.Column(string(model.ColTotalPower))
	if !ok {
		return nil, missingColumnError(model.ColTotalPower)
	}
	price, ok := f.Column(string(model.ColPrice))
	if !ok {
		return nil, missingColumnError(model.ColPrice)
	}

	expenses := make([]float64, f.Len())
	ratio := make([]float64, f.Len())
	for i := range expenses {
		p, pr := power[i], price[i]
		if IsMissing(p) || IsMissing(pr) {
			expenses[i] = Missing
			ratio[i] = Missing
			continue
		}
		expenses[i] = p * pr / 1_000_000
		if pr == 0 {
			ratio[i] = math.Inf(1)
			if p < 0 {
				ratio[i] = math.Inf(-1)
			}
		} else {
			ratio[i] = p / pr
		}
	}

	out := f.clone()
	out.AddColumn(string(model.ColExpenses), expenses)
	out.AddColumn(string(model.ColPowerPrice), ratio)
	return out, nil
}

// CostProfit is the sign-partitioned rollup of a window's expense values.
type CostProfit struct {
	Cost   float64 // sum of non-negative expenses, always >= 0
	Profit float64 // negated sum of negative expenses, always >= 0
	Net    float64 // Cost - Profit, exactly
}

// SplitCostProfit partitions expense values by sign. Missing values are
// skipped. Net is computed from the two partial sums, so Cost - Profit ==
// Net holds exactly, not just to within rounding.
func SplitCostProfit(expenses []float64) CostProfit {
	var cost, negative float64
	for _, e := range expenses {
		if IsMissing(e) {
			continue
		}
		if e < 0 {
			negative += e
		} else {
			cost += e
		}
	}
	return CostProfit{
		Cost:   cost,
		Profit: -negative,
		Net:    cost + negative,
	}
}

func missingColumnError(col model.ColumnID) error {
	return &SchemaError{Column: string(col)}
}

// SchemaError reports a frame missing a required column. This is a defect
// in the uploaded dataset, not a recoverable user selection, and fails the
// whole pipeline run loudly.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return "required column missing from series: " + e.Column
}
