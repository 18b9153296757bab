package model

import "time"

// ColumnID names one sensor column in the uploaded snapshot. Column names
// are normalized at ingest: lower-case, spaces replaced by underscores.
type ColumnID string

const (
	ColL1Current ColumnID = "l1_current"
	ColL2Current ColumnID = "l2_current"
	ColL3Current ColumnID = "l3_current"
	ColL1Voltage ColumnID = "l1_voltage"
	ColL2Voltage ColumnID = "l2_voltage"
	ColL3Voltage ColumnID = "l3_voltage"
	ColL1Power   ColumnID = "l1_active_power"
	ColL2Power   ColumnID = "l2_active_power"
	ColL3Power   ColumnID = "l3_active_power"
	ColL1Energy  ColumnID = "l1_active_energy"
	ColL2Energy  ColumnID = "l2_active_energy"
	ColL3Energy  ColumnID = "l3_active_energy"

	ColTotalCurrent ColumnID = "total_current"
	ColTotalPower   ColumnID = "total_active_power"
	ColTotalEnergy  ColumnID = "total_active_energy"

	// Joined and derived columns, Total series only. Price is only
	// meaningful at whole-meter granularity in this model.
	ColPrice      ColumnID = "price"
	ColExpenses   ColumnID = "expenses"
	ColPowerPrice ColumnID = "power_to_price_ratio"
)

// PhaseColumns are the per-phase sensor columns (L1/L2/L3 series).
var PhaseColumns = []ColumnID{
	ColL1Current, ColL2Current, ColL3Current,
	ColL1Voltage, ColL2Voltage, ColL3Voltage,
	ColL1Power, ColL2Power, ColL3Power,
	ColL1Energy, ColL2Energy, ColL3Energy,
}

// TotalColumns are the aggregate sensor columns (Total series), before the
// price join and derived columns are added.
var TotalColumns = []ColumnID{
	ColTotalCurrent, ColTotalPower, ColTotalEnergy,
}

// ColumnInfo holds display name and unit for a sensor column.
type ColumnInfo struct {
	Name string
	Unit string
}

// ColumnCatalog maps every known column to its display name and unit.
var ColumnCatalog = map[ColumnID]ColumnInfo{
	ColL1Current: {Name: "L1 Current", Unit: "A"},
	ColL2Current: {Name: "L2 Current", Unit: "A"},
	ColL3Current: {Name: "L3 Current", Unit: "A"},
	ColL1Voltage: {Name: "L1 Voltage", Unit: "V"},
	ColL2Voltage: {Name: "L2 Voltage", Unit: "V"},
	ColL3Voltage: {Name: "L3 Voltage", Unit: "V"},
	ColL1Power:   {Name: "L1 Active Power", Unit: "W"},
	ColL2Power:   {Name: "L2 Active Power", Unit: "W"},
	ColL3Power:   {Name: "L3 Active Power", Unit: "W"},
	ColL1Energy:  {Name: "L1 Active Energy", Unit: "kWh"},
	ColL2Energy:  {Name: "L2 Active Energy", Unit: "kWh"},
	ColL3Energy:  {Name: "L3 Active Energy", Unit: "kWh"},

	ColTotalCurrent: {Name: "Total Current", Unit: "A"},
	ColTotalPower:   {Name: "Total Active Power", Unit: "W"},
	ColTotalEnergy:  {Name: "Total Active Energy", Unit: "kWh"},

	ColPrice:      {Name: "Day-Ahead Price", Unit: "EUR/MWh"},
	ColExpenses:   {Name: "Expenses", Unit: "EUR/h"},
	ColPowerPrice: {Name: "Power/Price Ratio", Unit: "W·MWh/EUR"},
}

// Reading is one snapshot row: a timestamp, a meter and the sensor values
// present on that row. Timestamps are timezone-naive on ingestion. A column
// absent from Values means missing data, never zero.
type Reading struct {
	Timestamp time.Time
	MeterID   string
	Values    map[ColumnID]float64
}

// PriceSample is one hour-bucketed day-ahead price in EUR/MWh. It joins
// onto readings by (date, hour of day): meters report sub-hourly, price
// is hourly.
type PriceSample struct {
	Hour      time.Time
	EURPerMWh float64
}

// TimeRange covers a span of data. Start inclusive, End exclusive unless
// stated otherwise by the producer.
type TimeRange struct {
	Start time.Time
	End   time.Time
}
