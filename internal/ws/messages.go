package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mabackma/meter-dashboard/internal/model"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeChartPrepare = "chart:prepare"
	TypeChartRender  = "chart:render"
	TypeHeatmap      = "heatmap:render"
	TypeRollup       = "rollup:cost_profit"
	TypeColumnsList  = "columns:list"
	TypeSample       = "data:sample"
	TypeDescribe     = "data:describe"
	TypeReportExport = "report:export"

	// Server -> Client
	TypeDataLoaded   = "data:loaded"
	TypeChartPreview = "chart:preview"
	TypeChartData    = "chart:data"
	TypeHeatmapData  = "heatmap:data"
	TypeRollupData   = "rollup:data"
	TypeColumnsData  = "columns:data"
	TypeSampleData   = "sample:data"
	TypeDescribeData = "describe:data"
	TypeReportSaved  = "report:saved"
	TypeError        = "error"
)

// Chart kinds accepted by chart:prepare / chart:render.
const (
	KindLines             = "lines"
	KindExpenses          = "expenses"
	KindCostEffectiveness = "cost_effectiveness"
)

// Series names selecting one of the two cached dataframes.
const (
	SeriesPhase = "phase"
	SeriesTotal = "total"
)

// WindowSpec selects a calendar window. Kind is day, week or month; Date
// names the day for day windows, Year and Ordinal the week or month number
// otherwise.
type WindowSpec struct {
	Kind    string `json:"kind"`
	Date    string `json:"date,omitempty"` // 2006-01-02, day windows
	Year    int    `json:"year,omitempty"`
	Ordinal int    `json:"ordinal,omitempty"`
}

// Window resolves the spec into a half-open calendar window.
func (w WindowSpec) Window() (model.TimeWindow, error) {
	switch w.Kind {
	case "day":
		d, err := time.Parse("2006-01-02", w.Date)
		if err != nil {
			return model.TimeWindow{}, fmt.Errorf("invalid day %q: %w", w.Date, err)
		}
		return model.Day(d.UTC()), nil
	case "week":
		if w.Ordinal < 1 || w.Ordinal > 53 {
			return model.TimeWindow{}, fmt.Errorf("invalid week number %d", w.Ordinal)
		}
		return model.Week(w.Year, w.Ordinal), nil
	case "month":
		if w.Ordinal < 1 || w.Ordinal > 12 {
			return model.TimeWindow{}, fmt.Errorf("invalid month number %d", w.Ordinal)
		}
		return model.Month(w.Year, time.Month(w.Ordinal)), nil
	}
	return model.TimeWindow{}, fmt.Errorf("unknown window kind %q", w.Kind)
}

// ChartRequest carries everything one chart needs. chart:prepare answers
// with a cheap preview; rendering happens only on the explicit
// chart:render confirmation — there is no hidden per-session flag.
type ChartRequest struct {
	Kind     string     `json:"kind"`
	Series   string     `json:"series,omitempty"` // lines only
	MeterID  string     `json:"meter_id,omitempty"`
	MeterIDs []string   `json:"meter_ids,omitempty"` // expense/ratio charts
	Window   WindowSpec `json:"window"`
	Columns  []string   `json:"columns,omitempty"` // lines only
	FillGaps bool       `json:"fill_gaps,omitempty"`
}

type HeatmapRequest struct {
	Series  string     `json:"series"`
	MeterID string     `json:"meter_id"`
	Window  WindowSpec `json:"window"`
	Column  string     `json:"column"`
}

type RollupRequest struct {
	MeterIDs []string   `json:"meter_ids"`
	Window   WindowSpec `json:"window"`
}

type TableRequest struct {
	Series string `json:"series"`
	Rows   int    `json:"rows,omitempty"`
}

// Server -> Client payloads

type ChartPreviewPayload struct {
	Request ChartRequest `json:"request"`
	Rows    int          `json:"rows"`
	Start   string       `json:"start"`
	End     string       `json:"end"`
}

// SeriesData is one chart line. Missing values are encoded as nulls so the
// frontend renders gaps.
type SeriesData struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

type ChartDataPayload struct {
	Kind       string       `json:"kind"`
	Timestamps []string     `json:"timestamps"`
	Series     []SeriesData `json:"series"`
}

type HeatmapDataPayload struct {
	Column string       `json:"column"`
	Days   []string     `json:"days"`
	Values [][]*float64 `json:"values"` // [day][hour 0-23]
}

type MeterRollup struct {
	Meter  string  `json:"meter"`
	Cost   float64 `json:"cost"`
	Profit float64 `json:"profit"`
	Net    float64 `json:"net"`
}

type RollupDataPayload struct {
	Start    string        `json:"start"`
	End      string        `json:"end"`
	Cost     float64       `json:"cost"`
	Profit   float64       `json:"profit"`
	Net      float64       `json:"net"`
	PerMeter []MeterRollup `json:"per_meter"`
}

type ColumnInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type ColumnsDataPayload struct {
	Series  string       `json:"series"`
	Columns []ColumnInfo `json:"columns"`
}

type SampleDataPayload struct {
	Series     string       `json:"series"`
	Columns    []string     `json:"columns"`
	Timestamps []string     `json:"timestamps"`
	Meters     []string     `json:"meters,omitempty"`
	Rows       [][]*float64 `json:"rows"`
}

type DescribeDataPayload struct {
	Series string      `json:"series"`
	Stats  interface{} `json:"stats"`
}

type MeterInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TimeRangeInfo struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DataLoadedPayload struct {
	Meters    []MeterInfo   `json:"meters"`
	TimeRange TimeRangeInfo `json:"time_range"`
}

type ReportSavedPayload struct {
	Path string `json:"path"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes, mirroring the pipeline's recoverable conditions.
const (
	CodeEmptyResult = "empty_result"
	CodeNoColumns   = "no_columns"
	CodeLookupMiss  = "lookup_miss"
	CodeBadRequest  = "bad_request"
	CodeInternal    = "internal"
)

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
