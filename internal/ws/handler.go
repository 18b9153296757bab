package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mabackma/meter-dashboard/internal/analyzer"
	"github.com/mabackma/meter-dashboard/internal/export"
	"github.com/mabackma/meter-dashboard/internal/model"
	"github.com/mabackma/meter-dashboard/internal/pipeline"
	"github.com/mabackma/meter-dashboard/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes dashboard requests to
// the analyzer. Every request is served by one synchronous pipeline pass.
type Handler struct {
	hub      *Hub
	store    *store.Store
	analyzer *analyzer.Analyzer
	reports  *export.Writer
}

func NewHandler(hub *Hub, s *store.Store, a *analyzer.Analyzer, reports *export.Writer) *Handler {
	return &Handler{hub: hub, store: s, analyzer: a, reports: reports}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	h.sendDataLoaded(client)
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeChartPrepare:
		var req ChartRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.sendError(c, CodeBadRequest, err)
			return
		}
		h.handleChartPrepare(c, req)

	case TypeChartRender:
		var req ChartRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.sendError(c, CodeBadRequest, err)
			return
		}
		h.handleChartRender(c, req)

	case TypeHeatmap:
		var req HeatmapRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.sendError(c, CodeBadRequest, err)
			return
		}
		h.handleHeatmap(c, req)

	case TypeRollup:
		var req RollupRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.sendError(c, CodeBadRequest, err)
			return
		}
		h.handleRollup(c, req)

	case TypeColumnsList:
		var req TableRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.sendError(c, CodeBadRequest, err)
			return
		}
		h.handleColumns(c, req)

	case TypeSample:
		var req TableRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.sendError(c, CodeBadRequest, err)
			return
		}
		h.handleSample(c, req)

	case TypeDescribe:
		var req TableRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.sendError(c, CodeBadRequest, err)
			return
		}
		h.handleDescribe(c, req)

	case TypeReportExport:
		var req RollupRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			h.sendError(c, CodeBadRequest, err)
			return
		}
		h.handleReportExport(c, req)

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

// handleChartPrepare answers the cheap phase: row count for the selection,
// so the UI can ask for confirmation before the expensive render.
func (h *Handler) handleChartPrepare(c *Client, req ChartRequest) {
	w, err := req.Window.Window()
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}
	seriesName := req.Series
	if req.Kind != KindLines {
		seriesName = SeriesTotal
	}
	rows, err := h.analyzer.Preview(seriesName, req.MeterID, w)
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}
	h.send(c, TypeChartPreview, ChartPreviewPayload{
		Request: req,
		Rows:    rows,
		Start:   w.Start.Format(time.RFC3339),
		End:     w.End.Format(time.RFC3339),
	})
}

func (h *Handler) handleChartRender(c *Client, req ChartRequest) {
	w, err := req.Window.Window()
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}

	var frame *pipeline.Frame
	switch req.Kind {
	case KindLines:
		frame, err = h.analyzer.LineChart(req.Series, req.MeterID, w, req.Columns, req.FillGaps)
	case KindExpenses:
		frame, err = h.analyzer.ExpenseChart(w, req.MeterIDs)
	case KindCostEffectiveness:
		frame, err = h.analyzer.CostEffectiveness(w, req.MeterIDs)
	default:
		h.sendError(c, CodeBadRequest, fmt.Errorf("unknown chart kind %q", req.Kind))
		return
	}
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	h.send(c, TypeChartData, chartDataFromFrame(req.Kind, frame))
}

func (h *Handler) handleHeatmap(c *Client, req HeatmapRequest) {
	w, err := req.Window.Window()
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}
	grid, err := h.analyzer.Heatmap(req.Series, req.MeterID, w, req.Column)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	payload := HeatmapDataPayload{Column: req.Column}
	for i, day := range grid.Days {
		payload.Days = append(payload.Days, day.Format("2006-01-02"))
		row := make([]*float64, 24)
		for hr := 0; hr < 24; hr++ {
			row[hr] = nullable(grid.Values[i][hr])
		}
		payload.Values = append(payload.Values, row)
	}
	h.send(c, TypeHeatmapData, payload)
}

func (h *Handler) handleRollup(c *Client, req RollupRequest) {
	w, err := req.Window.Window()
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}
	result, err := h.analyzer.CostProfitRollup(w, req.MeterIDs)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	payload := RollupDataPayload{
		Start:  w.Start.Format(time.RFC3339),
		End:    w.End.Format(time.RFC3339),
		Cost:   result.Combined.Cost,
		Profit: result.Combined.Profit,
		Net:    result.Combined.Net,
	}
	for _, m := range result.PerMeter {
		payload.PerMeter = append(payload.PerMeter, MeterRollup{
			Meter:  m.MeterName,
			Cost:   m.Rollup.Cost,
			Profit: m.Rollup.Profit,
			Net:    m.Rollup.Net,
		})
	}
	h.send(c, TypeRollupData, payload)
}

func (h *Handler) handleColumns(c *Client, req TableRequest) {
	f, err := h.analyzer.Series(req.Series)
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}
	payload := ColumnsDataPayload{Series: req.Series}
	for _, name := range f.Columns() {
		info := model.ColumnCatalog[model.ColumnID(name)]
		payload.Columns = append(payload.Columns, ColumnInfo{ID: name, Name: info.Name, Unit: info.Unit})
	}
	h.send(c, TypeColumnsData, payload)
}

func (h *Handler) handleSample(c *Client, req TableRequest) {
	rows := req.Rows
	if rows <= 0 {
		rows = 5
	}
	f, err := h.analyzer.Sample(req.Series, rows)
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}

	payload := SampleDataPayload{Series: req.Series, Columns: f.Columns(), Meters: f.Meters}
	for i, ts := range f.Times {
		payload.Timestamps = append(payload.Timestamps, ts.Format(time.RFC3339))
		row := make([]*float64, 0, len(payload.Columns))
		for _, name := range payload.Columns {
			row = append(row, nullable(f.Value(i, name)))
		}
		payload.Rows = append(payload.Rows, row)
	}
	h.send(c, TypeSampleData, payload)
}

func (h *Handler) handleDescribe(c *Client, req TableRequest) {
	stats, err := h.analyzer.Describe(req.Series)
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}
	h.send(c, TypeDescribeData, DescribeDataPayload{Series: req.Series, Stats: stats})
}

func (h *Handler) handleReportExport(c *Client, req RollupRequest) {
	w, err := req.Window.Window()
	if err != nil {
		h.sendError(c, CodeBadRequest, err)
		return
	}
	result, err := h.analyzer.CostProfitRollup(w, req.MeterIDs)
	if err != nil {
		h.sendPipelineError(c, err)
		return
	}

	rows := make([]export.MeterCostProfit, 0, len(result.PerMeter))
	for _, m := range result.PerMeter {
		rows = append(rows, export.MeterCostProfit{MeterName: m.MeterName, Rollup: m.Rollup})
	}
	data, err := export.BuildWindowReportXLSX(model.TimeWindow{Start: w.Start, End: w.End}, rows)
	if err != nil {
		h.sendError(c, CodeInternal, err)
		return
	}

	name := fmt.Sprintf("expenses_%s_%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	path, err := h.reports.Save(name, data)
	if err != nil {
		h.sendError(c, CodeInternal, err)
		return
	}
	h.send(c, TypeReportSaved, ReportSavedPayload{Path: path})
}

func (h *Handler) sendDataLoaded(c *Client) {
	payload := DataLoadedPayload{}
	for _, id := range h.store.Meters() {
		name, err := h.analyzer.Catalog().DisplayName(id)
		if err != nil {
			// Surface the raw identifier; hiding it would mask the
			// catalog defect.
			name = id
			log.Printf("meter catalog: %v", err)
		}
		payload.Meters = append(payload.Meters, MeterInfo{ID: id, Name: name})
	}
	if tr, ok := h.store.TimeRange(); ok {
		payload.TimeRange = TimeRangeInfo{
			Start: tr.Start.Format(time.RFC3339),
			End:   tr.End.Format(time.RFC3339),
		}
	}

	msg, err := NewEnvelope(TypeDataLoaded, payload)
	if err != nil {
		log.Printf("Error creating data:loaded message: %v", err)
		return
	}
	c.Send(msg)
}

func (h *Handler) send(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		log.Printf("Error marshaling %s: %v", msgType, err)
		return
	}
	c.Send(msg)
}

// sendPipelineError maps the pipeline's expected conditions onto error
// codes the frontend turns into prompts. None of them end the session.
func (h *Handler) sendPipelineError(c *Client, err error) {
	var lookupMiss *model.LookupMissError
	switch {
	case errors.Is(err, pipeline.ErrEmptyResult):
		h.sendError(c, CodeEmptyResult, err)
	case errors.Is(err, pipeline.ErrNoColumns):
		h.sendError(c, CodeNoColumns, err)
	case errors.As(err, &lookupMiss):
		h.sendError(c, CodeLookupMiss, err)
	default:
		h.sendError(c, CodeInternal, err)
	}
}

func (h *Handler) sendError(c *Client, code string, err error) {
	h.send(c, TypeError, ErrorPayload{Code: code, Message: err.Error()})
}

// chartDataFromFrame converts a frame into the chart payload, encoding
// missing values as nulls so the frontend draws gaps.
func chartDataFromFrame(kind string, f *pipeline.Frame) ChartDataPayload {
	payload := ChartDataPayload{Kind: kind}
	for _, ts := range f.Times {
		payload.Timestamps = append(payload.Timestamps, ts.Format(time.RFC3339))
	}
	for _, name := range f.Columns() {
		vals, _ := f.Column(name)
		data := SeriesData{Name: name, Values: make([]*float64, len(vals))}
		for i, v := range vals {
			data.Values[i] = nullable(v)
		}
		payload.Series = append(payload.Series, data)
	}
	return payload
}

func nullable(v float64) *float64 {
	if pipeline.IsMissing(v) {
		return nil
	}
	return &v
}
