package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/alerts"
	"github.com/NotCoffee418/microgrid_monitor/pkg/gridutils"
	"github.com/NotCoffee418/microgrid_monitor/pkg/history"
	"github.com/NotCoffee418/microgrid_monitor/pkg/insights"
	"github.com/NotCoffee418/microgrid_monitor/pkg/livefeed"
	"github.com/NotCoffee418/microgrid_monitor/pkg/loads"
	"github.com/NotCoffee418/microgrid_monitor/pkg/poller"
	"github.com/NotCoffee418/microgrid_monitor/pkg/settingsdb"
	"github.com/NotCoffee418/microgrid_monitor/pkg/thingspeak"
	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"github.com/NotCoffee418/microgrid_monitor/pkg/weather"
	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

const dayLayout = "2006-01-02"

type weatherSource interface {
	Current(ctx context.Context, lat, lon float64) (*weather.Current, error)
}

type server struct {
	settings settingsdb.SettingsStore
	poller   *poller.Poller
	history  *history.Service
	weather  weatherSource
	alerts   *alerts.Service
	loads    *loads.Board
	hub      *livefeed.Hub
	advisor  *advisor
	trend    *insights.BatteryTrend
	now      func() time.Time
}

func newServer(
	settings settingsdb.SettingsStore,
	p *poller.Poller,
	hist *history.Service,
	weatherClient weatherSource,
	alertService *alerts.Service,
	board *loads.Board,
) *server {
	trend := insights.NewBatteryTrend()
	s := &server{
		settings: settings,
		poller:   p,
		history:  hist,
		weather:  weatherClient,
		alerts:   alertService,
		loads:    board,
		hub:      livefeed.NewHub(p.Latest),
		advisor:  newAdvisor(trend, alertService),
		trend:    trend,
		now:      time.Now,
	}
	p.Subscribe(s.hub.Broadcast)
	p.Subscribe(s.advisor.Handle)
	return s
}

// applyChannel points the live and history paths at cfg. nil means demo mode.
func (s *server) applyChannel(cfg *types.ChannelConfig) {
	s.history.SetChannel(cfg)
	s.advisor.Reset()
	s.poller.Configure(cfg)
}

func (s *server) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods("GET")
	r.HandleFunc("/status", s.handleStatus).Methods("GET")
	r.HandleFunc("/latest", s.handleLatest).Methods("GET")
	r.Handle("/ws", s.hub).Methods("GET")

	r.HandleFunc("/config", s.handleGetConfig).Methods("GET")
	r.HandleFunc("/config", s.handlePutConfig).Methods("PUT")
	r.HandleFunc("/config", s.handleDeleteConfig).Methods("DELETE")
	r.HandleFunc("/grid", s.handleGetGrid).Methods("GET")
	r.HandleFunc("/grid", s.handlePutGrid).Methods("PUT")

	r.HandleFunc("/history", s.handleHistory).Methods("GET")
	r.HandleFunc("/history.csv", s.handleHistoryCsv).Methods("GET")
	r.HandleFunc("/anomalies", s.handleAnomalies).Methods("GET")
	r.HandleFunc("/insights", s.handleInsights).Methods("GET")

	r.HandleFunc("/alerts", s.handleListAlerts).Methods("GET")
	r.HandleFunc("/alerts", s.handleScheduleAlert).Methods("POST")
	r.HandleFunc("/alerts/{id}/ack", s.handleAcknowledgeAlert).Methods("POST")

	r.HandleFunc("/loads", s.handleListLoads).Methods("GET")
	r.HandleFunc("/loads/{id}/toggle", s.handleToggleLoad).Methods("POST")

	return r
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJson(w, status, map[string]string{"error": message})
}

// writeHistoryError maps history failures. Upstream status and body are passed on.
func writeHistoryError(w http.ResponseWriter, err error) {
	var failure *thingspeak.TransportFailure
	switch {
	case errors.Is(err, history.ErrNotConfigured):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &failure):
		writeJson(w, http.StatusBadGateway, map[string]any{
			"error":       err.Error(),
			"status":      failure.StatusCode,
			"status_text": failure.Status,
			"body":        failure.Body,
		})
	case errors.Is(err, thingspeak.ErrTransport):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("history: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJson(w, http.StatusOK, map[string]string{
		"message": "Microgrid Monitor API",
		"status":  "running",
	})
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	channel, err := settingsdb.LoadChannelConfig(s.settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	grid, err := settingsdb.LoadGridType(s.settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unacknowledged, err := s.alerts.UnacknowledgedCount(s.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"configured":            channel != nil,
		"channel_id":            "",
		"state":                 s.poller.State().String(),
		"grid":                  grid.Display(),
		"demo":                  true,
		"last_updated":          "",
		"last_updated_human":    "never",
		"unacknowledged_alerts": unacknowledged,
		"live_clients":          s.hub.ClientCount(),
	}
	if channel != nil {
		resp["channel_id"] = channel.ChannelID
	}
	if latest := s.poller.Latest(); latest != nil {
		resp["demo"] = latest.Demo
	}
	if last := s.poller.LastFetch(); !last.IsZero() {
		resp["last_updated"] = last.UTC().Format(time.RFC3339)
		resp["last_updated_human"] = humanize.Time(last)
	}
	writeJson(w, http.StatusOK, resp)
}

func (s *server) handleLatest(w http.ResponseWriter, r *http.Request) {
	latest := s.poller.Latest()
	if latest == nil {
		writeError(w, http.StatusNotFound, "No readings available yet")
		return
	}
	writeJson(w, http.StatusOK, latest)
}

func (s *server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	channel, err := settingsdb.LoadChannelConfig(s.settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if channel == nil {
		writeJson(w, http.StatusOK, map[string]any{"configured": false})
		return
	}
	writeJson(w, http.StatusOK, map[string]any{
		"configured":   true,
		"channel_id":   channel.ChannelID,
		"has_read_key": channel.ReadKey != "",
	})
}

func (s *server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var body types.ChannelConfig
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	saved, err := settingsdb.SaveChannelConfig(s.settings, body)
	if errors.Is(err, types.ErrEmptyChannelID) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Channel configured: %s", saved.ChannelID)
	s.applyChannel(saved)
	writeJson(w, http.StatusOK, map[string]any{
		"configured":   true,
		"channel_id":   saved.ChannelID,
		"has_read_key": saved.ReadKey != "",
	})
}

func (s *server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	if err := settingsdb.ClearChannelConfig(s.settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Println("Channel configuration cleared, switching to demo mode")
	s.applyChannel(nil)
	writeJson(w, http.StatusOK, map[string]any{"configured": false})
}

func (s *server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	grid, err := settingsdb.LoadGridType(s.settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJson(w, http.StatusOK, grid.Display())
}

func (s *server) handlePutGrid(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Grid string `json:"grid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	grid, err := types.ParseGridType(body.Grid)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := settingsdb.SaveGridType(s.settings, grid); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJson(w, http.StatusOK, grid.Display())
}

// historyWindow reads ?results=n or ?start=YYYY-MM-DD&end=YYYY-MM-DD.
// ok is false when a response has already been written.
func (s *server) historyWindow(w http.ResponseWriter, r *http.Request) ([]types.Reading, bool) {
	q := r.URL.Query()
	var readings []types.Reading
	var err error

	if q.Get("start") != "" || q.Get("end") != "" {
		dateRange, parseErr := history.ParseDayRange(q.Get("start"), q.Get("end"))
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, parseErr.Error())
			return nil, false
		}
		readings, err = s.history.GetHistoryInRange(r.Context(), dateRange)
	} else {
		results := history.DefaultResults
		if raw := q.Get("results"); raw != "" {
			n, convErr := strconv.Atoi(raw)
			if convErr != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "results must be a positive number")
				return nil, false
			}
			results = n
		}
		readings, err = s.history.GetHistory(r.Context(), results)
	}

	if err != nil {
		writeHistoryError(w, err)
		return nil, false
	}
	return readings, true
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	readings, ok := s.historyWindow(w, r)
	if !ok {
		return
	}
	writeJson(w, http.StatusOK, map[string]any{
		"count":    len(readings),
		"readings": readings,
	})
}

func (s *server) handleHistoryCsv(w http.ResponseWriter, r *http.Request) {
	readings, ok := s.historyWindow(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", history.CsvContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="history.csv"`)
	if err := history.WriteCSV(w, readings); err != nil {
		log.Printf("history: csv export failed: %v", err)
	}
}

func (s *server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	metric := history.MetricBatteryLevel
	if raw := q.Get("metric"); raw != "" {
		parsed, err := history.ParseMetric(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		metric = parsed
	}

	threshold := history.DefaultAnomalyThreshold
	if raw := q.Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "threshold must be a non-negative number")
			return
		}
		threshold = parsed
	}

	readings, ok := s.historyWindow(w, r)
	if !ok {
		return
	}
	writeJson(w, http.StatusOK, map[string]any{
		"metric":    metric.String(),
		"threshold": threshold,
		"readings":  readings,
		"z_scores":  history.ZScores(readings, metric.Value),
		"flags":     history.ComputeAnomalies(readings, metric.Value, threshold),
	})
}

type weatherView struct {
	*weather.Current
	Display weather.CodeDisplay `json:"display"`
}

func (s *server) handleInsights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := insights.DefaultLocations[0]
	if q.Get("lat") != "" || q.Get("lon") != "" {
		lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
		lon, lonErr := strconv.ParseFloat(q.Get("lon"), 64)
		if latErr != nil || lonErr != nil {
			writeError(w, http.StatusBadRequest, "lat and lon must both be numbers")
			return
		}
		loc = insights.NearestLocation(lat, lon, insights.DefaultLocations)
	}

	latest := s.poller.Latest()
	if latest == nil {
		writeError(w, http.StatusNotFound, "No readings available yet")
		return
	}

	grid, err := settingsdb.LoadGridType(s.settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	in := insights.Input{
		Reading:        latest.Reading,
		BatterySamples: s.trend.Samples(),
		GridType:       grid,
	}
	var current *weatherView
	if s.weather != nil {
		cur, err := s.weather.Current(r.Context(), loc.Lat, loc.Lon)
		if err != nil {
			log.Printf("insights: no weather for %s: %v", loc.Name, err)
		} else {
			in.Precipitation = cur.Precipitation
			in.WindSpeed = cur.WindSpeed
			current = &weatherView{Current: cur, Display: cur.Code.Display()}
		}
	}

	writeJson(w, http.StatusOK, map[string]any{
		"location":          loc,
		"weather":           current,
		"reading":           latest,
		"summary":           insights.Summarize(in),
		"active_load_watts": s.loads.TotalActivePower(),
	})
}

func (s *server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	list, err := s.alerts.List(now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	maintenance, err := s.alerts.MaintenanceEvents(now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	unacknowledged := 0
	for _, a := range list {
		if !a.Acknowledged {
			unacknowledged++
		}
	}
	if maintenance == nil {
		maintenance = []alerts.Alert{}
	}
	writeJson(w, http.StatusOK, map[string]any{
		"alerts":         list,
		"unacknowledged": unacknowledged,
		"maintenance":    maintenance,
	})
}

func (s *server) handleScheduleAlert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Date  string `json:"date"`
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	day, err := time.ParseInLocation(dayLayout, body.Date, s.now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	a, err := s.alerts.Schedule(day, body.Title)
	if errors.Is(err, alerts.ErrEmptyTitle) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJson(w, http.StatusCreated, a)
}

func (s *server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	acknowledged, err := s.alerts.Acknowledge(id)
	if errors.Is(err, settingsdb.ErrAlertNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJson(w, http.StatusOK, map[string]any{"id": id, "acknowledged": acknowledged})
}

func (s *server) handleListLoads(w http.ResponseWriter, r *http.Request) {
	total := s.loads.TotalActivePower()
	writeJson(w, http.StatusOK, map[string]any{
		"loads":              s.loads.List(),
		"total_active_watts": total,
		"total_active_kw":    gridutils.WToKw(total),
	})
}

func (s *server) handleToggleLoad(w http.ResponseWriter, r *http.Request) {
	l, err := s.loads.Toggle(mux.Vars(r)["id"])
	if errors.Is(err, loads.ErrUnknownLoad) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJson(w, http.StatusOK, l)
}
