package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/alerts"
	"github.com/NotCoffee418/microgrid_monitor/pkg/history"
	"github.com/NotCoffee418/microgrid_monitor/pkg/insights"
	"github.com/NotCoffee418/microgrid_monitor/pkg/loads"
	"github.com/NotCoffee418/microgrid_monitor/pkg/normalizer"
	"github.com/NotCoffee418/microgrid_monitor/pkg/poller"
	"github.com/NotCoffee418/microgrid_monitor/pkg/settingsdb"
	"github.com/NotCoffee418/microgrid_monitor/pkg/thingspeak"
	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"github.com/NotCoffee418/microgrid_monitor/pkg/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lastJson = `{"created_at":"2024-01-15T14:30:00Z","entry_id":12,"field1":"4.2","field3":"231","field5":"20","field6":"28","field7":"80"}`

const feedsJson = `{"channel":{"id":42,"name":"site"},"feeds":[
{"created_at":"2024-01-13T10:00:00Z","entry_id":10,"field1":"3","field7":"90"},
{"created_at":"2024-01-14T10:00:00Z","entry_id":11,"field1":"4","field7":"85"},
{"created_at":"2024-01-15T10:00:00Z","entry_id":12,"field1":"4.2","field7":"80"}]}`

func upstream(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/channels/42/feeds/last.json":
			w.Write([]byte(lastJson))
		case "/channels/42/feeds.json":
			w.Write([]byte(feedsJson))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"404","error":"Not Found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

type fakeWeather struct {
	current *weather.Current
	err     error
}

func (f *fakeWeather) Current(ctx context.Context, lat, lon float64) (*weather.Current, error) {
	return f.current, f.err
}

func ptr(v float64) *float64 { return &v }

func newTestServer(t *testing.T, wx weatherSource) (*server, http.Handler) {
	t.Helper()
	store, err := settingsdb.Open(filepath.Join(t.TempDir(), "settings.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	up := upstream(t)
	telemetry := thingspeak.New(up.Client(), up.URL)
	p := poller.New(telemetry, normalizerForTest(t), time.Hour)
	t.Cleanup(p.Stop)

	s := newServer(store, p, history.New(telemetry, normalizerForTest(t)), wx,
		alerts.New(store), loads.NewBoard(loads.DefaultLoads()))
	s.now = func() time.Time { return time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(s.hub.Close)
	return s, s.routes()
}

func normalizerForTest(t *testing.T) *normalizer.Normalizer {
	n, err := normalizer.New(normalizer.DefaultFieldMapping)
	require.NoError(t, err)
	return n
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func configure(t *testing.T, s *server, h http.Handler) {
	t.Helper()
	rec := do(t, h, http.MethodPut, "/config", `{"channel_id":" 42 "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Eventually(t, func() bool {
		u := s.poller.Latest()
		return u != nil && !u.Demo
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDemoModeWithoutChannel(t *testing.T) {
	s, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/latest", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.applyChannel(nil)
	require.Eventually(t, func() bool { return s.poller.Latest() != nil }, 2*time.Second, 5*time.Millisecond)

	rec = do(t, h, http.MethodGet, "/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["demo"])

	status := decode(t, do(t, h, http.MethodGet, "/status", ""))
	assert.Equal(t, false, status["configured"])
	assert.Equal(t, "unconfigured", status["state"])
	assert.Equal(t, "never", status["last_updated_human"])

	rec = do(t, h, http.MethodGet, "/history", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestConfigureChannel(t *testing.T) {
	s, h := newTestServer(t, nil)
	configure(t, s, h)

	latest := s.poller.Latest()
	assert.Equal(t, "42", latest.ChannelID)
	assert.Equal(t, 80.0, latest.Reading.BatteryLevel)
	assert.Equal(t, 231.0, latest.Reading.Voltage)

	status := decode(t, do(t, h, http.MethodGet, "/status", ""))
	assert.Equal(t, true, status["configured"])
	assert.Equal(t, "42", status["channel_id"])
	assert.Equal(t, "polling", status["state"])
	assert.Equal(t, false, status["demo"])
	assert.NotEqual(t, "never", status["last_updated_human"])

	cfg := decode(t, do(t, h, http.MethodGet, "/config", ""))
	assert.Equal(t, "42", cfg["channel_id"])
	assert.Equal(t, false, cfg["has_read_key"])

	rec := do(t, h, http.MethodDelete, "/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, do(t, h, http.MethodGet, "/config", ""))["configured"])
	assert.Equal(t, "unconfigured", s.poller.State().String())
}

func TestPutConfig_Invalid(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPut, "/config", `{"channel_id":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/config", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory(t *testing.T) {
	s, h := newTestServer(t, nil)
	configure(t, s, h)

	body := decode(t, do(t, h, http.MethodGet, "/history?results=3", ""))
	assert.Equal(t, 3.0, body["count"])

	body = decode(t, do(t, h, http.MethodGet, "/history?start=2024-01-14&end=2024-01-15", ""))
	assert.Equal(t, 2.0, body["count"])
	readings := body["readings"].([]any)
	assert.Equal(t, 85.0, readings[0].(map[string]any)["battery_level"])

	rec := do(t, h, http.MethodGet, "/history?results=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/history?start=2024-01-15&end=2024-01-14", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistory_UpstreamFailureIsBadGateway(t *testing.T) {
	s, h := newTestServer(t, nil)
	rec := do(t, h, http.MethodPut, "/config", `{"channel_id":"404"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/history", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 404.0, body["status"])
	assert.Contains(t, body["body"], "Not Found")

	// live path falls back to demo values
	require.Eventually(t, func() bool {
		u := s.poller.Latest()
		return u != nil && u.Demo && u.ChannelID == "404"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestHistoryCsv(t *testing.T) {
	s, h := newTestServer(t, nil)
	configure(t, s, h)

	rec := do(t, h, http.MethodGet, "/history.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "history.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.ElementsMatch(t, []string{"timestamp", "generation", "voltage", "battery_level", "temperature", "dust"},
		strings.Split(lines[0], ","))
	assert.Len(t, lines, 4)
}

func TestAnomalies(t *testing.T) {
	s, h := newTestServer(t, nil)
	configure(t, s, h)

	body := decode(t, do(t, h, http.MethodGet, "/anomalies?metric=battery&threshold=1", ""))
	assert.Equal(t, "battery_level", body["metric"])
	assert.Equal(t, 1.0, body["threshold"])
	assert.Len(t, body["flags"], 3)
	assert.Len(t, body["z_scores"], 3)

	rec := do(t, h, http.MethodGet, "/anomalies?metric=humidity", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodGet, "/anomalies?threshold=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGrid(t *testing.T) {
	_, h := newTestServer(t, nil)

	assert.Equal(t, "solar", decode(t, do(t, h, http.MethodGet, "/grid", ""))["key"])

	rec := do(t, h, http.MethodPut, "/grid", `{"grid":"wind"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, do(t, h, http.MethodGet, "/grid", ""))
	assert.Equal(t, "wind", body["key"])
	assert.Equal(t, "Windmill Grid Dashboard", body["title"])

	rec = do(t, h, http.MethodPut, "/grid", `{"grid":"coal"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsights(t *testing.T) {
	wx := &fakeWeather{current: &weather.Current{Precipitation: ptr(1.0), WindSpeed: ptr(10), Code: 61}}
	s, h := newTestServer(t, wx)

	rec := do(t, h, http.MethodGet, "/insights", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	configure(t, s, h)

	rec = do(t, h, http.MethodGet, "/insights?lat=12.9&lon=77.6", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Bangalore", body["location"].(map[string]any)["name"])
	summary := body["summary"].(map[string]any)
	assert.Equal(t, "cleaning may not be needed", summary["dust_advisory"])
	assert.Equal(t, "19.0 hours", summary["depletion_text"])
	assert.Equal(t, "Rain", body["weather"].(map[string]any)["display"].(map[string]any)["description"])
	assert.Equal(t, 195.0, body["active_load_watts"])

	rec = do(t, h, http.MethodGet, "/insights?lat=abc&lon=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInsights_WeatherFailureMeansNoRain(t *testing.T) {
	s, h := newTestServer(t, &fakeWeather{err: errors.New("offline")})
	configure(t, s, h)

	body := decode(t, do(t, h, http.MethodGet, "/insights?lat=50&lon=5", ""))
	assert.Equal(t, "50.0000, 5.0000", body["location"].(map[string]any)["name"])
	assert.Nil(t, body["weather"])
	assert.Equal(t, "cleaning recommended", body["summary"].(map[string]any)["dust_advisory"])
}

func TestAlerts(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/alerts", `{"date":"2024-01-20","title":"Turbine maintenance"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	id := created["id"].(string)
	assert.Equal(t, "info", created["type"])
	assert.Equal(t, "User scheduled: Turbine maintenance", created["description"])

	list := decode(t, do(t, h, http.MethodGet, "/alerts", ""))
	assert.Len(t, list["alerts"], 1)
	assert.Len(t, list["maintenance"], 1)
	assert.Equal(t, 1.0, list["unacknowledged"])

	rec = do(t, h, http.MethodPost, "/alerts/"+id+"/ack", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["acknowledged"])
	assert.Equal(t, 0.0, decode(t, do(t, h, http.MethodGet, "/alerts", ""))["unacknowledged"])

	rec = do(t, h, http.MethodPost, "/alerts/missing/ack", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/alerts", `{"date":"20/01/2024","title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/alerts", `{"date":"2024-01-20","title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoads(t *testing.T) {
	_, h := newTestServer(t, nil)

	body := decode(t, do(t, h, http.MethodGet, "/loads", ""))
	assert.Len(t, body["loads"], 5)
	assert.Equal(t, 195.0, body["total_active_watts"])

	rec := do(t, h, http.MethodPost, "/loads/5/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["status"])
	assert.Equal(t, 395.0, decode(t, do(t, h, http.MethodGet, "/loads", ""))["total_active_watts"])

	rec = do(t, h, http.MethodPost, "/loads/99/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type recordingRaiser struct {
	titles []string
}

func (r *recordingRaiser) Raise(severity alerts.Severity, title, description string, at time.Time) (*alerts.Alert, error) {
	r.titles = append(r.titles, title)
	return &alerts.Alert{Title: title}, nil
}

func TestAdvisor_EdgeTriggered(t *testing.T) {
	raiser := &recordingRaiser{}
	a := newAdvisor(insightsTrend(), raiser)

	feed := func(levels ...float64) {
		for _, l := range levels {
			a.Handle(liveUpdate(l, false))
		}
	}

	feed(90, 85, 79)
	assert.Equal(t, []string{"Rapid Battery Discharge"}, raiser.titles)

	// still discharging, no second alert
	feed(70)
	assert.Len(t, raiser.titles, 1)

	// demo readings are ignored
	a.Handle(liveUpdate(5, true))
	assert.Len(t, raiser.titles, 1)

	feed(15)
	assert.Equal(t, []string{"Rapid Battery Discharge", "Low Battery Level"}, raiser.titles)

	a.Reset()
	feed(15)
	assert.Equal(t, "Low Battery Level", raiser.titles[len(raiser.titles)-1])
	assert.Len(t, raiser.titles, 3)
}

func TestWriteJson(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusTeapot, "short and stout")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"short and stout"}`, rec.Body.String())
}

func insightsTrend() *insights.BatteryTrend {
	return insights.NewBatteryTrend()
}

func liveUpdate(battery float64, demo bool) types.LiveUpdate {
	return types.LiveUpdate{Reading: types.Reading{BatteryLevel: battery}, Demo: demo}
}
