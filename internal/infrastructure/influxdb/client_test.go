package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/config"
	"github.com/nerrad567/entrance-cockpit-mock/internal/infrastructure/influxdb"
)

// fakeInflux answers pings and records line protocol bodies.
type fakeInflux struct {
	mu     sync.Mutex
	writes []string
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/ping"):
		w.WriteHeader(http.StatusNoContent)
	case strings.HasSuffix(r.URL.Path, "/write"):
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.writes = append(f.writes, string(body))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeInflux) body() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.writes, "\n")
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "entrance-dev-token",
		Org:           "entrance",
		Bucket:        "cockpit",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func connectFake(t *testing.T) (*influxdb.Client, *fakeInflux) {
	t.Helper()

	fake := &fakeInflux{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client, fake
}

// collectErrors captures async write failures.
func collectErrors(client *influxdb.Client) func() error {
	var mu sync.Mutex
	var writeErr error
	client.SetOnError(func(err error) {
		mu.Lock()
		writeErr = err
		mu.Unlock()
	})
	return func() error {
		mu.Lock()
		defer mu.Unlock()
		return writeErr
	}
}

// ─── Connection ─────────────────────────────────────────────────────

func TestConnect(t *testing.T) {
	client, _ := connectFake(t)

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8086")
	cfg.Enabled = false

	_, err := influxdb.Connect(cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := influxdb.Connect(testConfig("http://127.0.0.1:59999"))
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_DefaultBatchSettings(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{})
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = -5
	cfg.FlushInterval = 0

	client, err := influxdb.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false with default batch settings")
	}
}

func TestHealthCheck_Cancelled(t *testing.T) {
	client, _ := connectFake(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() should return error for cancelled context")
	}
}

// ─── Writes ─────────────────────────────────────────────────────────

func TestWriteAccessAttempt(t *testing.T) {
	client, fake := connectFake(t)
	writeErr := collectErrors(client)

	client.WriteAccessAttempt(influxdb.AccessAttempt{
		DeviceID:   "badge-reader-01",
		DoorID:     "door-001",
		BadgeID:    "BADGE-001",
		BadgeKnown: true,
		Success:    true,
		Timestamp:  time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	})
	client.Flush()

	if err := writeErr(); err != nil {
		t.Fatalf("write error = %v", err)
	}

	body := fake.body()
	for _, want := range []string{
		"access_attempts,",
		"door_id=door-001",
		"device_id=badge-reader-01",
		"badge_known=true",
		`badge_id="BADGE-001"`,
		"success=true",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("line protocol %q missing %q", body, want)
		}
	}
}

func TestWriteMonitoringEvent(t *testing.T) {
	client, fake := connectFake(t)

	client.WriteMonitoringEvent("manual_override", "manual-access-panel", time.Time{})
	client.Flush()

	body := fake.body()
	if !strings.Contains(body, "monitoring_events,") || !strings.Contains(body, "type=manual_override") {
		t.Errorf("line protocol = %q, want a monitoring_events point tagged manual_override", body)
	}
}

func TestStats(t *testing.T) {
	client, _ := connectFake(t)

	client.WriteMonitoringEvent("badge_event", "badge-reader-01", time.Now())
	client.WriteAccessAttempt(influxdb.AccessAttempt{DoorID: "door-001", BadgeID: "BADGE-002"})
	client.Flush()

	stats := client.Stats()
	if stats.Points != 2 {
		t.Errorf("Stats().Points = %d, want 2", stats.Points)
	}
	if stats.Failures != 0 {
		t.Errorf("Stats().Failures = %d, want 0", stats.Failures)
	}
}

// ─── Close ──────────────────────────────────────────────────────────

func TestClose(t *testing.T) {
	srv := httptest.NewServer(&fakeInflux{})
	defer srv.Close()

	client, err := influxdb.Connect(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	client.WriteMonitoringEvent("custom_event", "manual-trigger", time.Now())

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	if !errors.Is(client.HealthCheck(context.Background()), influxdb.ErrNotConnected) {
		t.Error("HealthCheck() after Close() should return ErrNotConnected")
	}

	// Writes and flushes after close are dropped.
	before := client.Stats().Points
	client.WriteAccessAttempt(influxdb.AccessAttempt{DoorID: "door-001"})
	client.Flush()
	if got := client.Stats().Points; got != before {
		t.Errorf("Stats().Points = %d after Close, want %d", got, before)
	}

	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
