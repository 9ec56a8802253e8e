package weather_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/synkteam/municipath/internal/app/system/weather"
	"github.com/synkteam/municipath/internal/domain/models"
)

type countingProvider struct {
	calls int
	fc    weather.Forecast
	err   error
}

func (p *countingProvider) Forecast(context.Context, models.Position) (weather.Forecast, error) {
	p.calls++
	if p.err != nil {
		return weather.Forecast{}, p.err
	}
	return p.fc, nil
}

var turin = models.Position{Lat: 45.07, Lon: 7.69}

func TestProxy_CachesPerPosition(t *testing.T) {
	p := &countingProvider{fc: weather.Forecast{Summary: "clear", Temperature: 21}}
	proxy := weather.NewProxy(p, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		fc, err := proxy.Forecast(ctx, turin)
		if err != nil {
			t.Fatalf("forecast %d: %v", i, err)
		}
		if fc.Summary != "clear" {
			t.Errorf("summary = %q", fc.Summary)
		}
	}
	if p.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (cache hit)", p.calls)
	}

	if _, err := proxy.Forecast(ctx, models.Position{Lat: 44.9, Lon: 8.2}); err != nil {
		t.Fatalf("other position: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (per-position cache)", p.calls)
	}
}

func TestProxy_ExpiredEntryRefreshes(t *testing.T) {
	p := &countingProvider{fc: weather.Forecast{Summary: "clear"}}
	proxy := weather.NewProxy(p, time.Nanosecond, zap.NewNop())
	ctx := context.Background()

	proxy.Forecast(ctx, turin)
	time.Sleep(time.Millisecond)
	proxy.Forecast(ctx, turin)
	if p.calls != 2 {
		t.Errorf("provider calls = %d, want 2 (ttl elapsed)", p.calls)
	}
}

func TestProxy_StaleBeatsFailure(t *testing.T) {
	p := &countingProvider{fc: weather.Forecast{Summary: "clear"}}
	proxy := weather.NewProxy(p, time.Nanosecond, zap.NewNop())
	ctx := context.Background()

	if _, err := proxy.Forecast(ctx, turin); err != nil {
		t.Fatalf("prime cache: %v", err)
	}
	time.Sleep(time.Millisecond)
	p.err = errors.New("upstream down")

	fc, err := proxy.Forecast(ctx, turin)
	if err != nil {
		t.Fatalf("stale entry should be served, got %v", err)
	}
	if fc.Summary != "clear" {
		t.Errorf("summary = %q, want the stale report", fc.Summary)
	}

	// With nothing cached the failure surfaces.
	if _, err := proxy.Forecast(ctx, models.Position{Lat: 1, Lon: 1}); err == nil {
		t.Error("cold failure should return the provider error")
	}
}

func TestOpenMeteo_ParsesCurrentWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("current_weather") != "true" {
			t.Errorf("missing current_weather param, url = %s", r.URL)
		}
		w.Write([]byte(`{"current_weather":{"temperature":18.4,"weathercode":61}}`))
	}))
	defer srv.Close()

	o := weather.NewOpenMeteo()
	o.BaseURL = srv.URL
	fc, err := o.Forecast(context.Background(), turin)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if fc.Temperature != 18.4 {
		t.Errorf("temperature = %v, want 18.4", fc.Temperature)
	}
	if fc.Summary != "rain" {
		t.Errorf("summary = %q, want rain", fc.Summary)
	}
}

func TestOpenMeteo_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	o := weather.NewOpenMeteo()
	o.BaseURL = srv.URL
	if _, err := o.Forecast(context.Background(), turin); err == nil {
		t.Error("non-200 status should be an error")
	}
}
