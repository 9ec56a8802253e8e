// internal/app/system/weather/weather.go

// Package weather decorates posts with a forecast for their position.
// The provider is an external collaborator; lookups are best-effort and a
// failure never fails the calling operation.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/synkteam/municipath/internal/domain/models"
	"go.uber.org/zap"
)

// Forecast is the condensed weather report attached to a post view.
type Forecast struct {
	Summary     string  `json:"summary"`
	Temperature float64 `json:"temperature"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Provider looks up the forecast for a position.
type Provider interface {
	Forecast(ctx context.Context, pos models.Position) (Forecast, error)
}

// Proxy caches provider results per position for a TTL so that hot posts
// do not hammer the upstream service.
type Proxy struct {
	provider Provider
	ttl      time.Duration
	log      *zap.Logger

	mu    sync.Mutex
	cache map[models.Position]Forecast
}

func NewProxy(provider Provider, ttl time.Duration, log *zap.Logger) *Proxy {
	return &Proxy{
		provider: provider,
		ttl:      ttl,
		log:      log,
		cache:    make(map[models.Position]Forecast),
	}
}

// Forecast returns the cached forecast when fresh, otherwise asks the
// provider and refreshes the cache. On provider failure a stale entry is
// better than nothing and is returned as-is.
func (p *Proxy) Forecast(ctx context.Context, pos models.Position) (Forecast, error) {
	p.mu.Lock()
	cached, ok := p.cache[pos]
	p.mu.Unlock()
	if ok && time.Since(cached.FetchedAt) < p.ttl {
		return cached, nil
	}

	fresh, err := p.provider.Forecast(ctx, pos)
	if err != nil {
		if p.log != nil {
			p.log.Warn("weather lookup failed", zap.Error(err))
		}
		if ok {
			return cached, nil
		}
		return Forecast{}, err
	}
	fresh.FetchedAt = time.Now()

	p.mu.Lock()
	p.cache[pos] = fresh
	p.mu.Unlock()
	return fresh, nil
}

// OpenMeteo is a Provider backed by the free open-meteo.com API.
type OpenMeteo struct {
	BaseURL string
	Client  *http.Client
}

func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{
		BaseURL: "https://api.open-meteo.com/v1/forecast",
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (o *OpenMeteo) Forecast(ctx context.Context, pos models.Position) (Forecast, error) {
	url := fmt.Sprintf("%s?latitude=%f&longitude=%f&current_weather=true", o.BaseURL, pos.Lat, pos.Lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Forecast{}, err
	}
	resp, err := o.Client.Do(req)
	if err != nil {
		return Forecast{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Forecast{}, fmt.Errorf("weather api status %d", resp.StatusCode)
	}

	var body struct {
		CurrentWeather struct {
			Temperature float64 `json:"temperature"`
			WeatherCode int     `json:"weathercode"`
		} `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Forecast{}, err
	}
	return Forecast{
		Summary:     codeSummary(body.CurrentWeather.WeatherCode),
		Temperature: body.CurrentWeather.Temperature,
	}, nil
}

// codeSummary maps WMO weather codes to a coarse human label.
func codeSummary(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code < 4:
		return "partly cloudy"
	case code < 50:
		return "fog"
	case code < 70:
		return "rain"
	case code < 80:
		return "snow"
	default:
		return "storm"
	}
}

// Static is a Provider that always returns the same forecast. Used in
// tests and when no upstream is configured.
type Static struct {
	Report Forecast
}

func (s Static) Forecast(context.Context, models.Position) (Forecast, error) {
	return s.Report, nil
}
