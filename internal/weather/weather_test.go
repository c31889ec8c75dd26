package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/personalai/assistant/internal/llm"
	"github.com/personalai/assistant/internal/models"
	"github.com/personalai/assistant/internal/store"
)

// forecastJSON builds a provider response with one entry every 3 hours
// starting at from, in a city offset seconds east of UTC.
func forecastJSON(from time.Time, entries int, offset int) string {
	type item struct {
		Dt      int64            `json:"dt"`
		Main    map[string]any   `json:"main"`
		Weather []map[string]any `json:"weather"`
		Wind    map[string]any   `json:"wind"`
	}
	list := make([]item, 0, entries)
	for i := 0; i < entries; i++ {
		ts := from.Add(time.Duration(i) * 3 * time.Hour)
		list = append(list, item{
			Dt:      ts.Unix(),
			Main:    map[string]any{"temp": 10 + float64(ts.Hour()), "feels_like": 9.5, "humidity": 60},
			Weather: []map[string]any{{"main": "Clouds", "description": fmt.Sprintf("entry %02d", ts.Hour())}},
			Wind:    map[string]any{"speed": 3.2},
		})
	}
	b, _ := json.Marshal(map[string]any{
		"city": map[string]any{"name": "Berlin", "timezone": offset},
		"list": list,
	})
	return string(b)
}

func TestClientForecast(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Berlin", r.URL.Query().Get("q"))
		assert.Equal(t, "key-1", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		_, _ = w.Write([]byte(forecastJSON(from, 8, 0)))
	}))
	defer srv.Close()

	f, err := NewClient(srv.URL+"/data/2.5/forecast", "key-1", time.Second).Forecast(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Len(t, f.List, 8)
	require.NotNil(t, f.City.Timezone)
	assert.Equal(t, 0, *f.City.Timezone)
}

func TestClientForecastUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", time.Second).Forecast(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
	assert.Contains(t, err.Error(), "city not found")
}

func decodeForecast(t *testing.T, raw string) *Forecast {
	t.Helper()
	var f Forecast
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	return &f
}

func TestSelectNoonPicksClosestEntry(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := decodeForecast(t, forecastJSON(from, 40, 0))

	c, err := SelectNoon(f, "2024-06-02")
	require.NoError(t, err)
	assert.Equal(t, 12, c.Time.Hour())
	assert.Equal(t, 2, c.Time.Day())
	assert.Equal(t, 22.0, c.Temperature)
	assert.Equal(t, "Clouds with temperature of 22°C", c.Summary)
	assert.Equal(t, "Clouds", c.Conditions)
}

func TestSelectNoonUsesCityOffset(t *testing.T) {
	// Entries at 01:00, 04:00, ... UTC. In UTC+2 those are 03:00, 06:00, 09:00, 12:00 ...
	from := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	f := decodeForecast(t, forecastJSON(from, 16, 2*3600))

	c, err := SelectNoon(f, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 12, c.Time.Hour())
	assert.Equal(t, "entry 10", c.Description, "provider hour 10 UTC is local noon")
}

func TestSelectNoonOutOfRange(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f := decodeForecast(t, forecastJSON(from, 40, 0)) // covers 2024-06-01 .. 2024-06-05

	for _, date := range []string{"2024-06-07", "2024-05-31", "2025-01-01"} {
		_, err := SelectNoon(f, date)
		require.Error(t, err, date)
		assert.True(t, errors.Is(err, ErrForecastUnavailable), date)
		assert.Contains(t, err.Error(), "within the next 5 days")
	}
}

func TestSelectNoonPartialDay(t *testing.T) {
	// Forecast starts late on the requested day: only 18:00 and 21:00 exist.
	from := time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	f := decodeForecast(t, forecastJSON(from, 4, 0))

	c, err := SelectNoon(f, "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 18, c.Time.Hour())
}

type countingForecaster struct {
	calls atomic.Int32
	f     *Forecast
	delay time.Duration
}

func (c *countingForecaster) Forecast(context.Context, string) (*Forecast, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	return c.f, nil
}

func TestCachedForecasterCollapsesAndExpires(t *testing.T) {
	next := &countingForecaster{f: &Forecast{}, delay: 20 * time.Millisecond}
	cache := NewCachedForecaster(next, time.Minute)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Forecast(context.Background(), "Berlin")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), next.calls.Load())

	_, _ = cache.Forecast(context.Background(), " berlin ")
	assert.Equal(t, int32(1), next.calls.Load(), "location key is normalized")

	now = now.Add(2 * time.Minute)
	_, _ = cache.Forecast(context.Background(), "Berlin")
	assert.Equal(t, int32(2), next.calls.Load())
}

type blockingForecaster struct {
	release chan struct{}
	started chan struct{}
	calls   atomic.Int32
}

func (b *blockingForecaster) Forecast(ctx context.Context, _ string) (*Forecast, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	select {
	case <-b.release:
		return &Forecast{}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestCachedForecasterSurvivesFirstCallerCancel(t *testing.T) {
	next := &blockingForecaster{release: make(chan struct{}), started: make(chan struct{})}
	cache := NewCachedForecaster(next, time.Minute)

	firstCtx, cancel := context.WithCancel(context.Background())
	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = cache.Forecast(firstCtx, "Berlin")
	}()
	<-next.started

	secondErr := make(chan error, 1)
	go func() {
		_, err := cache.Forecast(context.Background(), "Berlin")
		secondErr <- err
	}()

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(next.release)

	require.NoError(t, <-secondErr)
	<-firstDone
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachedForecasterEvictsExpired(t *testing.T) {
	next := &countingForecaster{f: &Forecast{}}
	cache := NewCachedForecaster(next, time.Minute)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	for _, loc := range []string{"Berlin", "Paris", "Rome"} {
		_, err := cache.Forecast(context.Background(), loc)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, cache.size())

	now = now.Add(2 * time.Minute)
	_, err := cache.Forecast(context.Background(), "Oslo")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.size(), "expired locations are dropped on insert")

	now = now.Add(2 * time.Minute)
	_, ok := cache.get("oslo")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.size(), "expired entry is dropped on lookup")
}

type staticForecaster struct{ f *Forecast }

func (s staticForecaster) Forecast(context.Context, string) (*Forecast, error) { return s.f, nil }

type fakeUsers struct{ err error }

func (f fakeUsers) GetEmployee(_ context.Context, id int64) (models.Employee, error) {
	if f.err != nil {
		return models.Employee{}, f.err
	}
	return models.Employee{ID: id, Name: "Nick"}, nil
}

func TestRecommend(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	forecasts := staticForecaster{decodeForecast(t, forecastJSON(from, 40, 0))}

	var bindings llm.Bindings
	gen := llm.GeneratorFunc(func(_ context.Context, p llm.Prompt, b llm.Bindings) (string, error) {
		bindings = b
		return "Here you go\n```json\n{\"summary\": \"Mild\", \"outfit\": {\"top\": [\"1\", \"t-shirt\"]}, \"tips\": [\"Bring a jacket\"]}\n```", nil
	})

	r := NewRecommender(forecasts, fakeUsers{err: store.ErrNotFound}, gen)
	resp, err := r.Recommend(context.Background(), models.DressRequest{
		UserID: 99, Location: "Berlin", Date: "2024-06-02", Occasion: "wedding",
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-06-02", resp.Date)
	assert.Equal(t, 22.0, resp.Temperature)
	assert.Equal(t, "Clouds", resp.Conditions)
	assert.Equal(t, "Mild", resp.Recommendations["summary"])
	assert.Equal(t, "22", bindings["temperature"])
	assert.Contains(t, bindings["inventory"], `"sweater"`)
	assert.Contains(t, bindings["extras"], "Occasion: wedding")
}

func TestRecommendFallbacks(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	forecasts := staticForecaster{decodeForecast(t, forecastJSON(from, 40, 0))}
	req := models.DressRequest{UserID: 1, Location: "Berlin", Date: "2024-06-03"}

	raw := NewRecommender(forecasts, fakeUsers{}, llm.GeneratorFunc(func(context.Context, llm.Prompt, llm.Bindings) (string, error) {
		return "Wear a light jacket.", nil
	}))
	resp, err := raw.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Wear a light jacket.", resp.Recommendations["summary"])
	assert.Equal(t, map[string]any{}, resp.Recommendations["outfit"])

	failing := NewRecommender(forecasts, fakeUsers{}, llm.GeneratorFunc(func(context.Context, llm.Prompt, llm.Bindings) (string, error) {
		return "", llm.ErrProvider
	}))
	resp, err = failing.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, resp.Recommendations["summary"], "Error generating recommendations")
}

func TestRecommendOutOfRangeAndUserErrors(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	forecasts := staticForecaster{decodeForecast(t, forecastJSON(from, 40, 0))}
	gen := llm.GeneratorFunc(func(context.Context, llm.Prompt, llm.Bindings) (string, error) {
		t.Fatal("model must not be called")
		return "", nil
	})

	_, err := NewRecommender(forecasts, fakeUsers{}, gen).Recommend(context.Background(),
		models.DressRequest{Location: "Berlin", Date: "2024-06-20"})
	assert.True(t, errors.Is(err, ErrForecastUnavailable))

	_, err = NewRecommender(forecasts, fakeUsers{err: errors.New("db down")}, gen).Recommend(context.Background(),
		models.DressRequest{Location: "Berlin", Date: "2024-06-02"})
	assert.ErrorContains(t, err, "db down")
}
