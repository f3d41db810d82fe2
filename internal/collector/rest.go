package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PatternSentinel/internal/model"
)

// RESTFetcher implements Fetcher against a self-hosted bar server.
type RESTFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTFetcher creates a new fetcher with optional proxy support.
func NewRESTFetcher(baseURL, apiKey, proxyURL string) *RESTFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &RESTFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   15 * time.Second,
			Transport: transport,
		},
	}
}

func (f *RESTFetcher) Name() string { return "rest" }

// restBar is the expected JSON shape from the bar server.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// FetchSeries requests bars at the native cadence. Servers that only store
// daily bars answer weekly and monthly requests through a daily fetch plus
// calendar bucketing on our side.
func (f *RESTFetcher) FetchSeries(ctx context.Context, symbol string, period model.Period, interval model.Interval) (*model.Series, error) {
	bars, err := f.fetchBars(ctx, symbol, interval, barLimit(period, interval))
	if err != nil && interval != model.IntervalDaily {
		daily, dailyErr := f.fetchBars(ctx, symbol, model.IntervalDaily, barLimit(period, model.IntervalDaily))
		if dailyErr != nil {
			return nil, fmt.Errorf("%s fetch failed: %w; daily fallback also failed: %w", interval, err, dailyErr)
		}
		bars = aggregateDaily(daily, interval)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return &model.Series{
		Symbol:    symbol,
		Interval:  interval,
		Bars:      bars,
		FetchedAt: time.Now(),
	}, nil
}

func (f *RESTFetcher) fetchBars(ctx context.Context, symbol string, interval model.Interval, limit int) ([]model.Bar, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bars?symbol=%s&interval=%s&limit=%d",
		f.BaseURL, url.QueryEscape(symbol), interval, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}
	var raw []restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	bars := make([]model.Bar, len(raw))
	for i, rb := range raw {
		bars[i] = model.Bar{
			Time:   time.Unix(rb.Timestamp, 0),
			Open:   rb.Open,
			High:   rb.High,
			Low:    rb.Low,
			Close:  rb.Close,
			Volume: rb.Volume,
		}
	}
	// Ensure chronological order
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// barLimit sizes the request so the period is covered at the given cadence.
func barLimit(period model.Period, interval model.Interval) int {
	days := 365
	switch period {
	case model.Period3Months:
		days = 91
	case model.Period6Months:
		days = 182
	case model.Period1Year:
		days = 365
	case model.Period2Years:
		days = 730
	case model.Period5Years:
		days = 1826
	}
	switch interval {
	case model.IntervalWeekly:
		return days/7 + 1
	case model.IntervalMonthly:
		return days/30 + 1
	default:
		return days
	}
}

// aggregateDaily buckets daily bars into calendar ISO weeks or calendar
// months: first open, max high, min low, last close, summed volume.
func aggregateDaily(daily []model.Bar, interval model.Interval) []model.Bar {
	if len(daily) == 0 {
		return nil
	}
	bucketKey := func(t time.Time) int {
		if interval == model.IntervalMonthly {
			return t.Year()*100 + int(t.Month())
		}
		year, week := t.ISOWeek()
		return year*100 + week
	}

	var out []model.Bar
	var bucket model.Bar
	var started bool

	for _, d := range daily {
		if !started {
			bucket = d
			started = true
			continue
		}
		if bucketKey(d.Time) != bucketKey(bucket.Time) {
			out = append(out, bucket)
			bucket = d
			continue
		}
		if d.High > bucket.High {
			bucket.High = d.High
		}
		if d.Low < bucket.Low {
			bucket.Low = d.Low
		}
		bucket.Close = d.Close
		bucket.Volume += d.Volume
	}
	if started {
		out = append(out, bucket)
	}
	return out
}
