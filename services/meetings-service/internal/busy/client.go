package busy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/availability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// QueryLayout is the UTC timestamp format the integrations API expects.
const QueryLayout = "2006-01-02T15:04:05Z"

// naive layouts are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Client fetches busy intervals from the calendar integrations API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Events is a pointer so a missing or null array is told apart from an empty one.
type eventsResponse struct {
	Events *[]struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"events"`
}

// BusyIntervals implements availability.BusyProvider. Every failure wraps availability.ErrUpstream.
func (c *Client) BusyIntervals(ctx context.Context, ownerID string, start, end time.Time) ([]availability.Interval, error) {
	q := url.Values{}
	q.Set("start_time", start.UTC().Format(QueryLayout))
	q.Set("end_time", end.UTC().Format(QueryLayout))
	q.Set("id", ownerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/events?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", availability.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	httpx.PropagateRequestID(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", availability.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: integrations api returned %d", availability.ErrUpstream, resp.StatusCode)
	}

	var body eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode events: %v", availability.ErrUpstream, err)
	}
	if body.Events == nil {
		return nil, fmt.Errorf("%w: response has no events array", availability.ErrUpstream)
	}

	events := *body.Events
	out := make([]availability.Interval, 0, len(events))
	for i, e := range events {
		s, err := ParseTimestamp(e.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d start: %v", availability.ErrUpstream, i, err)
		}
		f, err := ParseTimestamp(e.End)
		if err != nil {
			return nil, fmt.Errorf("%w: event %d end: %v", availability.ErrUpstream, i, err)
		}
		if !s.Before(f) {
			return nil, fmt.Errorf("%w: event %d starts at or after its end", availability.ErrUpstream, i)
		}
		out = append(out, availability.Interval{Start: s, End: f})
	}
	return out, nil
}

// ParseTimestamp accepts RFC 3339 and zone-less ISO 8601 timestamps; the latter are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

var _ availability.BusyProvider = (*Client)(nil)
