package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// RemoteSource fetches entities as a JSON array from <baseURL>/<entity>.
// Includes are forwarded as a comma separated include parameter.
type RemoteSource[T any] struct {
	baseURL    string
	entity     string
	HTTPClient *http.Client
	log        zerolog.Logger
}

// NewRemoteSource creates a source whose client retries failed requests up
// to retryMax times.
func NewRemoteSource[T any](baseURL, entity string, retryMax int, log zerolog.Logger) *RemoteSource[T] {
	log = log.With().Str("component", "remote_source").Str("entity", entity).Logger()

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = retryMax
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	retryClient.Logger = nil
	retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt > 0 {
			log.Warn().Str("url", req.URL.String()).Int("attempt", attempt).Msg("Retrying upstream request")
		}
	}

	return &RemoteSource[T]{
		baseURL:    strings.TrimRight(baseURL, "/"),
		entity:     entity,
		HTTPClient: retryClient.StandardClient(),
		log:        log,
	}
}

func (s *RemoteSource[T]) Load(ctx context.Context, includes []string) ([]T, error) {
	uri, err := url.JoinPath(s.baseURL, s.entity)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream url: %w", err)
	}
	if len(includes) > 0 {
		uri += "?" + url.Values{"include": {strings.Join(includes, ",")}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.entity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("upstream returned %d for %s: %s", resp.StatusCode, s.entity, strings.TrimSpace(string(body)))
	}

	items := []T{}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", s.entity, err)
	}

	s.log.Debug().
		Str("url", uri).
		Int("count", len(items)).
		Msg("Fetched entities from upstream")
	return items, nil
}
