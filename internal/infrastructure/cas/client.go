// Package cas integrates the CAS Common Chemistry API for synonym detection.
// Ingredient names are resolved to a CAS Registry Number, whose detail record
// carries the known synonym strings.
package cas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/formulynx/backend/internal/domain"
)

const (
	defaultRequestsPerSecond = 5.0
	batchSize                = 10 // concurrent lookups per batch
)

// Substance is one CAS registry record. RN is the registry number
// ("50-00-0"); Synonyms is only populated on detail responses.
type Substance struct {
	RN       string   `json:"rn"`
	Name     string   `json:"name"`
	Synonyms []string `json:"synonyms,omitempty"`
}

type searchResponse struct {
	Count   int         `json:"count"`
	Results []Substance `json:"results"`
}

// Client handles communication with the CAS Common Chemistry API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new CAS API client. rps bounds outbound request rate;
// zero or negative falls back to the default.
func NewClient(apiKey, baseURL string, rps float64) *Client {
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	limiter := rate.NewLimiter(rate.Limit(rps), batchSize)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug enables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// doRequest executes a rate-limited GET with the API key header.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSynonymServiceFailure, err)
	}
	return resp, nil
}

// SearchSubstance searches the registry by name and returns the first (most
// relevant) result, or ErrSubstanceNotFound when the registry has no entry.
func (c *Client) SearchSubstance(ctx context.Context, name string) (*Substance, error) {
	endpoint := fmt.Sprintf("%s/search", c.baseURL)
	params := url.Values{}
	params.Add("q", name)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry transient failures; 404 means "no such substance" and is final.
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt*200) * time.Millisecond)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrSubstanceNotFound
		}
		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[CAS] search %q attempt %d: status %d, body: %s", name, attempt, resp.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSynonymServiceFailure, resp.StatusCode)
			time.Sleep(time.Duration(attempt*200) * time.Millisecond)
			continue
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("failed to decode search response: %w", err)
		}
		if len(searchResp.Results) == 0 {
			return nil, domain.ErrSubstanceNotFound
		}

		if c.debug {
			log.Printf("[CAS] search %q: %d results, first RN %s", name, len(searchResp.Results), searchResp.Results[0].RN)
		}
		return &searchResp.Results[0], nil
	}

	return nil, lastErr
}

// DetailByRN retrieves the full record for a CAS Registry Number, including
// its synonym list.
func (c *Client) DetailByRN(ctx context.Context, rn string) (*Substance, error) {
	endpoint := fmt.Sprintf("%s/detail", c.baseURL)
	params := url.Values{}
	params.Add("cas_rn", rn)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrSubstanceNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrSynonymServiceFailure, resp.StatusCode, string(body))
	}

	var detail Substance
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		return nil, fmt.Errorf("failed to decode detail response: %w", err)
	}
	return &detail, nil
}

// SynonymsFor returns all known synonyms for an ingredient name: search by
// name, then pull the synonym list off the RN detail. The original name leads
// the list; duplicates are removed case-insensitively. A name the registry
// does not know yields an empty list, not an error.
func (c *Client) SynonymsFor(ctx context.Context, name string) ([]string, error) {
	found, err := c.SearchSubstance(ctx, name)
	if err != nil {
		if err == domain.ErrSubstanceNotFound {
			return nil, nil
		}
		return nil, err
	}
	if found.RN == "" {
		return nil, nil
	}

	detail, err := c.DetailByRN(ctx, found.RN)
	if err != nil {
		if err == domain.ErrSubstanceNotFound {
			return nil, nil
		}
		return nil, err
	}

	raw := make([]string, 0, len(detail.Synonyms)+2)
	raw = append(raw, name)
	if detail.Name != "" {
		raw = append(raw, detail.Name)
	}
	raw = append(raw, detail.Synonyms...)

	var synonyms []string
	seen := make(map[string]bool)
	for _, s := range raw {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		synonyms = append(synonyms, s)
	}
	return synonyms, nil
}

// SynonymsBatch looks up synonyms for multiple ingredients with bounded
// concurrency. Individual failures are absorbed as empty lists so that a
// flaky registry degrades match quality instead of failing the analysis.
func (c *Client) SynonymsBatch(ctx context.Context, names []string) (map[string][]string, error) {
	results := make(map[string][]string, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchSize)

	for _, name := range names {
		name := name
		g.Go(func() error {
			synonyms, err := c.SynonymsFor(gctx, name)
			if err != nil {
				log.Printf("[CAS] warning: synonym lookup failed for %q: %v", name, err)
				synonyms = nil
			}
			mu.Lock()
			results[name] = synonyms
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return results, nil
}
