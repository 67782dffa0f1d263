package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/observability"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

// Client classifies review text through the analyzer service. It absorbs every
// failure into a neutral label and records why in Sentiment.Provenance.
type Client struct {
	base    string
	hc      *http.Client
	timeout time.Duration
}

func New(base string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid sentiment analyzer url %q", base)
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base:    strings.TrimRight(u.String(), "/"),
		hc:      &http.Client{},
		timeout: timeout,
	}, nil
}

type analyzeResponse struct {
	Sentiment *struct {
		Label *string `json:"label"`
	} `json:"sentiment"`
}

func (c *Client) Analyze(ctx context.Context, text string) domain.Sentiment {
	s := c.analyze(ctx, text)
	observability.ObserveSentiment(s.Label, string(s.Provenance))
	return s
}

// URL is the analyzer endpoint for text; the text is a single escaped path segment.
func (c *Client) URL(text string) string {
	return c.base + "/analyze/" + url.PathEscape(text)
}

func (c *Client) analyze(ctx context.Context, text string) domain.Sentiment {
	if strings.TrimSpace(text) == "" {
		return domain.NeutralBecause(domain.ProvenanceEmptyText)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(text), nil)
	if err != nil {
		log.Warn().Err(err).Msg("sentiment request build failed")
		return domain.NeutralBecause(domain.ProvenanceUnavailable)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("sentiment", "/analyze", 0, time.Since(start))
		log.Warn().Err(err).Msg("sentiment analyzer unreachable")
		return domain.NeutralBecause(domain.ProvenanceUnavailable)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("sentiment", "/analyze", resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		log.Warn().Int("status", resp.StatusCode).Msg("sentiment analyzer returned non-200")
		return domain.NeutralBecause(domain.ProvenanceUnavailable)
	}

	var out analyzeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		log.Warn().Err(err).Msg("sentiment analyzer returned invalid JSON")
		return domain.NeutralBecause(domain.ProvenanceUnavailable)
	}
	if out.Sentiment == nil || out.Sentiment.Label == nil || strings.TrimSpace(*out.Sentiment.Label) == "" {
		return domain.NeutralBecause(domain.ProvenanceMissingLabel)
	}

	label := strings.ToLower(strings.TrimSpace(*out.Sentiment.Label))
	if !domain.IsKnownLabel(label) {
		log.Debug().Str("label", label).Msg("sentiment label outside known set")
		return domain.NeutralBecause(domain.ProvenanceUnrecognized)
	}
	return domain.Sentiment{Label: label, Provenance: domain.ProvenanceAnalyzed}
}
