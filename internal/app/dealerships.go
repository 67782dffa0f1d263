package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

const DefaultReviewInsertPath = "/insert_review"

// DealershipService proxies dealer and review reads to the document service
// and enriches reviews with sentiment on the way out.
type DealershipService struct {
	upstream   domain.UpstreamClient
	analyzer   domain.SentimentAnalyzer
	workers    int
	insertPath string
}

func NewDealershipService(u domain.UpstreamClient, a domain.SentimentAnalyzer, workers int, insertPath string) *DealershipService {
	if workers < 1 {
		workers = 1
	}
	if strings.TrimSpace(insertPath) == "" {
		insertPath = DefaultReviewInsertPath
	}
	return &DealershipService{upstream: u, analyzer: a, workers: workers, insertPath: insertPath}
}

// FetchDealers lists every dealer, or only those in state when it is non-empty.
// Unrecognized payload shapes yield an empty list; an unreachable upstream is an error.
func (s *DealershipService) FetchDealers(ctx context.Context, state string) ([]domain.Dealer, error) {
	endpoint := "/fetchDealers"
	if st := strings.TrimSpace(state); st != "" && !strings.EqualFold(st, "All") {
		endpoint = "/fetchDealers/" + url.PathEscape(st)
	}
	raw, err := s.upstream.Get(ctx, endpoint, nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// a list endpoint that 404s is a broken upstream, not an empty state
			return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return nil, err
	}
	p, err := classifyDealerPayload(raw)
	if err != nil {
		return nil, err
	}
	switch v := p.(type) {
	case dealerList, dealerRows:
		return mapDealers(v.docs()), nil
	default:
		log.Warn().Str("endpoint", endpoint).Str("shape", fmt.Sprintf("%T", v)).Msg("unrecognized dealer list payload")
		return []domain.Dealer{}, nil
	}
}

// FetchDealer returns the dealer with id or domain.ErrNotFound.
func (s *DealershipService) FetchDealer(ctx context.Context, id int64) (domain.Dealer, error) {
	raw, err := s.upstream.Get(ctx, "/fetchDealer/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return domain.Dealer{}, err
	}
	p, err := classifyDealerPayload(raw)
	if err != nil {
		return domain.Dealer{}, err
	}
	docs := p.docs()
	if len(docs) == 0 {
		return domain.Dealer{}, fmt.Errorf("dealer %d: %w", id, domain.ErrNotFound)
	}
	// the document service answers a find with a list; prefer the exact id match
	for _, d := range docs {
		if dl := mapDealer(d); dl.ID == id {
			return dl, nil
		}
	}
	return mapDealer(docs[0]), nil
}

// FetchReviews returns the dealer's reviews in upstream order, each carrying a
// sentiment label. A non-list payload means no reviews.
func (s *DealershipService) FetchReviews(ctx context.Context, dealerID int64) ([]domain.Review, error) {
	id := strconv.FormatInt(dealerID, 10)
	raw, err := s.upstream.Get(ctx, "/fetchReviews/dealer/"+id, url.Values{"dealerId": {id}})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.Review{}, nil
		}
		return nil, err
	}
	docs, ok, err := reviewDocs(raw)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Debug().Int64("dealer_id", dealerID).Msg("reviews payload is not a list")
		return []domain.Review{}, nil
	}

	reviews := make([]domain.Review, len(docs))
	for i, d := range docs {
		reviews[i] = mapReview(d)
	}
	if err := s.attachSentiments(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// PostReview forwards payload unchanged to the insert endpoint and returns the
// upstream's decoded response.
func (s *DealershipService) PostReview(ctx context.Context, payload any) (any, error) {
	raw, err := s.upstream.Post(ctx, s.insertPath, payload, nil)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: insert endpoint %s missing", domain.ErrUpstreamUnavailable, s.insertPath)
		}
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamBadPayload, err)
	}
	return out, nil
}

// SubmitReview builds the insert payload for a signed-in user: the author is the
// session's display name and the text is classified before it is stored.
func (s *DealershipService) SubmitReview(ctx context.Context, sess domain.Session, in domain.NewReview) (any, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Dealership <= 0 {
		return nil, &domain.ValidationError{Fields: map[string]string{"dealership": "required"}}
	}
	sent := s.analyzer.Analyze(ctx, in.Review)
	payload := buildReviewPayload(sess.DisplayName(), in, sent.Label)

	out, err := s.PostReview(ctx, payload)
	if err != nil {
		return nil, err
	}
	log.Info().
		Int64("dealer_id", in.Dealership).
		Str("user", sess.UserName).
		Str("sentiment", sent.Label).
		Str("provenance", string(sent.Provenance)).
		Msg("review submitted")
	return out, nil
}
