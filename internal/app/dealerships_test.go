package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/app"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

func TestFetchDealers_EndpointPerState(t *testing.T) {
	up := &fakeUpstream{resp: map[string]string{
		"/fetchDealers":       `[{"id":1,"st":"TX"},{"id":2,"st":"KS"}]`,
		"/fetchDealers/Texas": `{"rows":[{"doc":{"id":1,"st":"TX"}}]}`,
	}}
	svc := app.NewDealershipService(up, &fakeAnalyzer{}, 4, "")

	for _, state := range []string{"", "All"} {
		ds, err := svc.FetchDealers(context.Background(), state)
		require.NoError(t, err)
		assert.Len(t, ds, 2)
		assert.Equal(t, "/fetchDealers", up.last().endpoint)
	}

	ds, err := svc.FetchDealers(context.Background(), "Texas")
	require.NoError(t, err)
	assert.Equal(t, "/fetchDealers/Texas", up.last().endpoint)
	if diff := cmp.Diff([]domain.Dealer{{ID: 1, State: "TX"}}, ds); diff != "" {
		t.Fatalf("dealers (-want +got):\n%s", diff)
	}
}

func TestFetchDealers_UnrecognizedShapeIsEmpty(t *testing.T) {
	for _, raw := range []string{`{"error":"db down"}`, `null`, `"x"`} {
		up := &fakeUpstream{resp: map[string]string{"/fetchDealers": raw}}
		ds, err := app.NewDealershipService(up, &fakeAnalyzer{}, 1, "").FetchDealers(context.Background(), "")
		require.NoError(t, err, raw)
		require.NotNil(t, ds, raw)
		assert.Empty(t, ds, raw)
	}
}

func TestFetchDealers_UpstreamFailure(t *testing.T) {
	up := &fakeUpstream{errs: map[string]error{"/fetchDealers": fmt.Errorf("%w: refused", domain.ErrUpstreamUnavailable)}}
	_, err := app.NewDealershipService(up, &fakeAnalyzer{}, 1, "").FetchDealers(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	// a missing list endpoint is a broken upstream too
	_, err = app.NewDealershipService(&fakeUpstream{}, &fakeAnalyzer{}, 1, "").FetchDealers(context.Background(), "Kansas")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestFetchDealer(t *testing.T) {
	up := &fakeUpstream{resp: map[string]string{
		"/fetchDealer/15": `[{"id":15,"full_name":"Best Cars","zip":78701}]`,
		"/fetchDealer/16": `[]`,
	}}
	svc := app.NewDealershipService(up, &fakeAnalyzer{}, 1, "")

	d, err := svc.FetchDealer(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, domain.Dealer{ID: 15, FullName: "Best Cars", Zip: "78701"}, d)

	_, err = svc.FetchDealer(context.Background(), 16)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.FetchDealer(context.Background(), 17)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchReviews_AttachesSentimentInOrder(t *testing.T) {
	up := &fakeUpstream{resp: map[string]string{
		"/fetchReviews/dealer/15": `[{"id":1,"dealership":15,"review":"Fantastic service"},{"id":2,"dealership":15,"review":""}]`,
	}}
	an := &fakeAnalyzer{labels: map[string]string{"Fantastic service": "positive"}}
	svc := app.NewDealershipService(up, an, 4, "")

	got, err := svc.FetchReviews(context.Background(), 15)
	require.NoError(t, err)

	want := []domain.Review{
		{ID: 1, Dealership: 15, Review: "Fantastic service", Sentiment: "positive"},
		{ID: 2, Dealership: 15, Review: "", Sentiment: "neutral"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("reviews (-want +got):\n%s", diff)
	}
	assert.Equal(t, "15", up.last().params.Get("dealerId"))
}

func TestFetchReviews_BoundedConcurrencyKeepsOrder(t *testing.T) {
	raw := "["
	labels := map[string]string{}
	for i := 1; i <= 20; i++ {
		if i > 1 {
			raw += ","
		}
		text := fmt.Sprintf("review %d", i)
		raw += fmt.Sprintf(`{"id":%d,"review":%q}`, i, text)
		if i%2 == 0 {
			labels[text] = "positive"
		} else {
			labels[text] = "negative"
		}
	}
	raw += "]"

	up := &fakeUpstream{resp: map[string]string{"/fetchReviews/dealer/3": raw}}
	an := &fakeAnalyzer{labels: labels, delay: 5 * time.Millisecond}
	got, err := app.NewDealershipService(up, an, 3, "").FetchReviews(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, got, 20)

	for i, r := range got {
		assert.EqualValues(t, i+1, r.ID)
		assert.Equal(t, labels[r.Review], r.Sentiment)
	}
	assert.EqualValues(t, 20, an.calls.Load())
	assert.LessOrEqual(t, an.maxSeen.Load(), int32(3))
}

func TestFetchReviews_NonListAndMissingAreEmpty(t *testing.T) {
	up := &fakeUpstream{resp: map[string]string{"/fetchReviews/dealer/1": `{"message":"none"}`}}
	svc := app.NewDealershipService(up, &fakeAnalyzer{}, 2, "")

	got, err := svc.FetchReviews(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.Review{}, got)

	got, err = svc.FetchReviews(context.Background(), 2) // 404 from upstream
	require.NoError(t, err)
	assert.Equal(t, []domain.Review{}, got)
}

func TestFetchReviews_UpstreamFailure(t *testing.T) {
	up := &fakeUpstream{errs: map[string]error{"/fetchReviews/dealer/4": fmt.Errorf("%w: refused", domain.ErrUpstreamUnavailable)}}
	an := &fakeAnalyzer{}

	got, err := app.NewDealershipService(up, an, 2, "").FetchReviews(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Nil(t, got)
	assert.EqualValues(t, 0, an.calls.Load())
}

func TestFetchReviews_CancelledContextStopsFanOut(t *testing.T) {
	up := &fakeUpstream{resp: map[string]string{
		"/fetchReviews/dealer/9": `[{"id":1,"review":"a"},{"id":2,"review":"b"},{"id":3,"review":"c"}]`,
	}}
	an := &fakeAnalyzer{block: true}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := app.NewDealershipService(up, an, 1, "").FetchReviews(ctx, 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
}

func TestPostReview_ForwardsUnchanged(t *testing.T) {
	up := &fakeUpstream{}
	svc := app.NewDealershipService(up, &fakeAnalyzer{}, 1, "")

	payload := map[string]any{"dealership": 15, "review": "ok", "anything": []any{1, 2}}
	out, err := svc.PostReview(context.Background(), payload)
	require.NoError(t, err)

	c := up.last()
	assert.Equal(t, "POST", c.method)
	assert.Equal(t, app.DefaultReviewInsertPath, c.endpoint)
	assert.Equal(t, payload, c.body)
	assert.Equal(t, "ok", out.(map[string]any)["review"])
}

func TestPostReview_UpstreamFailure(t *testing.T) {
	up := &fakeUpstream{errs: map[string]error{"/reviews": domain.ErrUpstreamUnavailable}}
	_, err := app.NewDealershipService(up, &fakeAnalyzer{}, 1, "/reviews").PostReview(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestSubmitReview_BuildsPayloadFromSession(t *testing.T) {
	up := &fakeUpstream{}
	an := &fakeAnalyzer{labels: map[string]string{"Loved it": "positive"}}
	svc := app.NewDealershipService(up, an, 1, "")
	sess := domain.Session{UserName: "ann", FirstName: "Ann", LastName: "Lee"}

	_, err := svc.SubmitReview(context.Background(), sess, domain.NewReview{
		Dealership: 15, Review: "Loved it", Purchase: true,
		PurchaseDate: "02/16/2023", CarMake: "Audi", CarModel: "A6", CarYear: 2021,
	})
	require.NoError(t, err)

	body := up.last().body.(map[string]any)
	assert.Equal(t, "Ann Lee", body["name"])
	assert.Equal(t, "positive", body["sentiment"])
	assert.Equal(t, "A6", body["car_model"])
	assert.Equal(t, 2021, body["car_year"])
}

func TestSubmitReview_Validation(t *testing.T) {
	up := &fakeUpstream{}
	svc := app.NewDealershipService(up, &fakeAnalyzer{}, 1, "")

	_, err := svc.SubmitReview(context.Background(), domain.Session{UserName: "ann"}, domain.NewReview{Review: "x"})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "required", ve.Fields["dealership"])

	_, err = svc.SubmitReview(context.Background(), domain.Session{UserName: "ann"}, domain.NewReview{Dealership: 1, CarYear: 1800})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "gte", ve.Fields["car_year"])
	assert.Empty(t, up.calls)
}
