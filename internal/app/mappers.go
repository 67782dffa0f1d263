package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

/********** upstream payload shapes **********/

// dealerPayload is the tagged union of top-level shapes the dealer service
// answers with. Each variant knows how to turn itself into dealer documents.
type dealerPayload interface {
	docs() []map[string]any
}

type (
	// [{...}, {...}]
	dealerList []any
	// {"rows": [{...} | {"doc": {...}}, ...]}, the changes/all_docs convention
	dealerRows []any
	// a bare document, only meaningful for single-dealer lookups
	dealerDoc map[string]any
	// anything else: scalars, null, objects without rows
	unrecognizedPayload struct{ kind string }
)

func (p dealerList) docs() []map[string]any          { return unwrapDocs(p) }
func (p dealerRows) docs() []map[string]any          { return unwrapDocs(p) }
func (p dealerDoc) docs() []map[string]any           { return unwrapDocs([]any{map[string]any(p)}) }
func (p unrecognizedPayload) docs() []map[string]any { return nil }

func classifyDealerPayload(raw json.RawMessage) (dealerPayload, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamBadPayload, err)
	}
	switch t := v.(type) {
	case []any:
		return dealerList(t), nil
	case map[string]any:
		if rows, ok := t["rows"].([]any); ok {
			return dealerRows(rows), nil
		}
		return dealerDoc(t), nil
	case nil:
		return unrecognizedPayload{kind: "null"}, nil
	default:
		return unrecognizedPayload{kind: fmt.Sprintf("%T", t)}, nil
	}
}

// unwrapDocs keeps object elements, replacing {"doc": {...}} wrappers by the inner document.
func unwrapDocs(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if inner, ok := m["doc"].(map[string]any); ok {
			m = inner
		}
		out = append(out, m)
	}
	return out
}

// reviewDocs accepts only a plain list; any other shape is no reviews.
func reviewDocs(raw json.RawMessage) ([]map[string]any, bool, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrUpstreamBadPayload, err)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false, nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, it := range list {
		if m, ok := it.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, true, nil
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupText returns a string at path, rendering numbers without exponent; "" otherwise.
func lookupText(m map[string]any, paths ...string) string {
	for _, p := range paths {
		switch v := lookupAny(m, p).(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

// getFloatFlexible: number from several paths (float64/int/string like "8,0").
func getFloatFlexible(m map[string]any, paths ...string) float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// firstInt64Flexible: int64 from several paths (float64/int/string); 0 when none parse.
func firstInt64Flexible(m map[string]any, paths ...string) int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			return int64(v)
		case int:
			return int64(v)
		case int64:
			return v
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
		}
	}
	return 0
}

func lookupBool(m map[string]any, path string) bool {
	switch v := lookupAny(m, path).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	}
	return false
}

/********** dealer mapper **********/

func mapDealer(d map[string]any) domain.Dealer {
	return domain.Dealer{
		ID:        firstInt64Flexible(d, "id", "_id"),
		FullName:  lookupText(d, "full_name"),
		ShortName: lookupText(d, "short_name"),
		Address:   lookupText(d, "address"),
		City:      lookupText(d, "city"),
		State:     lookupText(d, "st"),
		Zip:       lookupText(d, "zip"),
		Lat:       getFloatFlexible(d, "lat"),
		Long:      getFloatFlexible(d, "long"),
	}
}

func mapDealers(docs []map[string]any) []domain.Dealer {
	out := make([]domain.Dealer, 0, len(docs))
	for _, d := range docs {
		out = append(out, mapDealer(d))
	}
	return out
}

/********** review mapper **********/

// mapReview leaves Sentiment empty; enrichment fills it.
func mapReview(r map[string]any) domain.Review {
	return domain.Review{
		ID:           firstInt64Flexible(r, "id", "_id"),
		Dealership:   firstInt64Flexible(r, "dealership"),
		Name:         lookupText(r, "name"),
		Purchase:     lookupBool(r, "purchase"),
		Review:       lookupText(r, "review"),
		PurchaseDate: lookupText(r, "purchase_date"),
		CarMake:      lookupText(r, "car_make"),
		CarModel:     lookupText(r, "car_model"),
		CarYear:      int(firstInt64Flexible(r, "car_year")),
	}
}

/********** outgoing review payload **********/

// buildReviewPayload shapes a user's submission for the insert endpoint.
// Purchase details travel only when the user says they bought the car.
func buildReviewPayload(name string, in domain.NewReview, sentiment string) map[string]any {
	p := map[string]any{
		"dealership": in.Dealership,
		"name":       name,
		"purchase":   in.Purchase,
		"review":     in.Review,
		"sentiment":  sentiment,
	}
	if in.Purchase {
		p["purchase_date"] = in.PurchaseDate
		p["car_make"] = in.CarMake
		p["car_model"] = in.CarModel
		p["car_year"] = in.CarYear
	}
	return p
}
