package domain

type Review struct {
	ID           int64  `json:"id"`
	Dealership   int64  `json:"dealership"`
	Name         string `json:"name"`
	Purchase     bool   `json:"purchase"`
	Review       string `json:"review"`
	PurchaseDate string `json:"purchase_date"`
	CarMake      string `json:"car_make"`
	CarModel     string `json:"car_model"`
	CarYear      int    `json:"car_year"`
	Sentiment    string `json:"sentiment"`
}

// NewReview is what a signed-in user submits for a dealership.
type NewReview struct {
	Dealership   int64  `json:"dealership"`
	Review       string `json:"review" validate:"max=4000"`
	Purchase     bool   `json:"purchase"`
	PurchaseDate string `json:"purchase_date" validate:"max=32"`
	CarMake      string `json:"car_make" validate:"max=100"`
	CarModel     string `json:"car_model" validate:"max=100"`
	CarYear      int    `json:"car_year" validate:"omitempty,gte=1900,lte=2100"`
}

// Sentiment labels. The set is closed; Neutral doubles as "unknown".
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Provenance records where a sentiment label came from. Only ProvenanceAnalyzed
// is a real classification.
type Provenance string

const (
	ProvenanceAnalyzed     Provenance = "analyzed"
	ProvenanceEmptyText    Provenance = "empty_text"
	ProvenanceMissingLabel Provenance = "missing_label"
	ProvenanceUnrecognized Provenance = "unrecognized_label"
	ProvenanceUnavailable  Provenance = "unavailable"
)

type Sentiment struct {
	Label      string
	Provenance Provenance
}

func NeutralBecause(p Provenance) Sentiment {
	return Sentiment{Label: SentimentNeutral, Provenance: p}
}

// IsKnownLabel reports whether l belongs to the closed label set.
func IsKnownLabel(l string) bool {
	switch l {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}
