package domain

// Dealer is the fixed-shape dealership record served to clients. Every field is
// always present; missing upstream values are zero.
type Dealer struct {
	ID        int64   `json:"id"`
	FullName  string  `json:"full_name"`
	ShortName string  `json:"short_name"`
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"st"`
	Zip       string  `json:"zip"`
	Lat       float64 `json:"lat"`
	Long      float64 `json:"long"`
}
