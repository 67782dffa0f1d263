package domain

import "time"

const (
	MinModelYear = 2015
	MaxModelYear = 2023
)

type CarMake struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name" validate:"required,max=100"`
	Description     string    `json:"description" validate:"required"`
	CountryOfOrigin *string   `json:"country_of_origin,omitempty" validate:"omitempty,max=100"`
	FoundedYear     *int      `json:"founded_year,omitempty"`
	Website         *string   `json:"website,omitempty" validate:"omitempty,url,max=200"`
	IsPopular       bool      `json:"is_popular"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CarModel struct {
	ID           int64     `json:"id"`
	MakeID       int64     `json:"make_id"`
	DealerID     int64     `json:"dealer_id"`
	Name         string    `json:"name" validate:"required,max=100"`
	Type         string    `json:"type" validate:"required,oneof=Sedan SUV Wagon Coupe Convertible Hatchback Truck Van"`
	Year         int       `json:"year" validate:"gte=2015,lte=2023"`
	EngineSize   *string   `json:"engine_size,omitempty" validate:"omitempty,max=50"`
	Transmission *string   `json:"transmission,omitempty" validate:"omitempty,max=50"`
	FuelType     *string   `json:"fuel_type,omitempty" validate:"omitempty,max=50"`
	Price        *string   `json:"price,omitempty" validate:"omitempty,numeric"` // DECIMAL(10,2) as text
	ColorOptions *string   `json:"color_options,omitempty"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const DefaultModelType = "Sedan"

// CarListing is one row of the public car list.
type CarListing struct {
	CarModel string `json:"CarModel"`
	CarMake  string `json:"CarMake"`
}

// SeedMake is a make together with the models seeded under it.
type SeedMake struct {
	Make   CarMake
	Models []CarModel
}
