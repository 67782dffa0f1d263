package app

import "github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

type seedModel struct {
	name, kind string
	year       int
	dealer     int64
}

func seedMake(name, desc, country string, founded int, site string, models ...seedModel) domain.SeedMake {
	sm := domain.SeedMake{Make: domain.CarMake{
		Name:            name,
		Description:     desc,
		CountryOfOrigin: strp(country),
		FoundedYear:     intp(founded),
		Website:         strp(site),
		IsPopular:       true,
	}}
	for _, m := range models {
		sm.Models = append(sm.Models, domain.CarModel{
			Name:        m.name,
			Type:        m.kind,
			Year:        m.year,
			DealerID:    m.dealer,
			IsAvailable: true,
		})
	}
	return sm
}

// DefaultSeed is the catalog an empty database starts with.
func DefaultSeed() []domain.SeedMake {
	return []domain.SeedMake{
		seedMake("NISSAN", "Great cars. Japanese technology", "Japan", 1933, "https://www.nissan-global.com",
			seedModel{"Pathfinder", "SUV", 2023, 1},
			seedModel{"Qashqai", "SUV", 2023, 2},
			seedModel{"XTRAIL", "SUV", 2023, 3},
		),
		seedMake("Mercedes", "Great cars. German technology", "Germany", 1926, "https://www.mercedes-benz.com",
			seedModel{"A-Class", "Hatchback", 2023, 4},
			seedModel{"C-Class", "Sedan", 2023, 5},
			seedModel{"E-Class", "Sedan", 2023, 6},
		),
		seedMake("Audi", "Great cars. German technology", "Germany", 1909, "https://www.audi.com",
			seedModel{"A4", "Sedan", 2023, 7},
			seedModel{"A5", "Coupe", 2023, 8},
			seedModel{"A6", "Sedan", 2023, 9},
		),
		seedMake("Kia", "Great cars. Korean technology", "South Korea", 1944, "https://www.kia.com",
			seedModel{"Sorrento", "SUV", 2023, 10},
			seedModel{"Carnival", "Van", 2023, 11},
			seedModel{"Cerato", "Sedan", 2023, 12},
		),
		seedMake("Toyota", "Great cars. Japanese technology", "Japan", 1937, "https://www.toyota.com",
			seedModel{"Corolla", "Sedan", 2023, 13},
			seedModel{"Camry", "Sedan", 2023, 14},
			seedModel{"Kluger", "SUV", 2023, 15},
		),
	}
}
