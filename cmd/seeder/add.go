package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

type catalogWriter interface {
	AddMake(ctx context.Context, m domain.CarMake) (domain.CarMake, error)
	AddModel(ctx context.Context, makeName string, m domain.CarModel) (domain.CarModel, error)
}

type addOpts struct {
	Make        string
	Description string
	Model       string
	Type        string
	Year        int
	DealerID    int64
}

// runAdd creates the make when a description is given (an existing make is
// fine) and then the model when one is named.
func runAdd(ctx context.Context, w catalogWriter, o addOpts) error {
	if strings.TrimSpace(o.Description) != "" {
		mk, err := w.AddMake(ctx, domain.CarMake{Name: o.Make, Description: o.Description})
		switch {
		case errors.Is(err, domain.ErrConflict):
			log.Info().Str("make", o.Make).Msg("make already present")
		case err != nil:
			return fmt.Errorf("add make: %w", err)
		default:
			log.Info().Str("make", mk.Name).Int64("id", mk.ID).Msg("make added")
		}
	}
	if strings.TrimSpace(o.Model) == "" {
		return nil
	}
	m, err := w.AddModel(ctx, o.Make, domain.CarModel{
		Name:        o.Model,
		Type:        o.Type,
		Year:        o.Year,
		DealerID:    o.DealerID,
		IsAvailable: true,
	})
	if err != nil {
		return fmt.Errorf("add model: %w", err)
	}
	log.Info().Str("make", o.Make).Str("model", m.Name).Int("year", m.Year).Int64("id", m.ID).Msg("model added")
	return nil
}
