package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

type recordingWriter struct {
	makes   []domain.CarMake
	models  []domain.CarModel
	makeErr error
	modErr  error
}

func (r *recordingWriter) AddMake(ctx context.Context, m domain.CarMake) (domain.CarMake, error) {
	if r.makeErr != nil {
		return domain.CarMake{}, r.makeErr
	}
	r.makes = append(r.makes, m)
	return m, nil
}

func (r *recordingWriter) AddModel(ctx context.Context, makeName string, m domain.CarModel) (domain.CarModel, error) {
	if r.modErr != nil {
		return domain.CarModel{}, r.modErr
	}
	r.models = append(r.models, m)
	return m, nil
}

func TestRunAdd_MakeAndModel(t *testing.T) {
	w := &recordingWriter{}
	err := runAdd(context.Background(), w, addOpts{Make: "Honda", Description: "Reliable", Model: "Civic", Year: 2022, DealerID: 7})
	require.NoError(t, err)
	require.Len(t, w.makes, 1)
	require.Len(t, w.models, 1)
	assert.Equal(t, "Civic", w.models[0].Name)
	assert.EqualValues(t, 7, w.models[0].DealerID)
	assert.True(t, w.models[0].IsAvailable)
}

func TestRunAdd_ExistingMakeStillAddsModel(t *testing.T) {
	w := &recordingWriter{makeErr: domain.ErrConflict}
	require.NoError(t, runAdd(context.Background(), w, addOpts{Make: "Audi", Description: "x", Model: "Q5", Year: 2021}))
	assert.Len(t, w.models, 1)
}

func TestRunAdd_ModelOnlyPropagatesValidation(t *testing.T) {
	ve := &domain.ValidationError{Fields: map[string]string{"year": "lte"}}
	w := &recordingWriter{modErr: ve}
	err := runAdd(context.Background(), w, addOpts{Make: "Toyota", Model: "Camry", Year: 2024})
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, w.makes)
}
