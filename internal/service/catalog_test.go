package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/prazos/internal/model"
	"github.com/jjenkins/prazos/seed"
)

type typeList []model.DeadlineType

func (l typeList) GetAll(context.Context) ([]model.DeadlineType, error) { return l, nil }

func TestLoadSeedCatalog(t *testing.T) {
	cat, err := LoadSeedCatalog(NewParser(), "")
	require.NoError(t, err)
	assert.Len(t, cat.DeadlineTypes, 12)
	assert.Len(t, cat.Holidays.Moving, 3)

	_, err = LoadSeedCatalog(NewParser(), t.TempDir())
	assert.Error(t, err)
}

func TestLoadStoreCatalog(t *testing.T) {
	st := newMemoryStore()
	_, err := st.UpsertMoving(context.Background(), &model.MovingHolidayRule{Name: "Carnaval", OffsetFromEaster: -47})
	require.NoError(t, err)

	_, err = LoadStoreCatalog(context.Background(), st, typeList(nil))
	assert.Error(t, err)

	cat, err := LoadStoreCatalog(context.Background(), st, typeList{civilTemplate()})
	require.NoError(t, err)
	assert.Len(t, cat.DeadlineTypes, 1)
	assert.Len(t, cat.Holidays.Moving, 1)
}

func TestLoadSeedCatalogFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, seed.HolidaysFile, "national:\n  - { name: Natal, date: \"12-25\" }\n")
	writeFile(t, dir, seed.DeadlineTypesFile, "deadline_types:\n  - { code: X, legal_days: 0, area_of_law: OTHER }\n")

	_, err := LoadSeedCatalog(NewParser(), dir)
	assert.ErrorIs(t, err, model.ErrInvalidTemplate)
}
