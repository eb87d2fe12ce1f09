package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rasyon-backend/internal/backup"
	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository/memory"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTaxIncome(t *testing.T) {
	out, err := run(t, "tax", "income", "--profit", "10000", "--company", "limited")
	require.NoError(t, err)
	assert.Contains(t, out, "Aylık vergi:     ₺2.500,00")
	assert.Contains(t, out, "Efektif oran:    %25,0")

	out, err = run(t, "tax", "income", "--profit", "10000", "--company", "sahis", "--year", "2025")
	require.NoError(t, err)
	assert.Contains(t, out, "Aylık vergi:     ₺1.500,00")
	assert.Contains(t, out, "Efektif oran:    %15,0")

	_, err = run(t, "tax", "income", "--profit", "10000", "--company", "anonim")
	assert.ErrorContains(t, err, "şirket türü")

	_, err = run(t, "tax", "income")
	assert.Error(t, err, "profit is required")
}

func TestTaxVAT(t *testing.T) {
	out, err := run(t, "tax", "vat", "--revenue", "100000", "--rate", "10", "--deductible", "6000", "--carry-in", "1500")
	require.NoError(t, err)
	assert.Contains(t, out, "KDV oranı:       %10,0")
	assert.Contains(t, out, "Ödenecek KDV:    ₺2.500,00")
	assert.Contains(t, out, "Sonraki aya:     ₺0,00")

	_, err = run(t, "tax", "vat", "--revenue", "1", "--rate", "120")
	assert.Error(t, err)
}

func TestExportImportState(t *testing.T) {
	ctx := context.Background()
	src := memory.New()
	require.NoError(t, src.SaveState(ctx, 1, models.Snapshot{
		RawIngredients: []models.RawIngredient{{ID: "un", Name: "Un", Unit: models.UnitKg, Price: 20}},
		Recipes: []models.Recipe{{
			ID: "pide", Name: "Pide", CostMultiplier: 4,
			Ingredients: []models.IngredientLine{{ID: "l1", Name: "Un", Quantity: 500, Unit: models.UnitGr, SourceKind: models.SourceRaw, SourceID: "un"}},
		}},
	}, nil))

	var buf bytes.Buffer
	require.NoError(t, exportState(ctx, src, 1, &buf, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	doc, err := backup.Import(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 2025, doc.ExportDate.Year())

	dst := memory.New()
	st, err := importState(ctx, dst, 9, buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, st.Recipes, 1)
	assert.InDelta(t, 10.0, st.Recipes[0].TotalCost, 1e-9, "costs are recalculated on import")

	saved, err := dst.LoadState(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Pide", saved.Recipes[0].Name)

	_, err = importState(ctx, dst, 9, []byte(`{"version":"1.0"}`))
	assert.ErrorIs(t, err, backup.ErrInvalidImport)

	assert.Error(t, exportState(ctx, dst, 42, &buf, time.Now()))
}
