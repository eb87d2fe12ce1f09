// Package backup durumun JSON dışa/içe aktarımı ve Excel çalışma kitapları.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rasyon-backend/internal/models"
)

const Version = "1.0"

var ErrInvalidImport = errors.New("geçersiz yedek dosyası")

// Document: dışa aktarılan JSON belgesi
type Document struct {
	Version    string    `json:"version"`
	ExportDate time.Time `json:"exportDate"`
	models.Snapshot
}

func Export(snap models.Snapshot, now time.Time) ([]byte, error) {
	doc := Document{Version: Version, ExportDate: now.UTC(), Snapshot: normalize(snap)}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("yedek oluşturulamadı: %w", err)
	}
	return data, nil
}

// Import: sadece "recipes" alanının var olduğu ve dizi olduğu kontrol edilir;
// diğer eksik alanlar boş kabul edilir
func Import(data []byte) (Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	recipes, ok := fields["recipes"]
	if !ok {
		return Document{}, fmt.Errorf("%w: recipes alanı yok", ErrInvalidImport)
	}
	if trimmed := bytes.TrimSpace(recipes); len(trimmed) == 0 || trimmed[0] != '[' {
		return Document{}, fmt.Errorf("%w: recipes bir dizi olmalı", ErrInvalidImport)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	doc.Snapshot = normalize(doc.Snapshot)
	return doc, nil
}

// normalize: nil dilimler JSON'da null yerine [] olarak yazılır
func normalize(s models.Snapshot) models.Snapshot {
	if s.RawIngredients == nil {
		s.RawIngredients = []models.RawIngredient{}
	}
	if s.IntermediateProducts == nil {
		s.IntermediateProducts = []models.IntermediateProduct{}
	}
	if s.Recipes == nil {
		s.Recipes = []models.Recipe{}
	}
	if s.RecipeCategories == nil {
		s.RecipeCategories = []models.Category{}
	}
	if s.IngredientCategories == nil {
		s.IngredientCategories = []models.Category{}
	}
	if s.Expenses == nil {
		s.Expenses = []models.Expense{}
	}
	if s.SalesTargets == nil {
		s.SalesTargets = []models.SalesTarget{}
	}
	return s
}
