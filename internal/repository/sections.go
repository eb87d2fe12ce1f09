package repository

import (
	"encoding/json"
	"fmt"

	"rasyon-backend/internal/models"
)

// SectionField: bölümün Snapshot içindeki alanına işaretçi
func SectionField(snap *models.Snapshot, sec models.Section) (any, error) {
	switch sec {
	case models.SectionRawIngredients:
		return &snap.RawIngredients, nil
	case models.SectionIntermediateProducts:
		return &snap.IntermediateProducts, nil
	case models.SectionRecipes:
		return &snap.Recipes, nil
	case models.SectionRecipeCategories:
		return &snap.RecipeCategories, nil
	case models.SectionIngredientCategories:
		return &snap.IngredientCategories, nil
	case models.SectionExpenses:
		return &snap.Expenses, nil
	case models.SectionSalesTargets:
		return &snap.SalesTargets, nil
	case models.SectionSettings:
		return &snap.Settings, nil
	}
	return nil, fmt.Errorf("bilinmeyen bölüm: %q", sec)
}

// EncodeSection: tek bölümü JSON'a çevirir
func EncodeSection(snap models.Snapshot, sec models.Section) (json.RawMessage, error) {
	field, err := SectionField(&snap, sec)
	if err != nil {
		return nil, err
	}
	return json.Marshal(field)
}

// DecodeSection: boş veya null veri bölümü değiştirmez
func DecodeSection(snap *models.Snapshot, sec models.Section, raw []byte) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	field, err := SectionField(snap, sec)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, field); err != nil {
		return fmt.Errorf("%s bölümü çözümlenemedi: %w", sec, err)
	}
	return nil
}
