// Package store kullanıcı başına uygulama durumu ve durum komutları.
// Komutlar alıcıyı değiştirmez; yeni State döner.
package store

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"rasyon-backend/internal/costing"
	"rasyon-backend/internal/models"
)

// State: bir kullanıcının tüm maliyet verisi
type State models.Snapshot

func FromSnapshot(s models.Snapshot) State { return State(s) }

func (st State) Snapshot() models.Snapshot { return models.Snapshot(st) }

func newID() string { return uuid.NewString() }

// clone: üst seviye dilimleri kopyalar. Elemanlar değer olarak değiştirilir,
// iç dilimler (satırlar) her zaman yeni dilimle değiştirilir.
func (st State) clone() State {
	st.RawIngredients = slices.Clone(st.RawIngredients)
	st.IntermediateProducts = slices.Clone(st.IntermediateProducts)
	st.Recipes = slices.Clone(st.Recipes)
	st.RecipeCategories = slices.Clone(st.RecipeCategories)
	st.IngredientCategories = slices.Clone(st.IngredientCategories)
	st.Expenses = slices.Clone(st.Expenses)
	st.SalesTargets = slices.Clone(st.SalesTargets)
	return st
}

// recalculate: ara ürün ve reçete maliyetlerini yeniden hesaplar
func (st State) recalculate() (State, error) {
	inters, recipes, err := costing.Recalculate(st.RawIngredients, st.IntermediateProducts, st.Recipes)
	if err != nil {
		return st, err
	}
	st.IntermediateProducts = inters
	st.Recipes = recipes
	return st, nil
}

// ---- Lookup ----

func (st State) RawIngredient(id string) (models.RawIngredient, bool) {
	i := slices.IndexFunc(st.RawIngredients, func(r models.RawIngredient) bool { return r.ID == id })
	if i < 0 {
		return models.RawIngredient{}, false
	}
	return st.RawIngredients[i], true
}

func (st State) Intermediate(id string) (models.IntermediateProduct, bool) {
	i := slices.IndexFunc(st.IntermediateProducts, func(p models.IntermediateProduct) bool { return p.ID == id })
	if i < 0 {
		return models.IntermediateProduct{}, false
	}
	return st.IntermediateProducts[i], true
}

func (st State) Recipe(id string) (models.Recipe, bool) {
	i := slices.IndexFunc(st.Recipes, func(r models.Recipe) bool { return r.ID == id })
	if i < 0 {
		return models.Recipe{}, false
	}
	return st.Recipes[i], true
}

func (st State) Expense(id string) (models.Expense, bool) {
	i := slices.IndexFunc(st.Expenses, func(e models.Expense) bool { return e.ID == id })
	if i < 0 {
		return models.Expense{}, false
	}
	return st.Expenses[i], true
}

// ---- Hammadde ----

func (st State) validateRaw(in models.RawIngredient) (models.RawIngredient, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("hammadde adı boş olamaz")
	}
	unit, ok := models.ParseUnit(string(in.Unit))
	if !ok {
		return in, invalid("geçersiz birim: %q", in.Unit)
	}
	in.Unit = unit
	if in.Package != nil {
		if in.Package.Quantity <= 0 || in.Package.Price < 0 {
			return in, invalid("paket miktarı pozitif, fiyatı negatif olmayan olmalı")
		}
		in.Price = in.Package.Price / in.Package.Quantity
	}
	if in.Price < 0 {
		return in, invalid("fiyat negatif olamaz")
	}
	if in.VATRate < 0 || in.VATRate > 100 {
		return in, invalid("KDV oranı 0-100 arasında olmalı")
	}
	if in.CategoryID != "" && !hasCategory(st.IngredientCategories, in.CategoryID) {
		return in, notFound("kategori", in.CategoryID)
	}
	return in, nil
}

func (st State) AddRawIngredient(in models.RawIngredient) (State, models.RawIngredient, error) {
	in, err := st.validateRaw(in)
	if err != nil {
		return st, in, err
	}
	in.ID = newID()
	next := st.clone()
	next.RawIngredients = append(next.RawIngredients, in)
	return next, in, nil
}

// UpdateRawIngredient: hammadde fiyatı değiştiğinde bağlı ara ürün ve reçeteler
// yeniden hesaplanır
func (st State) UpdateRawIngredient(in models.RawIngredient) (State, models.RawIngredient, error) {
	i := slices.IndexFunc(st.RawIngredients, func(r models.RawIngredient) bool { return r.ID == in.ID })
	if i < 0 {
		return st, in, notFound("hammadde", in.ID)
	}
	in, err := st.validateRaw(in)
	if err != nil {
		return st, in, err
	}
	next := st.clone()
	next.RawIngredients[i] = in
	next, err = next.recalculate()
	if err != nil {
		return st, in, err
	}
	return next, in, nil
}

// DeleteRawIngredient: hammaddeyi ve ona bağlı tüm satırları kaldırır
func (st State) DeleteRawIngredient(id string) (State, error) {
	if _, ok := st.RawIngredient(id); !ok {
		return st, notFound("hammadde", id)
	}
	next := st.clone()
	next.RawIngredients = slices.DeleteFunc(next.RawIngredients, func(r models.RawIngredient) bool { return r.ID == id })
	next.stripSource(models.SourceRaw, id)
	return next.recalculate()
}

// stripSource: verilen kaynağa bağlı satırları tüm ürünlerden çıkarır
func (st *State) stripSource(kind models.SourceKind, id string) {
	keep := func(lines []models.IngredientLine) []models.IngredientLine {
		out := make([]models.IngredientLine, 0, len(lines))
		for _, l := range lines {
			if l.SourceKind == kind && l.SourceID == id {
				continue
			}
			out = append(out, l)
		}
		return out
	}
	for i := range st.IntermediateProducts {
		st.IntermediateProducts[i].Ingredients = keep(st.IntermediateProducts[i].Ingredients)
	}
	for i := range st.Recipes {
		st.Recipes[i].Ingredients = keep(st.Recipes[i].Ingredients)
	}
}

// ---- Satırlar ----

// prepareLines: satırları doğrular, eksik kimlik/ad/birimi kaynaktan tamamlar
func (st State) prepareLines(lines []models.IngredientLine) ([]models.IngredientLine, error) {
	out := make([]models.IngredientLine, 0, len(lines))
	for _, l := range lines {
		if l.ID == "" {
			l.ID = newID()
		}
		l.Name = strings.TrimSpace(l.Name)
		if l.Unit != "" {
			unit, ok := models.ParseUnit(string(l.Unit))
			if !ok {
				return nil, invalid("geçersiz birim: %q", l.Unit)
			}
			l.Unit = unit
		}
		if l.Quantity < 0 || l.Price < 0 {
			return nil, invalid("miktar ve fiyat negatif olamaz")
		}

		switch l.SourceKind {
		case models.SourceManual:
			l.SourceID = ""
			if l.Name == "" {
				return nil, invalid("satır adı boş olamaz")
			}
		case models.SourceRaw:
			raw, ok := st.RawIngredient(l.SourceID)
			if !ok {
				return nil, notFound("hammadde", l.SourceID)
			}
			if l.Name == "" {
				l.Name = raw.Name
			}
			if l.Unit == "" {
				l.Unit = raw.Unit
			}
			if _, ok := costing.ConvertPrice(1, raw.Unit, l.Unit); !ok {
				return nil, invalid("%s birimi %s ile uyumsuz", l.Unit, raw.Unit)
			}
		case models.SourceIntermediate:
			p, ok := st.Intermediate(l.SourceID)
			if !ok {
				return nil, notFound("ara ürün", l.SourceID)
			}
			if l.Name == "" {
				l.Name = p.Name
			}
			if l.Unit == "" {
				l.Unit = p.ProductionUnit
			}
			_, ok = costing.ConvertPrice(1, p.ProductionUnit, l.Unit)
			if !ok && !(l.Unit == models.UnitPiece && p.PortionWeight > 0) {
				return nil, invalid("%s birimi %s ile uyumsuz", l.Unit, p.ProductionUnit)
			}
		default:
			return nil, invalid("geçersiz kaynak türü: %q", l.SourceKind)
		}
		out = append(out, l)
	}
	return out, nil
}

// ---- Ara ürün ----

func (st State) validateIntermediate(in models.IntermediateProduct) (models.IntermediateProduct, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("ara ürün adı boş olamaz")
	}
	unit, ok := models.ParseUnit(string(in.ProductionUnit))
	if !ok {
		return in, invalid("geçersiz üretim birimi: %q", in.ProductionUnit)
	}
	in.ProductionUnit = unit
	if in.ProductionQuantity <= 0 {
		return in, invalid("üretim miktarı pozitif olmalı")
	}
	if in.PortionWeight < 0 {
		return in, invalid("porsiyon ağırlığı negatif olamaz")
	}
	if in.CategoryID != "" && !hasCategory(st.IngredientCategories, in.CategoryID) {
		return in, notFound("kategori", in.CategoryID)
	}
	lines, err := st.prepareLines(in.Ingredients)
	if err != nil {
		return in, err
	}
	in.Ingredients = lines
	return in, nil
}

func (st State) AddIntermediate(in models.IntermediateProduct) (State, models.IntermediateProduct, error) {
	in.ID = newID()
	in, err := st.validateIntermediate(in)
	if err != nil {
		return st, in, err
	}
	next := st.clone()
	next.IntermediateProducts = append(next.IntermediateProducts, in)
	next, err = next.recalculate()
	if err != nil {
		return st, in, err
	}
	out, _ := next.Intermediate(in.ID)
	return next, out, nil
}

// UpdateIntermediate: döngü oluşturan güncellemeler costing.ErrCycle ile reddedilir
func (st State) UpdateIntermediate(in models.IntermediateProduct) (State, models.IntermediateProduct, error) {
	i := slices.IndexFunc(st.IntermediateProducts, func(p models.IntermediateProduct) bool { return p.ID == in.ID })
	if i < 0 {
		return st, in, notFound("ara ürün", in.ID)
	}
	in, err := st.validateIntermediate(in)
	if err != nil {
		return st, in, err
	}
	next := st.clone()
	next.IntermediateProducts[i] = in
	next, err = next.recalculate()
	if err != nil {
		return st, in, err
	}
	out, _ := next.Intermediate(in.ID)
	return next, out, nil
}

func (st State) DeleteIntermediate(id string) (State, error) {
	if _, ok := st.Intermediate(id); !ok {
		return st, notFound("ara ürün", id)
	}
	next := st.clone()
	next.IntermediateProducts = slices.DeleteFunc(next.IntermediateProducts, func(p models.IntermediateProduct) bool { return p.ID == id })
	next.stripSource(models.SourceIntermediate, id)
	return next.recalculate()
}

// ---- Reçete ----

func (st State) validateRecipe(in models.Recipe) (models.Recipe, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, invalid("reçete adı boş olamaz")
	}
	if in.CategoryID != "" && !hasCategory(st.RecipeCategories, in.CategoryID) {
		return in, notFound("kategori", in.CategoryID)
	}
	if in.CostMultiplier < 0 || in.CalculatedPrice < 0 {
		return in, invalid("çarpan ve fiyat negatif olamaz")
	}
	lines, err := st.prepareLines(in.Ingredients)
	if err != nil {
		return in, err
	}
	in.Ingredients = costing.NewSources(st.RawIngredients, st.IntermediateProducts).RepriceLines(lines)
	in.TotalCost = costing.Total(in.Ingredients)
	return in, nil
}

// AddRecipe: çarpan verilmişse fiyat çarpandan, sadece fiyat verilmişse çarpan
// fiyattan hesaplanır; ikisi de yoksa varsayılan çarpan kullanılır
func (st State) AddRecipe(in models.Recipe) (State, models.Recipe, error) {
	in, err := st.validateRecipe(in)
	if err != nil {
		return st, in, err
	}
	in.ID = newID()

	switch {
	case in.CostMultiplier > 0:
		in = costing.PriceFromMultiplier(in, in.CostMultiplier)
	case in.CalculatedPrice > 0 && in.TotalCost > 0:
		in, _ = costing.PriceFromSalePrice(in, in.CalculatedPrice)
	case in.CalculatedPrice > 0:
		// maliyetsiz reçete: fiyat korunur, çarpan maliyet girilince çözülür
		in.CostMultiplier = costing.DefaultCostMultiplier
	default:
		in = costing.PriceFromMultiplier(in, costing.DefaultCostMultiplier)
	}

	next := st.clone()
	next.Recipes = append(next.Recipes, in)
	return next, in, nil
}

// UpdateRecipe: ad, kategori ve satırları günceller. Satış fiyatı korunur,
// çarpan yeni maliyete göre çözülür.
func (st State) UpdateRecipe(in models.Recipe) (State, models.Recipe, error) {
	i := slices.IndexFunc(st.Recipes, func(r models.Recipe) bool { return r.ID == in.ID })
	if i < 0 {
		return st, in, notFound("reçete", in.ID)
	}
	current := st.Recipes[i]
	in.CostMultiplier = 0
	in.CalculatedPrice = 0
	in, err := st.validateRecipe(in)
	if err != nil {
		return st, in, err
	}
	in.CostMultiplier = current.CostMultiplier
	in.CalculatedPrice = current.CalculatedPrice
	in = costing.Reprice(in, in.TotalCost)

	next := st.clone()
	next.Recipes[i] = in
	return next, in, nil
}

type PricingMode string

const (
	PricingByMultiplier PricingMode = "multiplier"
	PricingByPrice      PricingMode = "price"
)

// SetRecipePricing: çarpan veya satış fiyatından biri verilir, diğeri çözülür
func (st State) SetRecipePricing(id string, mode PricingMode, value float64) (State, models.Recipe, error) {
	i := slices.IndexFunc(st.Recipes, func(r models.Recipe) bool { return r.ID == id })
	if i < 0 {
		return st, models.Recipe{}, notFound("reçete", id)
	}
	if value < 0 {
		return st, models.Recipe{}, invalid("değer negatif olamaz")
	}

	r := st.Recipes[i]
	switch mode {
	case PricingByMultiplier:
		r = costing.PriceFromMultiplier(r, value)
	case PricingByPrice:
		var ok bool
		r, ok = costing.PriceFromSalePrice(r, value)
		if !ok {
			return st, r, invalid("maliyeti sıfır olan reçeteye satış fiyatı girilemez")
		}
	default:
		return st, r, invalid("geçersiz fiyatlama türü: %q", mode)
	}

	next := st.clone()
	next.Recipes[i] = r
	return next, r, nil
}

// DeleteRecipe: reçeteyi ve satış hedefini kaldırır
func (st State) DeleteRecipe(id string) (State, error) {
	if _, ok := st.Recipe(id); !ok {
		return st, notFound("reçete", id)
	}
	next := st.clone()
	next.Recipes = slices.DeleteFunc(next.Recipes, func(r models.Recipe) bool { return r.ID == id })
	next.SalesTargets = slices.DeleteFunc(next.SalesTargets, func(t models.SalesTarget) bool { return t.RecipeID == id })
	return next, nil
}

// ReorderRecipes: ids mevcut reçetelerin bir permütasyonu olmalıdır
func (st State) ReorderRecipes(ids []string) (State, error) {
	if len(ids) != len(st.Recipes) {
		return st, invalid("sıralama tüm reçeteleri içermeli")
	}
	byID := make(map[string]models.Recipe, len(st.Recipes))
	for _, r := range st.Recipes {
		byID[r.ID] = r
	}
	next := st.clone()
	next.Recipes = make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return st, invalid("sıralamada bilinmeyen veya tekrarlanan reçete: %q", id)
		}
		delete(byID, id)
		next.Recipes = append(next.Recipes, r)
	}
	return next, nil
}

// ---- Kategoriler ----

func hasCategory(cats []models.Category, id string) bool {
	return slices.ContainsFunc(cats, func(c models.Category) bool { return c.ID == id })
}

func addCategory(cats []models.Category, name string) ([]models.Category, models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return cats, models.Category{}, invalid("kategori adı boş olamaz")
	}
	if slices.ContainsFunc(cats, func(c models.Category) bool { return strings.EqualFold(c.Name, name) }) {
		return cats, models.Category{}, invalid("%q kategorisi zaten var", name)
	}
	c := models.Category{ID: newID(), Name: name}
	return append(slices.Clone(cats), c), c, nil
}

func renameCategory(cats []models.Category, id, name string) ([]models.Category, models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return cats, models.Category{}, invalid("kategori adı boş olamaz")
	}
	i := slices.IndexFunc(cats, func(c models.Category) bool { return c.ID == id })
	if i < 0 {
		return cats, models.Category{}, notFound("kategori", id)
	}
	out := slices.Clone(cats)
	out[i].Name = name
	return out, out[i], nil
}

func (st State) AddRecipeCategory(name string) (State, models.Category, error) {
	cats, c, err := addCategory(st.RecipeCategories, name)
	if err != nil {
		return st, c, err
	}
	next := st.clone()
	next.RecipeCategories = cats
	return next, c, nil
}

func (st State) RenameRecipeCategory(id, name string) (State, models.Category, error) {
	cats, c, err := renameCategory(st.RecipeCategories, id, name)
	if err != nil {
		return st, c, err
	}
	next := st.clone()
	next.RecipeCategories = cats
	return next, c, nil
}

// DeleteRecipeCategory: kategorideki reçeteler kategorisiz kalır
func (st State) DeleteRecipeCategory(id string) (State, error) {
	if !hasCategory(st.RecipeCategories, id) {
		return st, notFound("kategori", id)
	}
	next := st.clone()
	next.RecipeCategories = slices.DeleteFunc(next.RecipeCategories, func(c models.Category) bool { return c.ID == id })
	for i := range next.Recipes {
		if next.Recipes[i].CategoryID == id {
			next.Recipes[i].CategoryID = ""
		}
	}
	return next, nil
}

func (st State) AddIngredientCategory(name string) (State, models.Category, error) {
	cats, c, err := addCategory(st.IngredientCategories, name)
	if err != nil {
		return st, c, err
	}
	next := st.clone()
	next.IngredientCategories = cats
	return next, c, nil
}

func (st State) RenameIngredientCategory(id, name string) (State, models.Category, error) {
	cats, c, err := renameCategory(st.IngredientCategories, id, name)
	if err != nil {
		return st, c, err
	}
	next := st.clone()
	next.IngredientCategories = cats
	return next, c, nil
}

func (st State) DeleteIngredientCategory(id string) (State, error) {
	if !hasCategory(st.IngredientCategories, id) {
		return st, notFound("kategori", id)
	}
	next := st.clone()
	next.IngredientCategories = slices.DeleteFunc(next.IngredientCategories, func(c models.Category) bool { return c.ID == id })
	for i := range next.RawIngredients {
		if next.RawIngredients[i].CategoryID == id {
			next.RawIngredients[i].CategoryID = ""
		}
	}
	for i := range next.IntermediateProducts {
		if next.IntermediateProducts[i].CategoryID == id {
			next.IntermediateProducts[i].CategoryID = ""
		}
	}
	return next, nil
}

// ---- Giderler ----

func validateExpense(in models.Expense) (models.Expense, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Group = strings.TrimSpace(in.Group)
	if in.Name == "" {
		return in, invalid("gider adı boş olamaz")
	}
	if in.VATRate < 0 || in.VATRate > 100 {
		return in, invalid("KDV oranı 0-100 arasında olmalı")
	}

	switch in.Kind {
	case models.ExpenseFixed:
		if in.Amount < 0 {
			return in, invalid("tutar negatif olamaz")
		}
		in.Formula = nil
	case models.ExpenseAutomated:
		if in.Formula == nil {
			return in, invalid("otomatik gider için formül gerekli")
		}
		switch in.Formula.Kind {
		case models.FormulaRevenuePercent, models.FormulaFoodCost, models.FormulaPackaging, models.FormulaCourier:
		default:
			return in, invalid("geçersiz formül türü: %q", in.Formula.Kind)
		}
		if in.Formula.Rate < 0 || in.Formula.Rate > 100 {
			return in, invalid("formül oranı 0-100 arasında olmalı")
		}
		f := *in.Formula
		in.Formula = &f
		in.Amount = 0
	default:
		return in, invalid("geçersiz gider türü: %q", in.Kind)
	}
	return in, nil
}

func (st State) AddExpense(in models.Expense) (State, models.Expense, error) {
	in, err := validateExpense(in)
	if err != nil {
		return st, in, err
	}
	in.ID = newID()
	next := st.clone()
	next.Expenses = append(next.Expenses, in)
	return next, in, nil
}

func (st State) UpdateExpense(in models.Expense) (State, models.Expense, error) {
	i := slices.IndexFunc(st.Expenses, func(e models.Expense) bool { return e.ID == in.ID })
	if i < 0 {
		return st, in, notFound("gider", in.ID)
	}
	in, err := validateExpense(in)
	if err != nil {
		return st, in, err
	}
	next := st.clone()
	next.Expenses[i] = in
	return next, in, nil
}

func (st State) DeleteExpense(id string) (State, error) {
	if _, ok := st.Expense(id); !ok {
		return st, notFound("gider", id)
	}
	next := st.clone()
	next.Expenses = slices.DeleteFunc(next.Expenses, func(e models.Expense) bool { return e.ID == id })
	return next, nil
}

// ---- Satış hedefleri ----

func (st State) SetSalesTarget(t models.SalesTarget) (State, error) {
	if _, ok := st.Recipe(t.RecipeID); !ok {
		return st, notFound("reçete", t.RecipeID)
	}
	if t.DailyRestaurant < 0 || t.DailyTakeaway < 0 {
		return st, invalid("günlük adet negatif olamaz")
	}
	next := st.clone()
	i := slices.IndexFunc(next.SalesTargets, func(x models.SalesTarget) bool { return x.RecipeID == t.RecipeID })
	if i < 0 {
		next.SalesTargets = append(next.SalesTargets, t)
	} else {
		next.SalesTargets[i] = t
	}
	return next, nil
}

func (st State) DeleteSalesTarget(recipeID string) (State, error) {
	if !slices.ContainsFunc(st.SalesTargets, func(t models.SalesTarget) bool { return t.RecipeID == recipeID }) {
		return st, notFound("satış hedefi", recipeID)
	}
	next := st.clone()
	next.SalesTargets = slices.DeleteFunc(next.SalesTargets, func(t models.SalesTarget) bool { return t.RecipeID == recipeID })
	return next, nil
}

// ---- Ayarlar ----

func (st State) UpdateSettings(s models.Settings) (State, models.Settings, error) {
	s.Company.Name = strings.TrimSpace(s.Company.Name)
	if s.Company.Type != "" && !s.Company.Type.Valid() {
		return st, s, invalid("geçersiz şirket türü: %q", s.Company.Type)
	}
	if s.WorkingDays < 0 || s.WorkingDays > 31 {
		return st, s, invalid("çalışma günü 1-31 arasında olmalı")
	}
	if s.RevenueVATRate < 0 || s.RevenueVATRate > 100 {
		return st, s, invalid("satış KDV oranı 0-100 arasında olmalı")
	}
	if s.PackagingCostPerOrder < 0 {
		return st, s, invalid("paket maliyeti negatif olamaz")
	}
	if s.TaxYear != 0 && (s.TaxYear < 2000 || s.TaxYear > 2100) {
		return st, s, invalid("geçersiz vergi yılı: %d", s.TaxYear)
	}
	s = s.WithDefaults()
	next := st.clone()
	next.Settings = s
	return next, s, nil
}

// ---- Toplu fiyat güncelleme ----

// PriceUpdate: fiyat listesindeki tek satır (birim fiyat)
type PriceUpdate struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type PriceUpdateReport struct {
	Updated   []string `json:"updated"`
	Unmatched []string `json:"unmatched"`
}

// ApplyPriceUpdates: hammaddeleri normalize edilmiş Türkçe ada göre eşleştirip
// birim fiyatlarını günceller, ardından tüm maliyetleri yeniden hesaplar
func (st State) ApplyPriceUpdates(updates []PriceUpdate) (State, PriceUpdateReport, error) {
	report := PriceUpdateReport{Updated: []string{}, Unmatched: []string{}}

	index := make(map[string]int, len(st.RawIngredients))
	for i, r := range st.RawIngredients {
		index[normalizeName(r.Name)] = i
	}

	next := st.clone()
	for _, u := range updates {
		if u.Price < 0 {
			return st, report, invalid("%q için fiyat negatif olamaz", u.Name)
		}
		i, ok := index[normalizeName(u.Name)]
		if !ok {
			report.Unmatched = append(report.Unmatched, u.Name)
			continue
		}
		raw := next.RawIngredients[i]
		raw.Price = u.Price
		if raw.Package != nil {
			pkg := *raw.Package
			pkg.Price = u.Price * pkg.Quantity
			raw.Package = &pkg
		}
		next.RawIngredients[i] = raw
		report.Updated = append(report.Updated, raw.Name)
	}

	if len(report.Updated) == 0 {
		return st, report, nil
	}
	next, err := next.recalculate()
	if err != nil {
		return st, report, err
	}
	return next, report, nil
}

// Normalize: içe aktarılan durumu doğrular ve maliyetleri yeniden hesaplar
func (st State) Normalize() (State, error) {
	next := st.clone()
	next.Settings = next.Settings.WithDefaults()
	return next.recalculate()
}
