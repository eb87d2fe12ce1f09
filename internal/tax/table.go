// Package tax gelir vergisi, KDV devri ve kira stopajı hesapları.
package tax

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

var ErrInvalidTable = errors.New("geçersiz vergi tablosu")

type Bracket struct {
	UpTo float64 `yaml:"upto"` // 0: son dilim
	Rate float64 `yaml:"rate"`
}

type YearTable struct {
	Year                int       `yaml:"year"`
	CorporateRate       float64   `yaml:"corporate_rate"`
	RentWithholdingRate float64   `yaml:"rent_withholding_rate"`
	Brackets            []Bracket `yaml:"brackets"`
}

type Table struct {
	years []YearTable
}

type tableFile struct {
	Years []YearTable `yaml:"years"`
}

// Parse: YAML tarife dosyasını okur ve doğrular
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if len(f.Years) == 0 {
		return nil, fmt.Errorf("%w: yıl tanımı yok", ErrInvalidTable)
	}
	for _, y := range f.Years {
		if err := y.validate(); err != nil {
			return nil, err
		}
	}
	sort.Slice(f.Years, func(i, j int) bool { return f.Years[i].Year < f.Years[j].Year })
	return &Table{years: f.Years}, nil
}

// Load: path boşsa gömülü tabloyu döner
func Load(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vergi tablosu okunamadı: %w", err)
	}
	return Parse(data)
}

func Default() *Table {
	t, err := Parse(defaultTables)
	if err != nil {
		panic(err)
	}
	return t
}

// Year: istenen yılın tarifesi; yoksa önceki en yakın yıl, o da yoksa ilk yıl
func (t *Table) Year(year int) YearTable {
	chosen := t.years[0]
	for _, y := range t.years {
		if y.Year <= year {
			chosen = y
		}
	}
	return chosen
}

func (y YearTable) validate() error {
	if len(y.Brackets) == 0 {
		return fmt.Errorf("%w: %d için dilim yok", ErrInvalidTable, y.Year)
	}
	if y.CorporateRate < 0 || y.CorporateRate > 1 || y.RentWithholdingRate < 0 || y.RentWithholdingRate >= 1 {
		return fmt.Errorf("%w: %d oranları 0-1 arasında olmalı", ErrInvalidTable, y.Year)
	}
	prev := 0.0
	for i, b := range y.Brackets {
		if b.Rate < 0 || b.Rate > 1 {
			return fmt.Errorf("%w: %d dilim %d oranı geçersiz", ErrInvalidTable, y.Year, i+1)
		}
		last := i == len(y.Brackets)-1
		if last && b.UpTo != 0 {
			return fmt.Errorf("%w: %d son dilim üst sınırsız olmalı", ErrInvalidTable, y.Year)
		}
		if !last && b.UpTo <= prev {
			return fmt.Errorf("%w: %d dilim sınırları artan olmalı", ErrInvalidTable, y.Year)
		}
		prev = b.UpTo
	}
	return nil
}
