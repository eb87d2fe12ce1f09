package costing

import (
	"errors"
	"strings"

	"rasyon-backend/internal/models"
)

var ErrCycle = errors.New("ara ürünlerde döngüsel bağımlılık")

// CycleError: döngüyü oluşturan ara ürün adları (ilk ad sonda tekrar eder)
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return ErrCycle.Error() + ": " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

// Order: ara ürünleri bağımlılık sırasına dizer (önce bağımlı olunanlar).
// Dönen değer items içindeki indekslerdir.
func Order(items []models.IntermediateProduct) ([]int, error) {
	index := make(map[string]int, len(items))
	for i, it := range items {
		index[it.ID] = i
	}

	const (
		white = iota
		gray
		black
	)
	color := make([]int, len(items))
	order := make([]int, 0, len(items))
	var stack []int

	var visit func(i int) error
	visit = func(i int) error {
		switch color[i] {
		case black:
			return nil
		case gray:
			return cycleFrom(items, stack, i)
		}

		color[i] = gray
		stack = append(stack, i)
		for _, line := range items[i].Ingredients {
			if line.SourceKind != models.SourceIntermediate {
				continue
			}
			j, ok := index[line.SourceID]
			if !ok {
				continue
			}
			if err := visit(j); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[i] = black
		order = append(order, i)
		return nil
	}

	for i := range items {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func cycleFrom(items []models.IntermediateProduct, stack []int, start int) error {
	pos := 0
	for k, idx := range stack {
		if idx == start {
			pos = k
			break
		}
	}
	path := make([]string, 0, len(stack)-pos+1)
	for _, idx := range stack[pos:] {
		path = append(path, items[idx].Name)
	}
	path = append(path, items[start].Name)
	return &CycleError{Path: path}
}
