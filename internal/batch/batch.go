// Package batch partitions the dataset catalog into rate-limit-respecting
// groups. Datasets are grouped by category in first-appearance order and the
// resulting ordered list is cut into consecutive batches of bounded size, so
// a category tail is never dropped or duplicated.
package batch

import (
	"fmt"
	"strings"

	"github.com/surveyforge/surveyforge/internal/catalog"
)

// Batch is one ordered, size-bounded group of dataset jobs. A batch may
// straddle a category boundary; within it datasets stay contiguous and in
// category order.
type Batch struct {
	Index    int
	Datasets []catalog.Dataset
}

// Categories returns the batch's distinct categories in order of appearance.
func (b Batch) Categories() []string {
	var order []string
	seen := make(map[string]bool)
	for _, d := range b.Datasets {
		if !seen[d.Category] {
			seen[d.Category] = true
			order = append(order, d.Category)
		}
	}
	return order
}

// Label renders the batch's category span for logs and summaries.
func (b Batch) Label() string {
	return strings.Join(b.Categories(), ", ")
}

// Schedule orders the catalog by category (first-appearance order, datasets
// keeping their catalog order within a category) and cuts the list into
// consecutive batches of at most maxSize. The batch count is the ceiling of
// the dataset count over maxSize.
func Schedule(c *catalog.Catalog, maxSize int) ([]Batch, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", maxSize)
	}

	byCategory := make(map[string][]catalog.Dataset)
	for _, d := range c.Datasets {
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}
	ordered := make([]catalog.Dataset, 0, len(c.Datasets))
	for _, cat := range c.Categories() {
		ordered = append(ordered, byCategory[cat]...)
	}

	n := (len(ordered) + maxSize - 1) / maxSize
	out := make([]Batch, 0, n)
	for i := 0; i < n; i++ {
		lo := i * maxSize
		hi := min(lo+maxSize, len(ordered))
		out = append(out, Batch{Index: i, Datasets: ordered[lo:hi]})
	}
	return out, nil
}

// Pick returns the batch with the given index.
func Pick(batches []Batch, index int) (Batch, error) {
	if index < 0 || index >= len(batches) {
		return Batch{}, fmt.Errorf("batch index %d out of range, have %d batches", index, len(batches))
	}
	return batches[index], nil
}
