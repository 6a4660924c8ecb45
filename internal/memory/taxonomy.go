package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
)

var (
	defaultTransactionCategories = []string{
		"Salário", "Freelance", "Investimentos", "Outros",
		"Alimentação", "Transporte", "Moradia", "Saúde",
		"Educação", "Lazer", "Contas", "Compras",
	}
	defaultBillCategories = []string{"Moradia", "Transporte", "Saúde", "Educação", "Contas", "Outros"}
)

// Taxonomy serves the suggested category lists. Clients may still send any
// non-empty categoria.
type Taxonomy struct {
	transaction []string
	bill        []string
}

func NewTaxonomy(transaction, bill []string) *Taxonomy {
	return &Taxonomy{transaction: dedupe(transaction), bill: dedupe(bill)}
}

// NewTaxonomyFromFiles reads seed_transaction_categories.txt and
// seed_bill_categories.txt from base, one category per line, '#' for
// comments. A missing or empty file falls back to the built-in list.
func NewTaxonomyFromFiles(base string) *Taxonomy {
	tx := readLines(filepath.Join(base, "seed_transaction_categories.txt"))
	bills := readLines(filepath.Join(base, "seed_bill_categories.txt"))
	if len(tx) == 0 {
		tx = defaultTransactionCategories
	}
	if len(bills) == 0 {
		bills = defaultBillCategories
	}
	return NewTaxonomy(tx, bills)
}

func (t *Taxonomy) List(_ context.Context) ([]string, []string, error) {
	return append([]string(nil), t.transaction...), append([]string(nil), t.bill...), nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return dedupe(out)
}

// dedupe keeps first occurrences in input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
