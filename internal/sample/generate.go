// Package sample generates a demo sales dataset with deliberately dirty
// data: missing scores, duplicated rows, and a handful of negative ages, so
// every pipeline stage has something to find.
package sample

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/mossholt/autotab-cli/internal/dataset"
)

var (
	regions  = []string{"North", "South", "East", "West"}
	products = []string{"Product A", "Product B", "Product C", "Product D", "Product E"}
)

// SalesData builds an n-row sales dataset seeded for reproducibility. On top
// of the clean rows it appends 10 duplicates, blanks ~5% of the satisfaction
// scores, and flips 5 customer ages negative.
func SalesData(n int, seed uint64) *dataset.Dataset {
	if n < 20 {
		n = 20
	}
	faker := gofakeit.New(int64(seed))
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	dates := make([]dataset.Value, 0, n+10)
	regionVals := make([]dataset.Value, 0, n+10)
	productVals := make([]dataset.Value, 0, n+10)
	sales := make([]dataset.Value, 0, n+10)
	quantity := make([]dataset.Value, 0, n+10)
	age := make([]dataset.Value, 0, n+10)
	score := make([]dataset.Value, 0, n+10)

	for i := 0; i < n; i++ {
		dates = append(dates, dataset.TimeValue(start.AddDate(0, 0, i)))
		regionVals = append(regionVals, dataset.CategoryValue(regions[faker.Number(0, len(regions)-1)]))
		productVals = append(productVals, dataset.CategoryValue(products[faker.Number(0, len(products)-1)]))
		sales = append(sales, dataset.IntValue(int64(faker.Number(100, 4999))))
		quantity = append(quantity, dataset.IntValue(int64(faker.Number(1, 99))))
		age = append(age, dataset.IntValue(int64(faker.Number(18, 74))))
		if faker.Number(0, 99) < 5 {
			score = append(score, dataset.NullValue())
		} else {
			score = append(score, dataset.FloatValue(float64(faker.Number(100, 500))/100))
		}
	}
	// Duplicate 10 existing rows verbatim.
	for i := 0; i < 10; i++ {
		r := faker.Number(0, n-1)
		dates = append(dates, dates[r])
		regionVals = append(regionVals, regionVals[r])
		productVals = append(productVals, productVals[r])
		sales = append(sales, sales[r])
		quantity = append(quantity, quantity[r])
		age = append(age, age[r])
		score = append(score, score[r])
	}
	// Inject 5 negative ages for the semantic constraint check to find.
	// Indices are drawn without replacement so the count is exact.
	chosen := make(map[int]struct{}, 5)
	for len(chosen) < 5 {
		r := faker.Number(0, n-1)
		if _, dup := chosen[r]; dup {
			continue
		}
		chosen[r] = struct{}{}
		age[r] = dataset.IntValue(-int64(faker.Number(1, 49)))
	}

	ds, _ := dataset.New(
		dataset.Column{Name: "date", Kind: dataset.KindTime, Values: dates},
		dataset.Column{Name: "region", Kind: dataset.KindCategorical, Values: regionVals},
		dataset.Column{Name: "product", Kind: dataset.KindCategorical, Values: productVals},
		dataset.Column{Name: "sales", Kind: dataset.KindInt, Values: sales},
		dataset.Column{Name: "quantity", Kind: dataset.KindInt, Values: quantity},
		dataset.Column{Name: "customer_age", Kind: dataset.KindInt, Values: age},
		dataset.Column{Name: "satisfaction_score", Kind: dataset.KindFloat, Values: score},
	)
	return ds
}
