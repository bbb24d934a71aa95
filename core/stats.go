package core

import (
	"cmp"
	"slices"
)

// ProductCount is the number of orders that included a title.
type ProductCount struct {
	Title string
	Count int
}

// Stats summarises the catalog for the admin dashboard.
type Stats struct {
	TotalProducts       int
	TotalCustomers      int
	TotalOrders         int
	OrdersByStatus      map[OrderStatus]int
	UnavailableProducts int
	ProductOrderCounts  []ProductCount
}

// purchaseCounts aggregates every order of every customer, pending or
// completed. The result is sorted by count descending, then title ascending.
func (cat *Catalog) purchaseCounts() []ProductCount {
	counts := make(map[string]int)
	for _, c := range cat.customers {
		for _, o := range c.history {
			for _, title := range o.products {
				counts[title]++
			}
		}
	}

	out := make([]ProductCount, 0, len(counts))
	for title, n := range counts {
		out = append(out, ProductCount{Title: title, Count: n})
	}
	slices.SortFunc(out, func(a, b ProductCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Title, b.Title)
	})
	return out
}

// FrequentlyBoughtProducts returns up to n titles ranked by how many orders
// include them. It returns nil when the ranking would be empty: nobody has
// bought anything or n is not positive.
func (cat *Catalog) FrequentlyBoughtProducts(n int) []string {
	counts := cat.purchaseCounts()
	if len(counts) == 0 || n <= 0 {
		return nil
	}
	if n > len(counts) {
		n = len(counts)
	}
	titles := make([]string, n)
	for i := range titles {
		titles[i] = counts[i].Title
	}
	return titles
}

// TopProducts is FrequentlyBoughtProducts with the configured length.
func (cat *Catalog) TopProducts() []string {
	return cat.FrequentlyBoughtProducts(cat.cfg.TopProducts)
}

// Stats computes the dashboard figures.
func (cat *Catalog) Stats() Stats {
	s := Stats{
		TotalProducts:       len(cat.products),
		TotalCustomers:      len(cat.customers),
		OrdersByStatus:      make(map[OrderStatus]int),
		UnavailableProducts: len(cat.UnavailableProducts()),
		ProductOrderCounts:  cat.purchaseCounts(),
	}
	for _, c := range cat.customers {
		for _, o := range c.history {
			s.TotalOrders++
			s.OrdersByStatus[o.status]++
		}
	}
	return s
}
