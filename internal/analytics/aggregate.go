package analytics

import (
	"sort"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

// ComputeProductStats builds the star histogram and the mean rating rounded
// half-up to one decimal.
func ComputeProductStats(p *domain.Product, ratings []*domain.Rating) domain.ProductStats {
	stats := domain.ProductStats{
		ProductID:    p.ID,
		ProductTitle: p.Title,
	}

	var sum int64
	for _, r := range ratings {
		sum += int64(r.Stars)
		switch r.Stars {
		case 5:
			stats.FiveStar++
		case 4:
			stats.FourStar++
		case 3:
			stats.ThreeStar++
		case 2:
			stats.TwoStar++
		case 1:
			stats.OneStar++
		}
	}

	stats.TotalReviews = int64(len(ratings))
	if stats.TotalReviews > 0 {
		stats.AverageRating = decimal.NewFromInt(sum).
			Div(decimal.NewFromInt(stats.TotalReviews)).
			Round(1).
			InexactFloat64()
	}
	return stats
}

// ComputeSalesStats aggregates a vendor's sale lines. Top products are ordered
// by quantity sold, then by product id.
func ComputeSalesStats(sales []domain.SaleRecord) domain.SalesStats {
	stats := domain.SalesStats{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		TopProducts:       []domain.TopProduct{},
	}

	orders := make(map[int64]struct{})
	byProduct := make(map[int64]*domain.TopProduct)
	for _, s := range sales {
		orders[s.OrderID] = struct{}{}
		stats.TotalProductsSold += s.Quantity
		stats.TotalRevenue = stats.TotalRevenue.Add(s.LineTotal)

		tp, ok := byProduct[s.ProductID]
		if !ok {
			tp = &domain.TopProduct{ProductID: s.ProductID, ProductTitle: s.ProductTitle, Revenue: decimal.Zero}
			byProduct[s.ProductID] = tp
		}
		tp.QuantitySold += s.Quantity
		tp.Revenue = tp.Revenue.Add(s.LineTotal)
	}

	stats.TotalOrders = len(orders)
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalRevenue.DivRound(decimal.NewFromInt(int64(stats.TotalOrders)), 2)
	}

	for _, tp := range byProduct {
		stats.TopProducts = append(stats.TopProducts, *tp)
	}
	sort.Slice(stats.TopProducts, func(i, j int) bool {
		a, b := stats.TopProducts[i], stats.TopProducts[j]
		if a.QuantitySold != b.QuantitySold {
			return a.QuantitySold > b.QuantitySold
		}
		return a.ProductID < b.ProductID
	})
	if len(stats.TopProducts) > topProductsLimit {
		stats.TopProducts = stats.TopProducts[:topProductsLimit]
	}
	return stats
}
