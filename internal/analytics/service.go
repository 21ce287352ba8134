// Package analytics computes vendor-facing rating and sales statistics.
package analytics

import (
	"context"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/shopspring/decimal"
)

type Repository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListRatingsByProduct(ctx context.Context, productID int64) ([]*domain.Rating, error)
	ListSalesByVendor(ctx context.Context, vendorID int64) ([]domain.SaleRecord, error)
	ListOrderSalesByVendor(ctx context.Context, vendorID, orderID int64) ([]domain.SaleRecord, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) requireVendor(ctx context.Context, vendorID int64) error {
	u, err := s.repo.GetUser(ctx, vendorID)
	if err != nil {
		return err
	}
	if !u.CanSell() {
		return domain.Forbidden("user %d is not a vendor", vendorID)
	}
	return nil
}

func (s *Service) ProductStats(ctx context.Context, vendorID, productID int64) (*domain.ProductStats, error) {
	if err := s.requireVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.VendorID != vendorID {
		return nil, domain.Forbidden("product %d does not belong to the caller", productID)
	}

	ratings, err := s.repo.ListRatingsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	stats := ComputeProductStats(p, ratings)
	return &stats, nil
}

// VendorSales lists one record per order item of the vendor's products,
// newest order first.
func (s *Service) VendorSales(ctx context.Context, vendorID int64) ([]domain.SaleRecord, error) {
	if err := s.requireVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSalesByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if sales == nil {
		sales = []domain.SaleRecord{}
	}
	return sales, nil
}

func (s *Service) VendorSalesStats(ctx context.Context, vendorID int64) (*domain.SalesStats, error) {
	if err := s.requireVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	sales, err := s.repo.ListSalesByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	stats := ComputeSalesStats(sales)
	return &stats, nil
}

// VendorSaleDetail returns the vendor's share of one order. Lines for other
// vendors' products are left out of both items and total.
func (s *Service) VendorSaleDetail(ctx context.Context, vendorID, orderID int64) (*domain.SaleDetail, error) {
	if err := s.requireVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	o, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.ListOrderSalesByVendor(ctx, vendorID, orderID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, domain.ErrNoStake
	}

	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.LineTotal)
	}
	return &domain.SaleDetail{
		OrderID:   o.ID,
		OrderedAt: o.CreatedAt,
		BuyerID:   o.BuyerID,
		BuyerName: lines[0].BuyerName,
		Total:     total,
		Items:     lines,
	}, nil
}
