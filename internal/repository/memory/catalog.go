package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/shopspring/decimal"
)

func (v *view) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	unlock, err := v.begin(ctx, "GetUser")
	if err != nil {
		return nil, err
	}
	defer unlock()

	u, ok := v.state().users[id]
	if !ok {
		return nil, domain.NotFound("user %d not found", id)
	}
	c := *u
	return &c, nil
}

// LockUser is GetUser: the store mutex already serializes transactions.
func (v *view) LockUser(ctx context.Context, id int64) (*domain.User, error) {
	return v.GetUser(ctx, id)
}

func (v *view) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	unlock, err := v.begin(ctx, "ListCategories")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := make([]*domain.Category, 0, len(v.state().categories))
	for _, c := range v.state().categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (v *view) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	unlock, err := v.begin(ctx, "GetCategory")
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, ok := v.state().categories[id]
	if !ok {
		return nil, domain.NotFound("category %d not found", id)
	}
	cp := *c
	return &cp, nil
}

func (v *view) filterProducts(keep func(p *domain.Product) bool) []*domain.Product {
	out := []*domain.Product{}
	for _, p := range v.state().products {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *view) SearchProducts(ctx context.Context, f domain.SearchFilter) ([]*domain.Product, error) {
	unlock, err := v.begin(ctx, "SearchProducts")
	if err != nil {
		return nil, err
	}
	defer unlock()

	return v.filterProducts(f.Matches), nil
}

func (v *view) ListAvailableProducts(ctx context.Context) ([]*domain.Product, error) {
	unlock, err := v.begin(ctx, "ListAvailableProducts")
	if err != nil {
		return nil, err
	}
	defer unlock()

	return v.filterProducts(func(p *domain.Product) bool { return p.QuantityAvailable > 0 }), nil
}

func (v *view) ListProductsByVendor(ctx context.Context, vendorID int64) ([]*domain.Product, error) {
	unlock, err := v.begin(ctx, "ListProductsByVendor")
	if err != nil {
		return nil, err
	}
	defer unlock()

	return v.filterProducts(func(p *domain.Product) bool { return p.VendorID == vendorID }), nil
}

func (v *view) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	unlock, err := v.begin(ctx, "GetProduct")
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, ok := v.state().products[id]
	if !ok {
		return nil, domain.NotFound("product %d not found", id)
	}
	cp := *p
	return &cp, nil
}

func (v *view) CreateProduct(ctx context.Context, p *domain.Product) error {
	unlock, err := v.begin(ctx, "CreateProduct")
	if err != nil {
		return err
	}
	defer unlock()

	st := v.state()
	for _, existing := range st.products {
		if existing.ASIN == p.ASIN {
			return domain.Conflict("product with asin %q already exists", p.ASIN)
		}
	}
	if _, ok := st.users[p.VendorID]; !ok {
		return domain.NotFound("user %d not found", p.VendorID)
	}
	if p.CategoryID != nil {
		if _, ok := st.categories[*p.CategoryID]; !ok {
			return domain.NotFound("category %d not found", *p.CategoryID)
		}
	}

	now := time.Now().UTC()
	p.ID = st.nextID("products")
	p.Rating = 0
	p.RatingCount = 0
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	st.products[p.ID] = &cp
	return nil
}

func (v *view) UpdateProduct(ctx context.Context, p *domain.Product) error {
	unlock, err := v.begin(ctx, "UpdateProduct")
	if err != nil {
		return err
	}
	defer unlock()

	existing, ok := v.state().products[p.ID]
	if !ok {
		return domain.NotFound("product %d not found", p.ID)
	}
	existing.Title = p.Title
	existing.Description = p.Description
	existing.Price = p.Price
	existing.QuantityAvailable = p.QuantityAvailable
	existing.CategoryID = p.CategoryID
	existing.UpdatedAt = time.Now().UTC()
	p.UpdatedAt = existing.UpdatedAt
	return nil
}

// DeleteProduct cascades to cart items, images and ratings and refuses when
// the product was ever ordered.
func (v *view) DeleteProduct(ctx context.Context, id int64) error {
	unlock, err := v.begin(ctx, "DeleteProduct")
	if err != nil {
		return err
	}
	defer unlock()

	st := v.state()
	if _, ok := st.products[id]; !ok {
		return domain.NotFound("product %d not found", id)
	}
	for _, oi := range st.orderItems {
		if oi.ProductID == id {
			return domain.Conflict("product %d has orders and cannot be deleted", id)
		}
	}
	for k, ci := range st.cartItems {
		if ci.ProductID == id {
			delete(st.cartItems, k)
		}
	}
	for k, img := range st.images {
		if img.ProductID == id {
			delete(st.images, k)
		}
	}
	for k, r := range st.ratings {
		if r.ProductID == id {
			delete(st.ratings, k)
		}
	}
	delete(st.products, id)
	return nil
}

func (v *view) RefreshProductRating(ctx context.Context, productID int64) error {
	unlock, err := v.begin(ctx, "RefreshProductRating")
	if err != nil {
		return err
	}
	defer unlock()

	st := v.state()
	p, ok := st.products[productID]
	if !ok {
		return domain.NotFound("product %d not found", productID)
	}

	var sum, count int64
	for _, r := range st.ratings {
		if r.ProductID == productID {
			sum += int64(r.Stars)
			count++
		}
	}
	p.RatingCount = count
	p.Rating = 0
	if count > 0 {
		p.Rating = decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 2).InexactFloat64()
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (v *view) CreateProductImage(ctx context.Context, img *domain.ProductImage) error {
	unlock, err := v.begin(ctx, "CreateProductImage")
	if err != nil {
		return err
	}
	defer unlock()

	st := v.state()
	if _, ok := st.products[img.ProductID]; !ok {
		return domain.NotFound("product %d not found", img.ProductID)
	}
	img.ID = st.nextID("product_images")
	cp := *img
	st.images[img.ID] = &cp
	return nil
}

func (v *view) ListProductImages(ctx context.Context, productID int64) ([]*domain.ProductImage, error) {
	unlock, err := v.begin(ctx, "ListProductImages")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []*domain.ProductImage{}
	for _, img := range v.state().images {
		if img.ProductID == productID {
			cp := *img
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (v *view) GetProductImage(ctx context.Context, id int64) (*domain.ProductImage, error) {
	unlock, err := v.begin(ctx, "GetProductImage")
	if err != nil {
		return nil, err
	}
	defer unlock()

	img, ok := v.state().images[id]
	if !ok {
		return nil, domain.NotFound("image %d not found", id)
	}
	cp := *img
	return &cp, nil
}

func (v *view) DeleteProductImage(ctx context.Context, id int64) error {
	unlock, err := v.begin(ctx, "DeleteProductImage")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := v.state().images[id]; !ok {
		return domain.NotFound("image %d not found", id)
	}
	delete(v.state().images, id)
	return nil
}
