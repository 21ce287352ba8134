package memory

import (
	"context"
	"sort"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
)

func (v *view) UpsertCartItem(ctx context.Context, buyerID, productID int64, quantity int) (*domain.CartItem, error) {
	unlock, err := v.begin(ctx, "UpsertCartItem")
	if err != nil {
		return nil, err
	}
	defer unlock()

	st := v.state()
	if _, ok := st.users[buyerID]; !ok {
		return nil, domain.NotFound("user %d not found", buyerID)
	}
	if _, ok := st.products[productID]; !ok {
		return nil, domain.NotFound("product %d not found", productID)
	}

	now := time.Now().UTC()
	for _, ci := range st.cartItems {
		if ci.BuyerID == buyerID && ci.ProductID == productID {
			if ci.Quantity+quantity > domain.MaxCartItemQuantity {
				return nil, domain.Invalid("cart quantity for product %d would exceed %d", productID, domain.MaxCartItemQuantity)
			}
			ci.Quantity += quantity
			ci.UpdatedAt = now
			cp := *ci
			return &cp, nil
		}
	}

	ci := &domain.CartItem{
		ID:        st.nextID("cart_items"),
		BuyerID:   buyerID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	st.cartItems[ci.ID] = ci
	cp := *ci
	return &cp, nil
}

func (v *view) buyerCart(buyerID int64) []*domain.CartItem {
	out := []*domain.CartItem{}
	for _, ci := range v.state().cartItems {
		if ci.BuyerID == buyerID {
			out = append(out, ci)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *view) ListCartItems(ctx context.Context, buyerID int64) ([]*domain.CartItem, error) {
	unlock, err := v.begin(ctx, "ListCartItems")
	if err != nil {
		return nil, err
	}
	defer unlock()

	items := v.buyerCart(buyerID)
	out := make([]*domain.CartItem, 0, len(items))
	for _, ci := range items {
		cp := *ci
		out = append(out, &cp)
	}
	return out, nil
}

func (v *view) GetCartItem(ctx context.Context, id int64) (*domain.CartItem, error) {
	unlock, err := v.begin(ctx, "GetCartItem")
	if err != nil {
		return nil, err
	}
	defer unlock()

	ci, ok := v.state().cartItems[id]
	if !ok {
		return nil, domain.NotFound("cart item %d not found", id)
	}
	cp := *ci
	return &cp, nil
}

func (v *view) UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error) {
	unlock, err := v.begin(ctx, "UpdateCartItemQuantity")
	if err != nil {
		return nil, err
	}
	defer unlock()

	ci, ok := v.state().cartItems[id]
	if !ok {
		return nil, domain.NotFound("cart item %d not found", id)
	}
	ci.Quantity = quantity
	ci.UpdatedAt = time.Now().UTC()
	cp := *ci
	return &cp, nil
}

func (v *view) DeleteCartItem(ctx context.Context, id int64) error {
	unlock, err := v.begin(ctx, "DeleteCartItem")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := v.state().cartItems[id]; !ok {
		return domain.NotFound("cart item %d not found", id)
	}
	delete(v.state().cartItems, id)
	return nil
}

func (v *view) LockCheckoutLines(ctx context.Context, buyerID int64) ([]domain.CheckoutLine, error) {
	unlock, err := v.begin(ctx, "LockCheckoutLines")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var lines []domain.CheckoutLine
	for _, ci := range v.buyerCart(buyerID) {
		p, ok := v.state().products[ci.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CheckoutLine{
			CartItemID:   ci.ID,
			ProductID:    p.ID,
			ProductTitle: p.Title,
			Quantity:     ci.Quantity,
			UnitPrice:    p.Price,
		})
	}
	return lines, nil
}

func (v *view) DeleteCartItems(ctx context.Context, ids []int64) error {
	unlock, err := v.begin(ctx, "DeleteCartItems")
	if err != nil {
		return err
	}
	defer unlock()

	for _, id := range ids {
		delete(v.state().cartItems, id)
	}
	return nil
}
