package memory

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (v *view) CreateOrder(ctx context.Context, o *domain.Order) error {
	unlock, err := v.begin(ctx, "CreateOrder")
	if err != nil {
		return err
	}
	defer unlock()

	st := v.state()
	if _, ok := st.users[o.BuyerID]; !ok {
		return domain.NotFound("user %d not found", o.BuyerID)
	}
	o.ID = st.nextID("orders")
	st.orders[o.ID] = &domain.Order{
		ID:          o.ID,
		BuyerID:     o.BuyerID,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
	}
	return nil
}

func (v *view) CreateOrderItem(ctx context.Context, item *domain.OrderItem) error {
	unlock, err := v.begin(ctx, "CreateOrderItem")
	if err != nil {
		return err
	}
	defer unlock()

	st := v.state()
	if _, ok := st.orders[item.OrderID]; !ok {
		return domain.NotFound("order %d not found", item.OrderID)
	}
	if _, ok := st.products[item.ProductID]; !ok {
		return domain.NotFound("product %d not found", item.ProductID)
	}
	item.ID = st.nextID("order_items")
	cp := *item
	cp.ProductTitle = ""
	st.orderItems[item.ID] = &cp
	return nil
}

func (v *view) orderWithItems(o *domain.Order) *domain.Order {
	out := *o
	out.Items = []domain.OrderItem{}
	for _, oi := range v.state().orderItems {
		if oi.OrderID == o.ID {
			it := *oi
			if p, ok := v.state().products[oi.ProductID]; ok {
				it.ProductTitle = p.Title
			}
			out.Items = append(out.Items, it)
		}
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ID < out.Items[j].ID })
	return &out
}

func (v *view) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	unlock, err := v.begin(ctx, "GetOrder")
	if err != nil {
		return nil, err
	}
	defer unlock()

	o, ok := v.state().orders[id]
	if !ok {
		return nil, domain.NotFound("order %d not found", id)
	}
	return v.orderWithItems(o), nil
}

func (v *view) ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error) {
	unlock, err := v.begin(ctx, "ListOrdersByBuyer")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []*domain.Order{}
	for _, o := range v.state().orders {
		if o.BuyerID == buyerID {
			out = append(out, v.orderWithItems(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, nil
}

func newerFirst(ta time.Time, ida int64, tb time.Time, idb int64) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return ida > idb
}

func (v *view) CreateRating(ctx context.Context, r *domain.Rating) error {
	unlock, err := v.begin(ctx, "CreateRating")
	if err != nil {
		return err
	}
	defer unlock()

	st := v.state()
	if _, ok := st.products[r.ProductID]; !ok {
		return domain.NotFound("product %d not found", r.ProductID)
	}
	if _, ok := st.users[r.BuyerID]; !ok {
		return domain.NotFound("user %d not found", r.BuyerID)
	}
	r.ID = st.nextID("ratings")
	r.CreatedAt = time.Now().UTC()
	cp := *r
	st.ratings[r.ID] = &cp
	return nil
}

func (v *view) ListRatingsByProduct(ctx context.Context, productID int64) ([]*domain.Rating, error) {
	unlock, err := v.begin(ctx, "ListRatingsByProduct")
	if err != nil {
		return nil, err
	}
	defer unlock()

	out := []*domain.Rating{}
	for _, r := range v.state().ratings {
		if r.ProductID == productID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return out, nil
}

func (v *view) vendorSales(vendorID int64, keep func(oi *domain.OrderItem) bool) []domain.SaleRecord {
	st := v.state()
	var sales []domain.SaleRecord
	for _, oi := range st.orderItems {
		p, ok := st.products[oi.ProductID]
		if !ok || p.VendorID != vendorID || !keep(oi) {
			continue
		}
		o := st.orders[oi.OrderID]
		s := domain.SaleRecord{
			OrderItemID:  oi.ID,
			OrderID:      o.ID,
			ProductID:    p.ID,
			ProductTitle: p.Title,
			Quantity:     oi.Quantity,
			UnitPrice:    oi.UnitPrice,
			LineTotal:    oi.UnitPrice.Mul(decimal.NewFromInt(int64(oi.Quantity))),
			OrderedAt:    o.CreatedAt,
			BuyerID:      o.BuyerID,
		}
		if u, ok := st.users[o.BuyerID]; ok {
			s.BuyerName = u.Name
		}
		sales = append(sales, s)
	}
	sort.Slice(sales, func(i, j int) bool {
		if sales[i].OrderID != sales[j].OrderID {
			return newerFirst(sales[i].OrderedAt, sales[i].OrderID, sales[j].OrderedAt, sales[j].OrderID)
		}
		return sales[i].OrderItemID < sales[j].OrderItemID
	})
	return sales
}

func (v *view) ListSalesByVendor(ctx context.Context, vendorID int64) ([]domain.SaleRecord, error) {
	unlock, err := v.begin(ctx, "ListSalesByVendor")
	if err != nil {
		return nil, err
	}
	defer unlock()

	return v.vendorSales(vendorID, func(*domain.OrderItem) bool { return true }), nil
}

func (v *view) ListOrderSalesByVendor(ctx context.Context, vendorID, orderID int64) ([]domain.SaleRecord, error) {
	unlock, err := v.begin(ctx, "ListOrderSalesByVendor")
	if err != nil {
		return nil, err
	}
	defer unlock()

	return v.vendorSales(vendorID, func(oi *domain.OrderItem) bool { return oi.OrderID == orderID }), nil
}

func (v *view) InsertOutboxEvent(ctx context.Context, e *domain.OutboxEvent) error {
	unlock, err := v.begin(ctx, "InsertOutboxEvent")
	if err != nil {
		return err
	}
	defer unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = time.Now().UTC()
	cp := *e
	cp.Payload = append(json.RawMessage(nil), e.Payload...)
	v.s.st.outbox = append(v.s.st.outbox, &cp)
	return nil
}

func (v *view) GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	unlock, err := v.begin(ctx, "GetUnprocessedEvents")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out []*domain.OutboxEvent
	for _, e := range v.state().outbox {
		if len(out) == limit {
			break
		}
		if e.ProcessedAt == nil {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (v *view) MarkEventAsProcessed(ctx context.Context, id uuid.UUID) error {
	unlock, err := v.begin(ctx, "MarkEventAsProcessed")
	if err != nil {
		return err
	}
	defer unlock()

	for _, e := range v.state().outbox {
		if e.ID == id && e.ProcessedAt == nil {
			now := time.Now().UTC()
			e.ProcessedAt = &now
			return nil
		}
	}
	return domain.NotFound("unprocessed event %s not found", id)
}
