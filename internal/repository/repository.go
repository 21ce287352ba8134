package repository

import (
	"context"

	"github.com/fjod/go_marketplace/internal/domain"
	"github.com/google/uuid"
)

// Credentials describe the PostgreSQL connection and where the schema
// migrations live.
type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
	MaxOpenConns      int
	MaxIdleConns      int
}

type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// LockUser reads the user and holds a row lock until the surrounding
	// transaction ends.
	LockUser(ctx context.Context, id int64) (*domain.User, error)
}

type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)

	SearchProducts(ctx context.Context, filter domain.SearchFilter) ([]*domain.Product, error)
	ListAvailableProducts(ctx context.Context) ([]*domain.Product, error)
	ListProductsByVendor(ctx context.Context, vendorID int64) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	// RefreshProductRating recomputes rating and rating_count from the
	// product's full rating set.
	RefreshProductRating(ctx context.Context, productID int64) error

	CreateProductImage(ctx context.Context, img *domain.ProductImage) error
	ListProductImages(ctx context.Context, productID int64) ([]*domain.ProductImage, error)
	GetProductImage(ctx context.Context, id int64) (*domain.ProductImage, error)
	DeleteProductImage(ctx context.Context, id int64) error
}

type CartRepository interface {
	// UpsertCartItem creates the (buyer, product) item or adds quantity to the
	// existing one in a single statement.
	UpsertCartItem(ctx context.Context, buyerID, productID int64, quantity int) (*domain.CartItem, error)
	ListCartItems(ctx context.Context, buyerID int64) ([]*domain.CartItem, error)
	GetCartItem(ctx context.Context, id int64) (*domain.CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, id int64, quantity int) (*domain.CartItem, error)
	DeleteCartItem(ctx context.Context, id int64) error

	// LockCheckoutLines returns the buyer's cart joined with live product
	// prices and locks the cart rows for the rest of the transaction.
	LockCheckoutLines(ctx context.Context, buyerID int64) ([]domain.CheckoutLine, error)
	DeleteCartItems(ctx context.Context, ids []int64) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *domain.Order) error
	CreateOrderItem(ctx context.Context, item *domain.OrderItem) error
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error)
}

type RatingRepository interface {
	CreateRating(ctx context.Context, r *domain.Rating) error
	ListRatingsByProduct(ctx context.Context, productID int64) ([]*domain.Rating, error)
}

type SalesRepository interface {
	ListSalesByVendor(ctx context.Context, vendorID int64) ([]domain.SaleRecord, error)
	ListOrderSalesByVendor(ctx context.Context, vendorID, orderID int64) ([]domain.SaleRecord, error)
}

type OutboxRepository interface {
	InsertOutboxEvent(ctx context.Context, e *domain.OutboxEvent) error
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id uuid.UUID) error
}

// Queries is every statement the marketplace runs against its store.
type Queries interface {
	UserRepository
	CatalogRepository
	CartRepository
	OrderRepository
	RatingRepository
	SalesRepository
	OutboxRepository
}

// Store is a Queries bound to the connection pool that can also run a
// function inside one transaction. fn's error rolls everything back.
type Store interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
	Close() error
}
