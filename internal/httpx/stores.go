package httpx

import (
	"context"
	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/reports"
	kafkago "github.com/segmentio/kafka-go"
	"io"
	"time"
)

// The handlers depend on these interfaces; the postgres repositories, the redis
// cache and the kafka producer satisfy them in production.

type TokenParser interface {
	Parse(raw string) (auth.Principal, error)
}

type Authenticator interface {
	Register(ctx context.Context, in auth.RegisterInput) (auth.Session, error)
	Login(ctx context.Context, in auth.LoginInput) (auth.Session, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]catalog.Category, error)
	Get(ctx context.Context, id int64) (catalog.Category, error)
	Create(ctx context.Context, name string) (catalog.Category, error)
	Update(ctx context.Context, id int64, name string) (catalog.Category, error)
	Delete(ctx context.Context, id int64) error
}

type ProductStore interface {
	List(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error)
	All(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id int64) (catalog.Product, error)
	Create(ctx context.Context, in catalog.ProductInput) (catalog.Product, error)
	Update(ctx context.Context, id int64, in catalog.ProductInput) (catalog.Product, error)
	Delete(ctx context.Context, id int64) (string, error)
}

type CartStore interface {
	List(ctx context.Context, userID int64) (cart.Cart, error)
	Add(ctx context.Context, userID, productID int64, qty int) (int64, bool, error)
	Update(ctx context.Context, userID, cartID int64, qty int) error
	Remove(ctx context.Context, userID, cartID int64) error
	Clear(ctx context.Context, userID int64) error
}

type OrderStore interface {
	PlaceOrder(ctx context.Context, userID int64, in orders.PlaceInput) (orders.Placed, error)
	ListByUser(ctx context.Context, userID int64) ([]orders.Order, error)
	ListAll(ctx context.Context, status orders.Status) ([]orders.Order, error)
	Get(ctx context.Context, orderID, viewerID int64, admin bool) (orders.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, to orders.Status) (orders.Change, error)
}

type ReportStore interface {
	Summary(ctx context.Context) (reports.Summary, error)
	Daily(ctx context.Context, day time.Time) (reports.DailySales, error)
	Monthly(ctx context.Context, year int, month time.Month) ([]reports.DailySales, error)
	TopProducts(ctx context.Context, limit int) ([]reports.ProductSales, error)
}

type ImageStore interface {
	SaveProductImage(r io.Reader, filename string) (string, error)
	Remove(publicPath string) error
}

// Cache is best effort: handlers log its errors and fall back to the database.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, bool, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Version(ctx context.Context, key string) (int64, error)
	Bump(ctx context.Context, key string) error
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}
