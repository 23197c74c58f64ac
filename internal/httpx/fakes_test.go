package httpx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/reports"
	"github.com/ariefcatur/go-storefront/internal/users"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type memCache struct {
	mu       sync.Mutex
	data     map[string][]byte
	versions map[string]int64
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}, versions: map[string]int64{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = b
	return nil
}

func (c *memCache) GetString(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	return string(b), ok, nil
}

func (c *memCache) SetString(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = []byte(value)
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) Version(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key], nil
}

func (c *memCache) Bump(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[key]++
	return nil
}

func (c *memCache) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = []byte("1")
	return true, nil
}

type recPublisher struct {
	mu   sync.Mutex
	msgs []kafkago.Message
}

func (p *recPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

type fakeAuth struct {
	sessions map[string]auth.Session
}

func (f *fakeAuth) Register(_ context.Context, in auth.RegisterInput) (auth.Session, error) {
	if in.Name == "" || in.Password == "" {
		return auth.Session{}, auth.ErrRegisterFields
	}
	if _, ok := f.sessions[in.Email]; ok {
		return auth.Session{}, users.ErrExists
	}
	s := auth.Session{Token: "tok-" + in.Email, User: users.User{ID: int64(len(f.sessions) + 1), Name: in.Name, Email: in.Email, Role: users.RoleCustomer}}
	f.sessions[in.Email] = s
	return s, nil
}

func (f *fakeAuth) Login(_ context.Context, in auth.LoginInput) (auth.Session, error) {
	s, ok := f.sessions[in.Email]
	if !ok || in.Password != "secret" {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	return s, nil
}

type fakeCategories struct {
	items map[int64]catalog.Category
	next  int64
}

func (f *fakeCategories) List(context.Context) ([]catalog.Category, error) {
	out := []catalog.Category{}
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) Get(_ context.Context, id int64) (catalog.Category, error) {
	c, ok := f.items[id]
	if !ok {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	}
	return c, nil
}

func (f *fakeCategories) Create(_ context.Context, name string) (catalog.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return catalog.Category{}, catalog.ErrCategoryName
	}
	for _, c := range f.items {
		if c.Name == name {
			return catalog.Category{}, catalog.ErrCategoryExists
		}
	}
	f.next++
	c := catalog.Category{ID: f.next, Name: name}
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeCategories) Update(_ context.Context, id int64, name string) (catalog.Category, error) {
	if _, ok := f.items[id]; !ok {
		return catalog.Category{}, catalog.ErrCategoryNotFound
	}
	c := catalog.Category{ID: id, Name: name}
	f.items[id] = c
	return c, nil
}

func (f *fakeCategories) Delete(_ context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return catalog.ErrCategoryNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeProducts struct {
	items     map[int64]catalog.Product
	next      int64
	listCalls int
}

func (f *fakeProducts) List(_ context.Context, flt catalog.ProductFilter) ([]catalog.Product, error) {
	f.listCalls++
	out := []catalog.Product{}
	for _, p := range f.items {
		if p.Status == flt.Status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProducts) All(context.Context) ([]catalog.Product, error) {
	out := []catalog.Product{}
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) Get(_ context.Context, id int64) (catalog.Product, error) {
	p, ok := f.items[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProducts) Create(_ context.Context, in catalog.ProductInput) (catalog.Product, error) {
	f.next++
	p := productFrom(f.next, in)
	f.items[p.ID] = p
	return p, nil
}

func (f *fakeProducts) Update(_ context.Context, id int64, in catalog.ProductInput) (catalog.Product, error) {
	if _, ok := f.items[id]; !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	p := productFrom(id, in)
	f.items[id] = p
	return p, nil
}

func (f *fakeProducts) Delete(_ context.Context, id int64) (string, error) {
	p, ok := f.items[id]
	if !ok {
		return "", catalog.ErrProductNotFound
	}
	delete(f.items, id)
	return p.Image, nil
}

func productFrom(id int64, in catalog.ProductInput) catalog.Product {
	return catalog.Product{ID: id, CategoryID: in.CategoryID, Name: in.Name, Price: in.Price, Stock: in.Stock,
		Description: in.Description, Image: in.Image, Status: in.Status}
}

type fakeImages struct {
	saved   []string
	removed []string
}

func (f *fakeImages) SaveProductImage(r io.Reader, filename string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	p := "/uploads/products/" + filename
	f.saved = append(f.saved, p)
	return p, nil
}

func (f *fakeImages) Remove(p string) error {
	f.removed = append(f.removed, p)
	return nil
}

type cartAdd struct {
	userID, productID int64
	qty               int
}

type fakeCart struct {
	lines map[int64]cartAdd
	stock map[int64]int
	next  int64
}

func (f *fakeCart) List(_ context.Context, userID int64) (cart.Cart, error) {
	var items []cart.Item
	for id, l := range f.lines {
		if l.userID == userID {
			items = append(items, cart.Item{ID: id, ProductID: l.productID, Quantity: l.qty})
		}
	}
	return cart.NewCart(items), nil
}

func (f *fakeCart) Add(_ context.Context, userID, productID int64, qty int) (int64, bool, error) {
	stock, ok := f.stock[productID]
	if !ok {
		return 0, false, cart.ErrProductNotFound
	}
	for id, l := range f.lines {
		if l.userID == userID && l.productID == productID {
			if err := cart.CheckQuantity(l.qty+qty, stock); err != nil {
				return 0, false, err
			}
			l.qty += qty
			f.lines[id] = l
			return id, false, nil
		}
	}
	if err := cart.CheckQuantity(qty, stock); err != nil {
		return 0, false, err
	}
	f.next++
	f.lines[f.next] = cartAdd{userID, productID, qty}
	return f.next, true, nil
}

func (f *fakeCart) Update(_ context.Context, userID, cartID int64, qty int) error {
	l, ok := f.lines[cartID]
	if !ok || l.userID != userID {
		return cart.ErrItemNotFound
	}
	if err := cart.CheckQuantity(qty, f.stock[l.productID]); err != nil {
		return err
	}
	l.qty = qty
	f.lines[cartID] = l
	return nil
}

func (f *fakeCart) Remove(_ context.Context, userID, cartID int64) error {
	l, ok := f.lines[cartID]
	if !ok || l.userID != userID {
		return cart.ErrItemNotFound
	}
	delete(f.lines, cartID)
	return nil
}

func (f *fakeCart) Clear(_ context.Context, userID int64) error {
	for id, l := range f.lines {
		if l.userID == userID {
			delete(f.lines, id)
		}
	}
	return nil
}

type fakeOrders struct {
	placeErr   error
	placeCalls int
	orders     map[int64]orders.Order
}

func (f *fakeOrders) PlaceOrder(_ context.Context, userID int64, in orders.PlaceInput) (orders.Placed, error) {
	f.placeCalls++
	if _, _, err := in.Normalize(); err != nil {
		return orders.Placed{}, err
	}
	if f.placeErr != nil {
		return orders.Placed{}, f.placeErr
	}
	id := int64(100 + f.placeCalls)
	f.orders[id] = orders.Order{ID: id, UserID: userID, Status: orders.StatusPending}
	return orders.Placed{OrderID: id, UserID: userID, Total: mustDecimal("19.90"),
		Lines: []orders.Line{{ProductID: 1, Quantity: 2}}}, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID int64) ([]orders.Order, error) {
	out := []orders.Order{}
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListAll(_ context.Context, status orders.Status) ([]orders.Order, error) {
	out := []orders.Order{}
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Get(_ context.Context, orderID, viewerID int64, admin bool) (orders.Order, error) {
	o, ok := f.orders[orderID]
	if !ok || (!admin && o.UserID != viewerID) {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, orderID int64, to orders.Status) (orders.Change, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return orders.Change{}, orders.ErrNotFound
	}
	ch := orders.Change{OrderID: orderID, UserID: o.UserID, From: o.Status, To: to}
	if o.Status == to {
		return ch, nil
	}
	if !orders.CanTransition(o.Status, to) {
		return orders.Change{}, orders.ErrInvalidTransition
	}
	o.Status = to
	f.orders[orderID] = o
	ch.Changed = true
	return ch, nil
}

type fakeReports struct {
	summaryCalls int
	lastLimit    int
	lastDay      time.Time
}

func (f *fakeReports) Summary(context.Context) (reports.Summary, error) {
	f.summaryCalls++
	return reports.Summary{TotalOrders: 3, TotalSales: mustDecimal("42.00")}, nil
}

func (f *fakeReports) Daily(_ context.Context, day time.Time) (reports.DailySales, error) {
	f.lastDay = day
	return reports.DailySales{SaleDate: day.Format("2006-01-02")}, nil
}

func (f *fakeReports) Monthly(context.Context, int, time.Month) ([]reports.DailySales, error) {
	return []reports.DailySales{}, nil
}

func (f *fakeReports) TopProducts(_ context.Context, limit int) ([]reports.ProductSales, error) {
	f.lastLimit = limit
	return []reports.ProductSales{}, nil
}

// testAPI is the router wired to fakes, with tokens for a customer (id 1) and an admin (id 2).
type testAPI struct {
	h          http.Handler
	cache      *memCache
	events     *recPublisher
	auth       *fakeAuth
	categories *fakeCategories
	products   *fakeProducts
	images     *fakeImages
	cart       *fakeCart
	orders     *fakeOrders
	reports    *fakeReports

	customer string
	admin    string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	tokens := auth.NewTokens("test-secret", time.Hour)
	a := &testAPI{
		cache:      newMemCache(),
		events:     &recPublisher{},
		auth:       &fakeAuth{sessions: map[string]auth.Session{}},
		categories: &fakeCategories{items: map[int64]catalog.Category{}},
		products:   &fakeProducts{items: map[int64]catalog.Product{}},
		images:     &fakeImages{},
		cart:       &fakeCart{lines: map[int64]cartAdd{}, stock: map[int64]int{}},
		orders:     &fakeOrders{orders: map[int64]orders.Order{}},
		reports:    &fakeReports{},
	}
	a.h = NewRouter(Deps{
		Tokens:      tokens,
		Auth:        a.auth,
		Categories:  a.categories,
		Products:    a.products,
		Cart:        a.cart,
		Orders:      a.orders,
		Reports:     a.reports,
		Images:      a.images,
		Cache:       a.cache,
		Events:      a.events,
		ServiceName: "storefront-test",
		UploadsDir:  t.TempDir(),
		CORSOrigins: []string{"*"},
	})

	var err error
	if a.customer, err = tokens.Issue(1, users.RoleCustomer); err != nil {
		t.Fatal(err)
	}
	if a.admin, err = tokens.Issue(2, users.RoleAdmin); err != nil {
		t.Fatal(err)
	}
	return a
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, rec)["error"].(string)
}

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }
