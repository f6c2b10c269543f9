package order

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/obs"
)

type fakeProduct struct {
	name   string
	price  decimal.Decimal
	stock  int
	active bool
}

type fakeCartLine struct {
	productID int64
	quantity  int
}

// fakeRepository keeps products, carts and orders in memory and applies the
// same all-or-nothing rules as the Postgres implementation.
type fakeRepository struct {
	products map[int64]*fakeProduct
	carts    map[string][]fakeCartLine
	orders   map[int64]*Order
	nextID   int64

	checkoutErr error
	getErr      error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		products: map[int64]*fakeProduct{},
		carts:    map[string][]fakeCartLine{},
		orders:   map[int64]*Order{},
	}
}

func (f *fakeRepository) Checkout(ctx context.Context, userID, orderNumber string, ship Shipping, now time.Time) (CheckoutResult, error) {
	if f.checkoutErr != nil {
		return CheckoutResult{}, f.checkoutErr
	}
	cart := f.carts[userID]
	if len(cart) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	lines := make([]CartLine, 0, len(cart))
	for _, c := range cart {
		p := f.products[c.productID]
		lines = append(lines, CartLine{
			ProductID: c.productID, ProductName: p.name, Price: p.price,
			Stock: p.stock, IsActive: p.active, Quantity: c.quantity,
		})
	}
	items, total, violations := PriceLines(lines)
	if len(violations) > 0 {
		return CheckoutResult{Violations: violations}, nil
	}

	f.nextID++
	for i := range items {
		items[i].ID = f.nextID*100 + int64(i)
		items[i].OrderID = f.nextID
		f.products[items[i].ProductID].stock -= items[i].Quantity
	}
	o := Order{
		ID: f.nextID, OrderNumber: orderNumber, UserID: userID, OrderDate: now,
		Total: total, Status: StatusPending, ShippingAddress: ship.Address, Items: items,
		CreatedAt: now, UpdatedAt: now,
	}
	f.orders[o.ID] = &o
	delete(f.carts, userID)
	return CheckoutResult{Order: o}, nil
}

func (f *fakeRepository) SetStatus(ctx context.Context, orderID int64, to Status, now time.Time) (StatusChange, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return StatusChange{}, ErrNotFound
	}
	change := StatusChange{OrderID: orderID, OrderNumber: o.OrderNumber, UserID: o.UserID, From: o.Status, To: to}

	effect := StockEffect(o.Status, to)
	if effect < 0 {
		for _, it := range o.Items {
			p := f.products[it.ProductID]
			if p.stock < it.Quantity {
				return change, &StockShortageError{ProductID: it.ProductID, ProductName: p.name, Requested: it.Quantity, Available: p.stock}
			}
		}
	}
	for _, it := range o.Items {
		f.products[it.ProductID].stock += effect * it.Quantity
	}
	o.Status = to
	o.UpdatedAt = now
	return change, nil
}

func (f *fakeRepository) Get(ctx context.Context, orderID int64) (Order, error) {
	if f.getErr != nil {
		return Order{}, f.getErr
	}
	o, ok := f.orders[orderID]
	if !ok {
		return Order{}, ErrNotFound
	}
	return *o, nil
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRepository) List(ctx context.Context, lf ListFilter) ([]Order, int, error) {
	var out []Order
	for _, o := range f.orders {
		if lf.Status == "" || o.Status == lf.Status {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

type fakePublisher struct {
	created []string
	changed []Status
	err     error
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, o Order) error {
	p.created = append(p.created, o.OrderNumber)
	return p.err
}

func (p *fakePublisher) PublishOrderStatusChanged(ctx context.Context, o Order, from Status) error {
	p.changed = append(p.changed, o.Status)
	return p.err
}

const (
	productA = int64(1)
	productB = int64(2)
)

// scenarioRepo sets up A(price 100, stock 5) and B(price 50, stock 1).
func scenarioRepo(qtyA, qtyB int) *fakeRepository {
	repo := newFakeRepository()
	repo.products[productA] = &fakeProduct{name: "A", price: decimal.NewFromInt(100), stock: 5, active: true}
	repo.products[productB] = &fakeProduct{name: "B", price: decimal.NewFromInt(50), stock: 1, active: true}
	repo.carts["u1"] = []fakeCartLine{{productID: productA, quantity: qtyA}, {productID: productB, quantity: qtyB}}
	return repo
}

func newTestService(repo Repository, pub EventPublisher) *Service {
	svc := NewService(repo, pub, obs.Discard())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	return svc
}

func stocks(repo *fakeRepository) map[int64]int {
	return map[int64]int{productA: repo.products[productA].stock, productB: repo.products[productB].stock}
}

func TestCreateOrder_RejectsWholeCart(t *testing.T) {
	repo := scenarioRepo(2, 2)
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	_, err := svc.CreateOrder(context.Background(), "u1", Shipping{Address: "1 Main St"})
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "Some items are not available", appErr.Message)
	assert.Equal(t, []string{"Insufficient stock for B. Available: 1, Requested: 2"}, appErr.Details)

	assert.Equal(t, map[int64]int{productA: 5, productB: 1}, stocks(repo))
	assert.Len(t, repo.carts["u1"], 2)
	assert.Empty(t, repo.orders)
	assert.Empty(t, pub.created)
}

func TestCreateOrder_Succeeds(t *testing.T) {
	repo := scenarioRepo(2, 1)
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)

	o, err := svc.CreateOrder(context.Background(), "u1", Shipping{Address: "1 Main St"})
	require.NoError(t, err)

	assert.Equal(t, "250", o.Total.String())
	assert.Equal(t, StatusPending, o.Status)
	assert.Regexp(t, `^ORD-20240501-[0-9A-F]{8}$`, o.OrderNumber)
	assert.Equal(t, map[int64]int{productA: 3, productB: 0}, stocks(repo))
	assert.Empty(t, repo.carts["u1"])
	assert.Equal(t, []string{o.OrderNumber}, pub.created)

	sum := decimal.Zero
	for _, it := range o.Items {
		assert.True(t, it.Subtotal.Equal(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))))
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sum.Equal(o.Total))

	// later price changes do not touch the snapshot
	repo.products[productA].price = decimal.NewFromInt(999)
	stored, err := svc.Get(context.Background(), o.ID, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, "100", stored.Items[0].Price.String())
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	svc := newTestService(newFakeRepository(), &fakePublisher{})

	_, err := svc.CreateOrder(context.Background(), "nobody", Shipping{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Cart is empty")
}

func TestCreateOrder_PublishFailureDoesNotFail(t *testing.T) {
	repo := scenarioRepo(1, 1)
	svc := newTestService(repo, &fakePublisher{err: errors.New("broker down")})

	o, err := svc.CreateOrder(context.Background(), "u1", Shipping{})
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
}

func TestCreateOrder_RepositoryErrors(t *testing.T) {
	repo := scenarioRepo(1, 1)
	repo.checkoutErr = ErrOrderNumberExists
	svc := newTestService(repo, &fakePublisher{})

	_, err := svc.CreateOrder(context.Background(), "u1", Shipping{})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	repo.checkoutErr = errors.New("connection reset")
	_, err = svc.CreateOrder(context.Background(), "u1", Shipping{})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestUpdateStatus_CancelAndRestore(t *testing.T) {
	repo := scenarioRepo(2, 1)
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "u1", Shipping{})
	require.NoError(t, err)

	cancelled, err := svc.UpdateStatus(ctx, o.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, map[int64]int{productA: 5, productB: 1}, stocks(repo))

	processing, err := svc.UpdateStatus(ctx, o.ID, "Processing")
	require.NoError(t, err)
	assert.Equal(t, StatusProcessing, processing.Status)
	assert.Equal(t, map[int64]int{productA: 3, productB: 0}, stocks(repo))

	assert.Equal(t, []Status{StatusCancelled, StatusProcessing}, pub.changed)
}

func TestUpdateStatus_UncancelFailsAtomically(t *testing.T) {
	repo := scenarioRepo(2, 1)
	svc := newTestService(repo, &fakePublisher{})
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "u1", Shipping{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o.ID, "Cancelled")
	require.NoError(t, err)

	// B's last unit is sold elsewhere while the order is cancelled
	repo.products[productB].stock = 0

	_, err = svc.UpdateStatus(ctx, o.ID, "Shipped")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "Cannot change status. Insufficient stock for B", err.Error())

	assert.Equal(t, map[int64]int{productA: 5, productB: 0}, stocks(repo))
	stored, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
}

func TestUpdateStatus_NoStockEffectOutsideCancelled(t *testing.T) {
	repo := scenarioRepo(2, 1)
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "u1", Shipping{})
	require.NoError(t, err)

	for _, st := range []string{"Processing", "Shipped", "Delivered", "Pending", "Pending"} {
		_, err := svc.UpdateStatus(ctx, o.ID, st)
		require.NoError(t, err)
		assert.Equal(t, map[int64]int{productA: 3, productB: 0}, stocks(repo))
	}
	// the repeated Pending is not announced
	assert.Len(t, pub.changed, 4)
}

func TestUpdateStatus_Errors(t *testing.T) {
	svc := newTestService(newFakeRepository(), &fakePublisher{})

	_, err := svc.UpdateStatus(context.Background(), 1, "Refunded")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.EqualError(t, err, "Invalid status. Must be one of: Pending, Processing, Shipped, Delivered, Cancelled")

	_, err = svc.UpdateStatus(context.Background(), 42, "Shipped")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateStatus_ReloadFailureStillPublishes(t *testing.T) {
	repo := scenarioRepo(1, 1)
	pub := &fakePublisher{}
	svc := newTestService(repo, pub)
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "u1", Shipping{})
	require.NoError(t, err)

	repo.getErr = errors.New("connection reset")
	_, err = svc.UpdateStatus(ctx, o.ID, "Cancelled")

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindInternal, appErr.Kind)
	assert.Equal(t, "Order status was updated but the order could not be loaded", appErr.Message)

	assert.Equal(t, StatusCancelled, repo.orders[o.ID].Status)
	assert.Equal(t, map[int64]int{productA: 5, productB: 1}, stocks(repo))
	assert.Equal(t, []Status{StatusCancelled}, pub.changed)
}

func TestGet_Ownership(t *testing.T) {
	repo := scenarioRepo(1, 1)
	svc := newTestService(repo, &fakePublisher{})
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, "u1", Shipping{})
	require.NoError(t, err)

	_, err = svc.Get(ctx, o.ID, "u2", false)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	got, err := svc.Get(ctx, o.ID, "admin", true)
	require.NoError(t, err)
	assert.Equal(t, o.OrderNumber, got.OrderNumber)
}

func TestList_Paging(t *testing.T) {
	repo := scenarioRepo(1, 1)
	svc := newTestService(repo, &fakePublisher{})
	ctx := context.Background()
	_, err := svc.CreateOrder(ctx, "u1", Shipping{})
	require.NoError(t, err)

	page, err := svc.List(ctx, "pending", "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 1, page.TotalPages)

	_, err = svc.List(ctx, "lost", "", 1, 20)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

// Stock never goes negative and always equals the initial stock minus what
// non-cancelled orders hold, whatever the sequence of checkouts and status changes.
func TestStockReconciliationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	repo := newFakeRepository()
	initial := map[int64]int{1: 4, 2: 3, 3: 6}
	for id, st := range initial {
		repo.products[id] = &fakeProduct{name: "p", price: decimal.NewFromInt(10), stock: st, active: true}
	}
	svc := newTestService(repo, &fakePublisher{})
	ctx := context.Background()
	statuses := []string{"Pending", "Processing", "Shipped", "Delivered", "Cancelled"}

	for step := 0; step < 300; step++ {
		if rng.Intn(2) == 0 {
			repo.carts["u"] = []fakeCartLine{
				{productID: int64(1 + rng.Intn(3)), quantity: 1 + rng.Intn(3)},
			}
			_, _ = svc.CreateOrder(ctx, "u", Shipping{})
		} else if len(repo.orders) > 0 {
			id := int64(1 + rng.Intn(len(repo.orders)))
			_, _ = svc.UpdateStatus(ctx, id, statuses[rng.Intn(len(statuses))])
		}

		held := map[int64]int{}
		for _, o := range repo.orders {
			if o.Status == StatusCancelled {
				continue
			}
			for _, it := range o.Items {
				held[it.ProductID] += it.Quantity
			}
		}
		for id, p := range repo.products {
			require.GreaterOrEqual(t, p.stock, 0, "step %d product %d", step, id)
			require.Equal(t, initial[id], p.stock+held[id], "step %d product %d", step, id)
		}
	}
}
