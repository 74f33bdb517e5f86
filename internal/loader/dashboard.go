package loader

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"shopadmin/internal/backend"
	"shopadmin/internal/entity"
	"shopadmin/internal/logging"
)

const recentOrderCount = 5

// Summary is the dashboard's tile data. Each tile carries its own error so
// one failing collection doesn't blank the others.
type Summary struct {
	OrderCount   int
	Revenue      float64
	ProductCount int
	UserCount    int
	Recent       []entity.Order

	OrdersErr   error
	ProductsErr error
	UsersErr    error
}

// SummaryLoader fetches the dashboard tiles concurrently.
type SummaryLoader struct {
	store   backend.DocumentStore
	state   *ViewState
	timeout time.Duration

	seq atomic.Uint64
}

func NewSummary(store backend.DocumentStore, state *ViewState) *SummaryLoader {
	return &SummaryLoader{store: store, state: state, timeout: DefaultTimeout}
}

func (s *SummaryLoader) SetTimeout(d time.Duration) { s.timeout = d }

func (s *SummaryLoader) Issue() uint64           { return s.seq.Add(1) }
func (s *SummaryLoader) IsCurrent(n uint64) bool { return s.seq.Load() == n }

// Load gathers counts, revenue and the five most recent orders. The fan-out
// always waits for every tile; errors are recorded per tile rather than
// aborting the group.
func (s *SummaryLoader) Load(ctx context.Context, seq uint64) (Summary, error) {
	if !s.state.IsActive(PageDashboard) {
		return Summary{}, ErrInactive
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var sum Summary
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		docs, err := s.store.Collection(backend.CollectionOrders).Documents(gctx)
		if err != nil {
			sum.OrdersErr = backend.Timeoutf(err, "load orders")
			return nil
		}
		orders := make([]entity.Order, 0, len(docs))
		for _, d := range docs {
			o := entity.DecodeOrder(d)
			orders = append(orders, o)
			sum.Revenue += o.Total()
		}
		sum.OrderCount = len(orders)
		sum.Recent = recentOrders(orders)
		return nil
	})
	g.Go(func() error {
		docs, err := s.store.Collection(backend.CollectionProducts).Documents(gctx)
		if err != nil {
			sum.ProductsErr = backend.Timeoutf(err, "load products")
			return nil
		}
		sum.ProductCount = len(docs)
		return nil
	})
	g.Go(func() error {
		docs, err := s.store.Collection(backend.CollectionUsers).Documents(gctx)
		if err != nil {
			sum.UsersErr = backend.Timeoutf(err, "load users")
			return nil
		}
		sum.UserCount = len(docs)
		return nil
	})

	_ = g.Wait()

	if !s.IsCurrent(seq) {
		return Summary{}, ErrSuperseded
	}
	logging.Loader("dashboard summary %d applied: %d orders, %d products, %d users",
		seq, sum.OrderCount, sum.ProductCount, sum.UserCount)
	return sum, nil
}

// recentOrders returns the newest orders by numeric id descending, stably,
// missing ids sinking behind keyed ones in fetch order.
func recentOrders(orders []entity.Order) []entity.Order {
	sorted := make([]entity.Order, len(orders))
	copy(sorted, orders)
	stableSortOrdersByID(sorted)
	if len(sorted) > recentOrderCount {
		sorted = sorted[:recentOrderCount]
	}
	return sorted
}

func stableSortOrdersByID(orders []entity.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].HasOrderID || !orders[j].HasOrderID {
			return false
		}
		return orders[i].OrderID > orders[j].OrderID
	})
}
