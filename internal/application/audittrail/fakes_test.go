package audittrail

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

// fakeStore repositorios en memoria; Run descarta lo escrito si fn falla.
type fakeStore struct {
	orders   map[string]*entity.Order
	lots     map[string]*entity.StockLot
	products map[string]*entity.Product
	entries  []*entity.AuditTrailEntry
	users    map[string]*entity.Producer

	directoryCalls int
	createErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   map[string]*entity.Order{},
		lots:     map[string]*entity.StockLot{},
		products: map[string]*entity.Product{},
		users:    map[string]*entity.Producer{},
	}
}

func (s *fakeStore) repos() ports.TxRepos {
	return ports.TxRepos{
		Orders:     &fakeOrderRepo{s},
		StockLots:  &fakeLotRepo{s},
		Products:   &fakeProductRepo{s},
		AuditTrail: &fakeAuditRepo{s},
	}
}

func (s *fakeStore) Run(_ context.Context, fn func(repos ports.TxRepos) error) error {
	before := len(s.entries)
	if err := fn(s.repos()); err != nil {
		s.entries = s.entries[:before]
		return err
	}
	return nil
}

func (s *fakeStore) addLot(id, producer string, cat entity.Category, qty, price int64) {
	p := decimal.NewFromInt(price)
	prices := entity.PriceSet{}
	switch cat {
	case entity.CategoryKilo:
		prices.PricePerKilo = &p
	case entity.CategoryPiece:
		prices.PricePerPiece = &p
	default:
		prices.PricePerBundle = &p
	}
	s.lots[id] = &entity.StockLot{
		ID: id, ProductID: "P", ProducerID: producer, Category: cat,
		Quantity: decimal.NewFromInt(qty), Prices: prices,
	}
}

type fakeOrderRepo struct{ s *fakeStore }

func (r *fakeOrderRepo) Create(_ context.Context, o *entity.Order) error {
	r.s.orders[o.ID] = o
	return nil
}
func (r *fakeOrderRepo) CreateLine(context.Context, *entity.OrderLine) error { return nil }
func (r *fakeOrderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	return r.s.orders[id], nil
}
func (r *fakeOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}
func (r *fakeOrderRepo) GetLines(context.Context, string) ([]*entity.OrderLine, error) {
	return nil, nil
}
func (r *fakeOrderRepo) UpdateStatus(context.Context, *entity.Order) error { return nil }
func (r *fakeOrderRepo) ListByCustomer(context.Context, string, int, int) ([]*entity.Order, error) {
	return nil, nil
}

type fakeLotRepo struct{ s *fakeStore }

func (r *fakeLotRepo) Create(_ context.Context, l *entity.StockLot) error {
	r.s.lots[l.ID] = l
	return nil
}
func (r *fakeLotRepo) GetByID(_ context.Context, id string) (*entity.StockLot, error) {
	return r.s.lots[id], nil
}
func (r *fakeLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	return r.GetByID(ctx, id)
}
func (r *fakeLotRepo) UpdateQuantity(context.Context, *entity.StockLot) error { return nil }
func (r *fakeLotRepo) ListByProducer(context.Context, string, int, int) ([]*entity.StockLot, error) {
	return nil, nil
}

type fakeProductRepo struct{ s *fakeStore }

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.products[p.ID] = p
	return nil
}
func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.s.products[id], nil
}

type fakeAuditRepo struct{ s *fakeStore }

func (r *fakeAuditRepo) Create(_ context.Context, e *entity.AuditTrailEntry) error {
	if r.s.createErr != nil {
		return r.s.createErr
	}
	r.s.entries = append(r.s.entries, e)
	return nil
}
func (r *fakeAuditRepo) ListByOrder(_ context.Context, orderID string) ([]*entity.AuditTrailEntry, error) {
	var out []*entity.AuditTrailEntry
	for _, e := range r.s.entries {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}
func (r *fakeAuditRepo) ExistsForOrderAndLot(_ context.Context, orderID, lotID string) (bool, error) {
	for _, e := range r.s.entries {
		if e.OrderID == orderID && e.StockLotID == lotID {
			return true, nil
		}
	}
	return false, nil
}
func (r *fakeAuditRepo) RevenueByProducer(context.Context, string, time.Time, time.Time) (*repository.ProducerRevenue, error) {
	return nil, domain.ErrNotFound
}

func (s *fakeStore) GetByIDs(_ context.Context, ids []string) (map[string]*entity.Producer, error) {
	s.directoryCalls++
	out := make(map[string]*entity.Producer, len(ids))
	for _, id := range ids {
		if p, ok := s.users[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// recordingMetrics cuenta llamadas al puerto de métricas.
type recordingMetrics struct {
	written    map[string]int
	failures   []string
	validation []bool
	duplicates int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{written: map[string]int{}}
}

func (m *recordingMetrics) EntriesWritten(mode string, n int) { m.written[mode] += n }
func (m *recordingMetrics) WriteFailed(reason string)         { m.failures = append(m.failures, reason) }
func (m *recordingMetrics) ValidationRun(complete bool, duplicates int) {
	m.validation = append(m.validation, complete)
	m.duplicates += duplicates
}
