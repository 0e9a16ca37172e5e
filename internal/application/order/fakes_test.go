package order

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

// memStore repositorios en memoria. Run trabaja sobre una copia y solo la publica si fn
// termina sin error (Commit); en otro caso la descarta (Rollback).
type memStore struct {
	state   *memState
	commits int
}

type memState struct {
	orders   map[string]entity.Order
	lines    []entity.OrderLine
	lots     map[string]entity.StockLot
	products map[string]entity.Product
	entries  []entity.AuditTrailEntry
	locks    []string // lotes bloqueados con GetForUpdate, en orden
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		orders:   map[string]entity.Order{},
		lots:     map[string]entity.StockLot{},
		products: map[string]entity.Product{},
	}}
}

func (st *memState) clone() *memState {
	c := &memState{
		orders:   make(map[string]entity.Order, len(st.orders)),
		lines:    append([]entity.OrderLine(nil), st.lines...),
		lots:     make(map[string]entity.StockLot, len(st.lots)),
		products: make(map[string]entity.Product, len(st.products)),
		entries:  append([]entity.AuditTrailEntry(nil), st.entries...),
		locks:    append([]string(nil), st.locks...),
	}
	for k, v := range st.orders {
		c.orders[k] = v
	}
	for k, v := range st.lots {
		c.lots[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	return c
}

func (m *memStore) Run(_ context.Context, fn func(repos ports.TxRepos) error) error {
	work := m.state.clone()
	if err := fn(reposFor(work)); err != nil {
		return err
	}
	m.state = work
	m.commits++
	return nil
}

func reposFor(st *memState) ports.TxRepos {
	return ports.TxRepos{
		Orders:     &memOrders{st},
		StockLots:  &memLots{st},
		Products:   &memProducts{st},
		AuditTrail: &memAudit{st},
	}
}

// orders repositorio de lectura fuera de transacción (estado confirmado).
func (m *memStore) orders() repository.OrderRepository { return &memOrderView{m} }

type memOrderView struct{ m *memStore }

func (v *memOrderView) inner() *memOrders { return &memOrders{v.m.state} }
func (v *memOrderView) Create(ctx context.Context, o *entity.Order) error {
	return v.inner().Create(ctx, o)
}
func (v *memOrderView) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	return v.inner().CreateLine(ctx, l)
}
func (v *memOrderView) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	return v.inner().GetByID(ctx, id)
}
func (v *memOrderView) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return v.inner().GetForUpdate(ctx, id)
}
func (v *memOrderView) GetLines(ctx context.Context, id string) ([]*entity.OrderLine, error) {
	return v.inner().GetLines(ctx, id)
}
func (v *memOrderView) UpdateStatus(ctx context.Context, o *entity.Order) error {
	return v.inner().UpdateStatus(ctx, o)
}
func (v *memOrderView) ListByCustomer(ctx context.Context, c string, limit, offset int) ([]*entity.Order, error) {
	return v.inner().ListByCustomer(ctx, c, limit, offset)
}

type memOrders struct{ st *memState }

func (r *memOrders) Create(_ context.Context, o *entity.Order) error {
	r.st.orders[o.ID] = *o
	return nil
}
func (r *memOrders) CreateLine(_ context.Context, l *entity.OrderLine) error {
	r.st.lines = append(r.st.lines, *l)
	return nil
}
func (r *memOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}
func (r *memOrders) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}
func (r *memOrders) GetLines(_ context.Context, orderID string) ([]*entity.OrderLine, error) {
	var out []*entity.OrderLine
	for i := range r.st.lines {
		if r.st.lines[i].OrderID == orderID {
			l := r.st.lines[i]
			out = append(out, &l)
		}
	}
	return out, nil
}
func (r *memOrders) UpdateStatus(_ context.Context, o *entity.Order) error {
	if _, ok := r.st.orders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	r.st.orders[o.ID] = *o
	return nil
}
func (r *memOrders) ListByCustomer(_ context.Context, customerID string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	for _, o := range r.st.orders {
		if o.CustomerID == customerID {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memLots struct{ st *memState }

func (r *memLots) Create(_ context.Context, l *entity.StockLot) error {
	r.st.lots[l.ID] = *l
	return nil
}
func (r *memLots) GetByID(_ context.Context, id string) (*entity.StockLot, error) {
	l, ok := r.st.lots[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}
func (r *memLots) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	r.st.locks = append(r.st.locks, id)
	return r.GetByID(ctx, id)
}
func (r *memLots) UpdateQuantity(_ context.Context, l *entity.StockLot) error {
	cur := r.st.lots[l.ID]
	cur.Quantity = l.Quantity
	cur.UpdatedAt = l.UpdatedAt
	r.st.lots[l.ID] = cur
	return nil
}
func (r *memLots) ListByProducer(context.Context, string, int, int) ([]*entity.StockLot, error) {
	return nil, nil
}

type memProducts struct{ st *memState }

func (r *memProducts) Create(_ context.Context, p *entity.Product) error {
	r.st.products[p.ID] = *p
	return nil
}
func (r *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

type memAudit struct{ st *memState }

func (r *memAudit) Create(_ context.Context, e *entity.AuditTrailEntry) error {
	r.st.entries = append(r.st.entries, *e)
	return nil
}
func (r *memAudit) ListByOrder(_ context.Context, orderID string) ([]*entity.AuditTrailEntry, error) {
	var out []*entity.AuditTrailEntry
	for i := range r.st.entries {
		if r.st.entries[i].OrderID == orderID {
			e := r.st.entries[i]
			out = append(out, &e)
		}
	}
	return out, nil
}
func (r *memAudit) ExistsForOrderAndLot(_ context.Context, orderID, lotID string) (bool, error) {
	for _, e := range r.st.entries {
		if e.OrderID == orderID && e.StockLotID == lotID {
			return true, nil
		}
	}
	return false, nil
}
func (r *memAudit) RevenueByProducer(context.Context, string, time.Time, time.Time) (*repository.ProducerRevenue, error) {
	return &repository.ProducerRevenue{QuantitySold: decimal.Zero, Revenue: decimal.Zero}, nil
}
