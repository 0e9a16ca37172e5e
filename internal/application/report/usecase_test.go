package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/ledger"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

type fakeOrders struct {
	repository.OrderRepository
	orders map[string]*entity.Order
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*entity.Order, error) {
	return f.orders[id], nil
}

type fakeAudit struct {
	repository.AuditTrailRepository
	gotFrom, gotTo time.Time
	result         *repository.ProducerRevenue
	err            error
}

func (f *fakeAudit) RevenueByProducer(_ context.Context, producerID string, from, to time.Time) (*repository.ProducerRevenue, error) {
	f.gotFrom, f.gotTo = from, to
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSummarizer struct{ summary *ledger.OrderSummary }

func (f *fakeSummarizer) Summarize(context.Context, string) (*ledger.OrderSummary, error) {
	return f.summary, nil
}

type fakeGenerator struct {
	gotOrder   *entity.Order
	gotSummary *ledger.OrderSummary
}

func (g *fakeGenerator) GenerateOrderSummaryPDF(_ context.Context, o *entity.Order, s *ledger.OrderSummary) ([]byte, error) {
	g.gotOrder, g.gotSummary = o, s
	return []byte("%PDF-1.3"), nil
}

var (
	staff  = auth.Principal{UserID: "staff-1", Role: entity.RoleStaff}
	member = auth.Principal{UserID: "A", Role: entity.RoleMember}
)

func newUC(audit *fakeAudit, gen *fakeGenerator) *ReportUseCase {
	orders := &fakeOrders{orders: map[string]*entity.Order{"O": {ID: "O", Status: entity.OrderStatusApproved}}}
	uc := NewReportUseCase(orders, audit, &fakeSummarizer{summary: &ledger.OrderSummary{OrderID: "O", ProducerCount: 3}}, gen)
	uc.now = func() time.Time { return time.Date(2026, 3, 17, 15, 30, 0, 0, time.UTC) }
	return uc
}

func TestOrderSummaryPDF(t *testing.T) {
	gen := &fakeGenerator{}
	uc := newUC(&fakeAudit{}, gen)

	b, name, err := uc.OrderSummaryPDF(context.Background(), staff, "O")
	require.NoError(t, err)
	assert.Equal(t, "resumen_orden_O.pdf", name)
	assert.NotEmpty(t, b)
	assert.Equal(t, "O", gen.gotOrder.ID)
	assert.Equal(t, 3, gen.gotSummary.ProducerCount)

	_, _, err = uc.OrderSummaryPDF(context.Background(), member, "O")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, _, err = uc.OrderSummaryPDF(context.Background(), staff, "NOPE")
	assert.ErrorIs(t, err, domain.ErrReferenceNotFound)
}

func TestMemberRevenue_PeriodoPorDefecto(t *testing.T) {
	audit := &fakeAudit{result: &repository.ProducerRevenue{
		ProducerID: "A", OrderCount: 2, EntryCount: 3,
		QuantitySold: decimal.NewFromInt(12), Revenue: decimal.RequireFromString("1200.456"),
	}}
	uc := newUC(audit, &fakeGenerator{})

	out, err := uc.MemberRevenue(context.Background(), member, "A", dto.MemberRevenueRequest{})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), audit.gotFrom)
	assert.Equal(t, time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC), audit.gotTo)
	assert.Equal(t, "2026-03-01", out.Period.StartDate)
	assert.Equal(t, "2026-03-17", out.Period.EndDate)
	assert.Equal(t, 2, out.OrderCount)
	assert.True(t, out.Revenue.Equal(decimal.RequireFromString("1200.46")))
}

func TestMemberRevenue_Permisos(t *testing.T) {
	uc := newUC(&fakeAudit{}, &fakeGenerator{})
	ctx := context.Background()

	_, err := uc.MemberRevenue(ctx, member, "B", dto.MemberRevenueRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden, "un miembro no ve ingresos de otro")

	_, err = uc.MemberRevenue(ctx, auth.Principal{UserID: "c", Role: entity.RoleCustomer}, "A", dto.MemberRevenueRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.MemberRevenue(ctx, staff, "B", dto.MemberRevenueRequest{From: "2026-01-01", To: "2026-01-31"})
	require.NoError(t, err)
	assert.True(t, out.Revenue.IsZero(), "sin ventas = cero, no error")
}

func TestMemberRevenue_FechasInvalidas(t *testing.T) {
	uc := newUC(&fakeAudit{}, &fakeGenerator{})

	_, err := uc.MemberRevenue(context.Background(), staff, "A", dto.MemberRevenueRequest{From: "2026-02-10", To: "2026-02-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.MemberRevenue(context.Background(), staff, "A", dto.MemberRevenueRequest{From: "10/02/2026"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMemberRevenue_ErrorDeRepositorio(t *testing.T) {
	boom := errors.New("conexión cerrada")
	uc := newUC(&fakeAudit{err: boom}, &fakeGenerator{})

	_, err := uc.MemberRevenue(context.Background(), staff, "A", dto.MemberRevenueRequest{})
	assert.ErrorIs(t, err, boom)
}
