package order

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Agromercado-api/internal/application/audittrail"
	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

var (
	customer  = auth.Principal{UserID: "cust-1", Role: entity.RoleCustomer}
	otherCust = auth.Principal{UserID: "cust-2", Role: entity.RoleCustomer}
	staff     = auth.Principal{UserID: "staff-1", Role: entity.RoleStaff}
	logistic  = auth.Principal{UserID: "log-1", Role: entity.RoleLogistic}
)

func kiloLot(id, producer string, qty, price int64) entity.StockLot {
	p := decimal.NewFromInt(price)
	return entity.StockLot{
		ID: id, ProductID: "P", ProducerID: producer, Category: entity.CategoryKilo,
		Quantity: decimal.NewFromInt(qty), Prices: entity.PriceSet{PricePerKilo: &p},
	}
}

func setup(t *testing.T) (*OrderUseCase, *memStore) {
	t.Helper()
	m := newMemStore()
	m.state.products["P"] = entity.Product{ID: "P", Name: "Tomate chonto"}
	m.state.lots["S1"] = kiloLot("S1", "A", 20, 100)
	m.state.lots["S2"] = kiloLot("S2", "B", 10, 100)
	m.state.lots["S3"] = kiloLot("S3", "C", 8, 150)

	writer := audittrail.NewWriterUseCase(m, nil, zerolog.Nop(), audittrail.WriterConfig{StrictMode: true})
	uc := NewOrderUseCase(m, m.orders(), writer, nil, zerolog.Nop())
	return uc, m
}

func checkoutThreeMembers(t *testing.T, uc *OrderUseCase) *dto.OrderResponse {
	t.Helper()
	resp, err := uc.Checkout(context.Background(), customer, dto.CheckoutRequest{Items: []dto.CheckoutItemRequest{
		{StockLotID: "S1", Quantity: decimal.NewFromInt(7)},
		{StockLotID: "S2", Quantity: decimal.NewFromInt(3)},
		{StockLotID: "S3", Quantity: decimal.NewFromInt(5)},
	}})
	require.NoError(t, err)
	return resp
}

func TestCheckout_CreaOrdenPendiente(t *testing.T) {
	uc, m := setup(t)

	resp := checkoutThreeMembers(t, uc)

	assert.Equal(t, entity.OrderStatusPending, resp.Status)
	assert.Equal(t, "cust-1", resp.CustomerID)
	assert.Nil(t, resp.DeliveryStatus)
	assert.True(t, resp.TotalAmount.IsZero())
	require.Len(t, resp.Lines, 3)
	assert.Equal(t, "P", resp.Lines[0].ProductID)
	assert.True(t, m.state.lots["S1"].Quantity.Equal(decimal.NewFromInt(20)), "checkout no descuenta stock")
}

func TestCheckout_Errores(t *testing.T) {
	uc, m := setup(t)
	ctx := context.Background()

	_, err := uc.Checkout(ctx, staff, dto.CheckoutRequest{Items: []dto.CheckoutItemRequest{{StockLotID: "S1", Quantity: decimal.NewFromInt(1)}}})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Checkout(ctx, customer, dto.CheckoutRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Checkout(ctx, customer, dto.CheckoutRequest{Items: []dto.CheckoutItemRequest{
		{StockLotID: "S1", Quantity: decimal.NewFromInt(1)},
		{StockLotID: "S-404", Quantity: decimal.NewFromInt(1)},
	}})
	assert.ErrorIs(t, err, domain.ErrReferenceNotFound)

	_, err = uc.Checkout(ctx, customer, dto.CheckoutRequest{Items: []dto.CheckoutItemRequest{{StockLotID: "S3", Quantity: decimal.NewFromInt(9)}}})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Empty(t, m.state.orders, "ninguna orden parcial queda persistida")
}

func TestApprove_TresProductores(t *testing.T) {
	uc, m := setup(t)
	order := checkoutThreeMembers(t, uc)

	resp, err := uc.Approve(context.Background(), staff, order.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusApproved, resp.Status)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(1750)), "total: %s", resp.TotalAmount)
	require.NotNil(t, resp.DeliveryStatus)
	assert.Equal(t, entity.DeliveryPreparing, *resp.DeliveryStatus)
	assert.Equal(t, "staff-1", resp.ApprovedBy)

	assert.True(t, m.state.lots["S1"].Quantity.Equal(decimal.NewFromInt(13)))
	assert.True(t, m.state.lots["S2"].Quantity.Equal(decimal.NewFromInt(7)))
	assert.True(t, m.state.lots["S3"].Quantity.Equal(decimal.NewFromInt(3)))

	require.Len(t, m.state.entries, 3)
	assert.Equal(t, "A", m.state.entries[0].ProducerID)
	assert.True(t, m.state.entries[0].RemainingBefore.Equal(decimal.NewFromInt(20)))
	assert.True(t, m.state.entries[2].RemainingBefore.Equal(decimal.NewFromInt(8)))
}

func TestApprove_StockInsuficienteNoDejaCambios(t *testing.T) {
	uc, m := setup(t)
	order := checkoutThreeMembers(t, uc)

	// otra venta vació parcialmente el lote S3 después del checkout
	lot := m.state.lots["S3"]
	lot.Quantity = decimal.NewFromInt(2)
	m.state.lots["S3"] = lot

	_, err := uc.Approve(context.Background(), staff, order.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, m.state.lots["S1"].Quantity.Equal(decimal.NewFromInt(20)), "rollback del descuento de S1")
	assert.Empty(t, m.state.entries)
	assert.Equal(t, entity.OrderStatusPending, m.state.orders[order.ID].Status)
}

func TestApprove_PermisosYTransiciones(t *testing.T) {
	uc, _ := setup(t)
	order := checkoutThreeMembers(t, uc)
	ctx := context.Background()

	_, err := uc.Approve(ctx, customer, order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Approve(ctx, staff, "NOPE")
	assert.ErrorIs(t, err, domain.ErrReferenceNotFound)

	_, err = uc.Approve(ctx, staff, order.ID)
	require.NoError(t, err)
	_, err = uc.Approve(ctx, staff, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReject_OrdenAprobadaEnRutaLimpiaEntrega(t *testing.T) {
	uc, m := setup(t)
	ctx := context.Background()
	order := checkoutThreeMembers(t, uc)
	_, err := uc.Approve(ctx, staff, order.ID)
	require.NoError(t, err)
	out, err := uc.UpdateDelivery(ctx, logistic, order.ID, entity.DeliveryOutForDelivery)
	require.NoError(t, err)
	require.NotNil(t, out.DeliveryStatus)

	resp, err := uc.Reject(ctx, staff, order.ID, "cliente ausente")
	require.NoError(t, err)

	assert.Equal(t, entity.OrderStatusRejected, resp.Status)
	assert.Nil(t, resp.DeliveryStatus)
	assert.Nil(t, m.state.orders[order.ID].DeliveryStatus)
	assert.Equal(t, "cliente ausente", m.state.orders[order.ID].RejectionReason)
	assert.Len(t, m.state.entries, 3, "la bitácora es inmutable")

	_, err = uc.Reject(ctx, staff, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestReject_SoloBackoffice(t *testing.T) {
	uc, _ := setup(t)
	order := checkoutThreeMembers(t, uc)

	_, err := uc.Reject(context.Background(), logistic, order.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateDelivery(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	order := checkoutThreeMembers(t, uc)

	_, err := uc.UpdateDelivery(ctx, logistic, order.ID, entity.DeliveryOutForDelivery)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition, "orden pendiente")

	_, err = uc.Approve(ctx, staff, order.ID)
	require.NoError(t, err)

	_, err = uc.UpdateDelivery(ctx, staff, order.ID, entity.DeliveryDelivered)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.UpdateDelivery(ctx, logistic, order.ID, "perdida")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err := uc.UpdateDelivery(ctx, logistic, order.ID, entity.DeliveryDelivered)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryDelivered, *resp.DeliveryStatus)
}

func TestGet_ClienteSoloVeSusOrdenes(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()
	order := checkoutThreeMembers(t, uc)

	got, err := uc.Get(ctx, customer, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 3)

	_, err = uc.Get(ctx, otherCust, order.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.Get(ctx, staff, order.ID)
	assert.NoError(t, err)

	_, err = uc.Get(ctx, staff, "NOPE")
	assert.ErrorIs(t, err, domain.ErrReferenceNotFound)
}

func TestListMine(t *testing.T) {
	uc, _ := setup(t)
	checkoutThreeMembers(t, uc)
	checkoutThreeMembers(t, uc)

	mine, err := uc.ListMine(context.Background(), customer, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	others, err := uc.ListMine(context.Background(), otherCust, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestApprove_CantidadFraccionariaTotalIgualABitacora(t *testing.T) {
	uc, m := setup(t)
	ctx := context.Background()
	price := decimal.RequireFromString("1234.57")
	lot := kiloLot("S4", "D", 2, 0)
	lot.Prices = entity.PriceSet{PricePerKilo: &price}
	m.state.lots["S4"] = lot

	order, err := uc.Checkout(ctx, customer, dto.CheckoutRequest{Items: []dto.CheckoutItemRequest{
		{StockLotID: "S4", Quantity: decimal.RequireFromString("0.375")},
		{StockLotID: "S1", Quantity: decimal.RequireFromString("1.125")},
	}})
	require.NoError(t, err)

	resp, err := uc.Approve(ctx, staff, order.ID)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, e := range m.state.entries {
		sum = sum.Add(e.Revenue())
	}
	// 0.375 × 1234.57 + 1.125 × 100
	expected := decimal.RequireFromString("575.46375")
	assert.True(t, resp.TotalAmount.Equal(expected), "total: %s", resp.TotalAmount)
	assert.True(t, sum.Equal(resp.TotalAmount), "bitácora %s vs total %s", sum, resp.TotalAmount)

	got, err := uc.Get(ctx, staff, order.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(resp.TotalAmount))
}

func TestApprove_BloqueaLotesEnOrdenDeID(t *testing.T) {
	uc, m := setup(t)
	ctx := context.Background()
	order, err := uc.Checkout(ctx, customer, dto.CheckoutRequest{Items: []dto.CheckoutItemRequest{
		{StockLotID: "S3", Quantity: decimal.NewFromInt(2)},
		{StockLotID: "S1", Quantity: decimal.NewFromInt(4)},
		{StockLotID: "S2", Quantity: decimal.NewFromInt(1)},
	}})
	require.NoError(t, err)

	_, err = uc.Approve(ctx, staff, order.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"S1", "S2", "S3"}, m.state.locks)
	require.Len(t, m.state.entries, 3)
	assert.Equal(t, "S3", m.state.entries[0].StockLotID)
	assert.Equal(t, "S1", m.state.entries[1].StockLotID)
	assert.Equal(t, "S2", m.state.entries[2].StockLotID)
	assert.True(t, m.state.entries[1].RemainingBefore.Equal(decimal.NewFromInt(20)))
}
