// Package order implementa el flujo de la orden: checkout, aprobación (descuento de stock y
// bitácora en una sola transacción), rechazo y estados de entrega.
package order

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/application/audittrail"
	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

// OrderUseCase casos de uso de órdenes.
type OrderUseCase struct {
	txRunner  ports.TxRunner
	orderRepo repository.OrderRepository
	writer    *audittrail.WriterUseCase
	metrics   ports.LedgerMetrics
	log       zerolog.Logger
	now       func() time.Time
}

// NewOrderUseCase construye el caso de uso. metrics puede ser nil.
func NewOrderUseCase(
	txRunner ports.TxRunner,
	orderRepo repository.OrderRepository,
	writer *audittrail.WriterUseCase,
	metrics ports.LedgerMetrics,
	log zerolog.Logger,
) *OrderUseCase {
	if metrics == nil {
		metrics = ports.NopLedgerMetrics{}
	}
	return &OrderUseCase{
		txRunner:  txRunner,
		orderRepo: orderRepo,
		writer:    writer,
		metrics:   metrics,
		log:       log,
		now:       time.Now,
	}
}

// Checkout crea una orden pending con la asignación solicitada (lote → cantidad).
// El stock no se descuenta hasta la aprobación.
func (uc *OrderUseCase) Checkout(ctx context.Context, p auth.Principal, in dto.CheckoutRequest) (*dto.OrderResponse, error) {
	if !p.HasRole(entity.RoleCustomer) {
		return nil, domain.ErrForbidden
	}
	if len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	seen := make(map[string]struct{}, len(in.Items))
	for _, it := range in.Items {
		if it.StockLotID == "" || !it.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		if _, dup := seen[it.StockLotID]; dup {
			return nil, fmt.Errorf("%w: lote %s repetido", domain.ErrInvalidInput, it.StockLotID)
		}
		seen[it.StockLotID] = struct{}{}
	}

	now := uc.now()
	order := &entity.Order{
		ID:          uuid.New().String(),
		CustomerID:  p.UserID,
		Status:      entity.OrderStatusPending,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	lines := make([]*entity.OrderLine, 0, len(in.Items))

	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		for _, it := range in.Items {
			lot, err := repos.StockLots.GetByID(ctx, it.StockLotID)
			if err != nil {
				return err
			}
			if lot == nil {
				return fmt.Errorf("%w: lote %s", domain.ErrReferenceNotFound, it.StockLotID)
			}
			if lot.Quantity.LessThan(it.Quantity) {
				return fmt.Errorf("%w: lote %s", domain.ErrInsufficientStock, lot.ID)
			}
			line := &entity.OrderLine{
				ID:         uuid.New().String(),
				OrderID:    order.ID,
				StockLotID: lot.ID,
				ProductID:  lot.ProductID,
				Quantity:   it.Quantity,
			}
			if err := repos.Orders.CreateLine(ctx, line); err != nil {
				return err
			}
			lines = append(lines, line)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("order_id", order.ID).Str("customer_id", p.UserID).Int("lines", len(lines)).Msg("orden creada")
	return toOrderResponse(order, lines), nil
}

// Approve aprueba una orden pending: por cada línea bloquea el lote (SELECT FOR UPDATE),
// descuenta la cantidad, escribe la bitácora y fija el total como la suma de ingresos
// atribuidos. Todo en una transacción.
func (uc *OrderUseCase) Approve(ctx context.Context, p auth.Principal, orderID string) (*dto.OrderResponse, error) {
	if !p.IsBackoffice() {
		return nil, domain.ErrForbidden
	}
	now := uc.now()
	var (
		order   *entity.Order
		lines   []*entity.OrderLine
		entries []*entity.AuditTrailEntry
	)

	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		order, err = repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrReferenceNotFound, orderID)
		}
		if order.Status != entity.OrderStatusPending {
			return domain.ErrInvalidTransition
		}
		lines, err = repos.Orders.GetLines(ctx, order.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: orden sin líneas", domain.ErrInvalidInput)
		}

		// Bloqueo en orden ascendente de ID; el descuento sigue el orden de las líneas.
		lotIDs := make([]string, 0, len(lines))
		for _, l := range lines {
			lotIDs = append(lotIDs, l.StockLotID)
		}
		sort.Strings(lotIDs)
		locked := make(map[string]*entity.StockLot, len(lotIDs))
		for _, id := range lotIDs {
			if _, ok := locked[id]; ok {
				continue
			}
			lot, err := repos.StockLots.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if lot == nil {
				return fmt.Errorf("%w: lote %s", domain.ErrReferenceNotFound, id)
			}
			locked[id] = lot
		}

		contributions := make([]audittrail.Contribution, 0, len(lines))
		for _, l := range lines {
			lot := locked[l.StockLotID]
			remaining := lot.Quantity
			if err := lot.Deduct(l.Quantity, now); err != nil {
				return fmt.Errorf("%w: lote %s", err, lot.ID)
			}
			if err := repos.StockLots.UpdateQuantity(ctx, lot); err != nil {
				return err
			}
			contributions = append(contributions, audittrail.Contribution{
				StockLotID:      lot.ID,
				ProductID:       l.ProductID,
				Quantity:        l.Quantity,
				RemainingBefore: remaining,
			})
		}

		entries, err = uc.writer.RecordInTx(ctx, repos, order, contributions, now)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, e := range entries {
			total = total.Add(e.Revenue())
		}
		if err := order.Approve(total, p.UserID, now); err != nil {
			return err
		}
		return repos.Orders.UpdateStatus(ctx, order)
	})
	if err != nil {
		uc.metrics.WriteFailed(audittrail.FailureReason(err))
		uc.log.Warn().Err(err).Str("order_id", orderID).Str("by", p.UserID).Msg("aprobación de orden fallida")
		return nil, err
	}

	uc.metrics.EntriesWritten(uc.writer.Mode(), len(entries))
	uc.log.Info().
		Str("order_id", order.ID).
		Str("by", p.UserID).
		Int("entries", len(entries)).
		Str("total", order.TotalAmount.String()).
		Msg("orden aprobada")
	return toOrderResponse(order, lines), nil
}

// Reject rechaza una orden pending o approved. El estado de entrega queda en null.
// No devuelve stock ni borra la bitácora: los registros son inmutables.
func (uc *OrderUseCase) Reject(ctx context.Context, p auth.Principal, orderID, reason string) (*dto.OrderResponse, error) {
	if !p.IsBackoffice() {
		return nil, domain.ErrForbidden
	}
	order, err := uc.mutate(ctx, orderID, func(o *entity.Order, now time.Time) error {
		return o.Reject(reason, p.UserID, now)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("by", p.UserID).Str("reason", reason).Msg("orden rechazada")
	return toOrderResponse(order, nil), nil
}

// UpdateDelivery avanza el estado de entrega de una orden aprobada (admin o logística).
func (uc *OrderUseCase) UpdateDelivery(ctx context.Context, p auth.Principal, orderID, status string) (*dto.OrderResponse, error) {
	if !p.HasRole(entity.RoleAdmin, entity.RoleLogistic) {
		return nil, domain.ErrForbidden
	}
	order, err := uc.mutate(ctx, orderID, func(o *entity.Order, now time.Time) error {
		return o.SetDeliveryStatus(status, now)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("order_id", order.ID).Str("delivery_status", status).Msg("estado de entrega actualizado")
	return toOrderResponse(order, nil), nil
}

// mutate bloquea la orden, aplica fn y persiste el nuevo estado.
func (uc *OrderUseCase) mutate(ctx context.Context, orderID string, fn func(o *entity.Order, now time.Time) error) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		var err error
		order, err = repos.Orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: orden %s", domain.ErrReferenceNotFound, orderID)
		}
		if err := fn(order, uc.now()); err != nil {
			return err
		}
		return repos.Orders.UpdateStatus(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Get devuelve la orden con sus líneas. Un cliente solo ve sus propias órdenes.
func (uc *OrderUseCase) Get(ctx context.Context, p auth.Principal, orderID string) (*dto.OrderResponse, error) {
	order, err := uc.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrReferenceNotFound, orderID)
	}
	if p.Role == entity.RoleCustomer && order.CustomerID != p.UserID {
		return nil, domain.ErrForbidden
	}
	if p.Role == entity.RoleMember {
		return nil, domain.ErrForbidden
	}
	lines, err := uc.orderRepo.GetLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return toOrderResponse(order, lines), nil
}

// ListMine lista las órdenes del cliente autenticado.
func (uc *OrderUseCase) ListMine(ctx context.Context, p auth.Principal, page dto.PageRequest) ([]dto.OrderResponse, error) {
	if !p.HasRole(entity.RoleCustomer) {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	orders, err := uc.orderRepo.ListByCustomer(ctx, p.UserID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, *toOrderResponse(o, nil))
	}
	return out, nil
}

func toOrderResponse(o *entity.Order, lines []*entity.OrderLine) *dto.OrderResponse {
	if o == nil {
		return nil
	}
	resp := &dto.OrderResponse{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		DeliveryStatus:  o.DeliveryStatus,
		ApprovedBy:      o.ApprovedBy,
		RejectedBy:      o.RejectedBy,
		RejectionReason: o.RejectionReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ID:         l.ID,
			StockLotID: l.StockLotID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
		})
	}
	return resp
}
