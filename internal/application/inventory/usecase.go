// Package inventory alta y consulta de lotes de stock de cada productor (miembro).
package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/application/auth"
	"github.com/jhoicas/Agromercado-api/internal/application/dto"
	"github.com/jhoicas/Agromercado-api/internal/application/ports"
	"github.com/jhoicas/Agromercado-api/internal/domain"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/repository"
)

// StockLotUseCase casos de uso de lotes del productor.
type StockLotUseCase struct {
	txRunner ports.TxRunner
	lotRepo  repository.StockLotRepository
	log      zerolog.Logger
	now      func() time.Time
}

// NewStockLotUseCase construye el caso de uso.
func NewStockLotUseCase(txRunner ports.TxRunner, lotRepo repository.StockLotRepository, log zerolog.Logger) *StockLotUseCase {
	return &StockLotUseCase{
		txRunner: txRunner,
		lotRepo:  lotRepo,
		log:      log,
		now:      time.Now,
	}
}

// RegisterLot da de alta un lote a nombre del miembro autenticado. Si no se indica
// producto, lo crea en la misma transacción.
func (uc *StockLotUseCase) RegisterLot(ctx context.Context, p auth.Principal, in dto.RegisterStockLotRequest) (*dto.StockLotResponse, error) {
	if !p.HasRole(entity.RoleMember) {
		return nil, domain.ErrForbidden
	}
	category := entity.Category(in.Category)
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: categoría %q", domain.ErrInvalidInput, in.Category)
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	// escalas de las columnas: cantidad NUMERIC(14,3), precios NUMERIC(14,2)
	if !in.Quantity.Equal(in.Quantity.Round(3)) {
		return nil, fmt.Errorf("%w: la cantidad admite hasta 3 decimales", domain.ErrInvalidInput)
	}
	prices := entity.PriceSet{
		UnitPrice:      in.UnitPrice,
		PricePerKilo:   in.PricePerKilo,
		PricePerPiece:  in.PricePerPiece,
		PricePerBundle: in.PricePerBundle,
	}
	for _, pr := range []*decimal.Decimal{prices.UnitPrice, prices.PricePerKilo, prices.PricePerPiece, prices.PricePerBundle} {
		if pr == nil {
			continue
		}
		if pr.IsNegative() {
			return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
		}
		if !pr.Equal(pr.Round(2)) {
			return nil, fmt.Errorf("%w: los precios admiten hasta 2 decimales", domain.ErrInvalidInput)
		}
	}
	name := strings.TrimSpace(in.ProductName)
	if in.ProductID == "" && name == "" {
		return nil, fmt.Errorf("%w: product_id o product_name es requerido", domain.ErrInvalidInput)
	}

	now := uc.now()
	lot := &entity.StockLot{
		ID:         uuid.New().String(),
		ProductID:  in.ProductID,
		ProducerID: p.UserID,
		Category:   category,
		Quantity:   in.Quantity,
		Prices:     prices,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := uc.txRunner.Run(ctx, func(repos ports.TxRepos) error {
		if lot.ProductID != "" {
			prod, err := repos.Products.GetByID(ctx, lot.ProductID)
			if err != nil {
				return err
			}
			if prod == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrReferenceNotFound, lot.ProductID)
			}
		} else {
			prod := &entity.Product{
				ID:        uuid.New().String(),
				Name:      name,
				Unit:      strings.TrimSpace(in.Unit),
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repos.Products.Create(ctx, prod); err != nil {
				return err
			}
			lot.ProductID = prod.ID
		}
		return repos.StockLots.Create(ctx, lot)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("stock_lot_id", lot.ID).
		Str("product_id", lot.ProductID).
		Str("producer_id", lot.ProducerID).
		Str("category", string(lot.Category)).
		Str("quantity", lot.Quantity.String()).
		Msg("lote registrado")
	return toResponse(lot), nil
}

// ListMine lotes del miembro autenticado.
func (uc *StockLotUseCase) ListMine(ctx context.Context, p auth.Principal, page dto.PageRequest) ([]dto.StockLotResponse, error) {
	if !p.HasRole(entity.RoleMember) {
		return nil, domain.ErrForbidden
	}
	lots, err := uc.lotRepo.ListByProducer(ctx, p.UserID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockLotResponse, 0, len(lots))
	for _, l := range lots {
		out = append(out, *toResponse(l))
	}
	return out, nil
}

func toResponse(l *entity.StockLot) *dto.StockLotResponse {
	return &dto.StockLotResponse{
		ID:             l.ID,
		ProductID:      l.ProductID,
		ProducerID:     l.ProducerID,
		Category:       string(l.Category),
		Quantity:       l.Quantity,
		UnitPrice:      l.Prices.UnitPrice,
		PricePerKilo:   l.Prices.PricePerKilo,
		PricePerPiece:  l.Prices.PricePerPiece,
		PricePerBundle: l.Prices.PricePerBundle,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}
