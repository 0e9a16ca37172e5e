package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// ProducerSummary desglose por productor dentro del resumen de una orden.
type ProducerSummary struct {
	ProducerName string          `json:"producer_name"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// OrderSummary agregado de ingresos y cantidades de una orden, leído de la bitácora.
type OrderSummary struct {
	OrderID           string                     `json:"order_id"`
	ProducerCount     int                        `json:"producer_count"`
	EntryCount        int                        `json:"entry_count"`
	TotalQuantitySold decimal.Decimal            `json:"total_quantity_sold"`
	TotalRevenue      decimal.Decimal            `json:"total_revenue"`
	Producers         map[string]ProducerSummary `json:"producers"`
}

// Summarize agrega los registros de una orden. Usa solo los precios congelados en cada
// registro; los nombres de productor los completa la capa de aplicación.
func Summarize(orderID string, entries []*entity.AuditTrailEntry) *OrderSummary {
	s := &OrderSummary{
		OrderID:           orderID,
		EntryCount:        len(entries),
		TotalQuantitySold: decimal.Zero,
		TotalRevenue:      decimal.Zero,
		Producers:         make(map[string]ProducerSummary),
	}
	for _, e := range entries {
		revenue := e.Revenue()
		s.TotalQuantitySold = s.TotalQuantitySold.Add(e.Quantity)
		s.TotalRevenue = s.TotalRevenue.Add(revenue)

		p := s.Producers[e.ProducerID]
		p.QuantitySold = p.QuantitySold.Add(e.Quantity)
		p.Revenue = p.Revenue.Add(revenue)
		s.Producers[e.ProducerID] = p
	}
	s.ProducerCount = len(s.Producers)
	return s
}

// ProducerIDs ids de productor presentes en el resumen (para resolver nombres en lote).
func (s *OrderSummary) ProducerIDs() []string {
	ids := make([]string, 0, len(s.Producers))
	for id := range s.Producers {
		ids = append(ids, id)
	}
	return ids
}
