// Package ledger contiene los servicios de dominio puros sobre la bitácora multi-productor:
// conciliación contra los productores esperados y agregación de ingresos por orden.
package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
)

// ProducerTotals cantidad e ingreso agregados de un productor.
type ProducerTotals struct {
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// DuplicatePair par (productor, lote) que aparece más de una vez en la bitácora de una orden.
type DuplicatePair struct {
	ProducerID string `json:"producer_id"`
	StockLotID string `json:"stock_lot_id"`
	Count      int    `json:"count"`
}

// ValidationResult resultado de conciliar la bitácora de una orden.
// IsComplete=false es el caso "ValidationIncomplete": un dato, no un error.
type ValidationResult struct {
	OrderID           string                    `json:"order_id"`
	IsComplete        bool                      `json:"is_complete"`
	MissingProducers  []string                  `json:"missing_producers"`
	ExtraProducers    []string                  `json:"extra_producers"`
	DuplicateEntries  []DuplicatePair           `json:"duplicate_entries"`
	TotalEntries      int                       `json:"total_entries"`
	ProducerBreakdown map[string]ProducerTotals `json:"producer_breakdown"`
}

type pairKey struct {
	producerID string
	stockLotID string
}

// Reconcile compara los registros de una orden contra los productores esperados.
//
//   - agrupa por (productor, lote): cualquier grupo con más de un registro es duplicado.
//   - agrupa por productor: el conjunto presente se resta contra el esperado (faltantes)
//     y viceversa (sobrantes).
//
// Completa si no hay faltantes, sobrantes ni duplicados. O(n) en registros.
func Reconcile(orderID string, entries []*entity.AuditTrailEntry, expectedProducerIDs []string) *ValidationResult {
	pairs := make(map[pairKey]int, len(entries))
	pairOrder := make([]pairKey, 0, len(entries))
	breakdown := make(map[string]ProducerTotals)

	for _, e := range entries {
		k := pairKey{producerID: e.ProducerID, stockLotID: e.StockLotID}
		if _, seen := pairs[k]; !seen {
			pairOrder = append(pairOrder, k)
		}
		pairs[k]++

		t := breakdown[e.ProducerID]
		t.QuantitySold = t.QuantitySold.Add(e.Quantity)
		t.Revenue = t.Revenue.Add(e.Revenue())
		breakdown[e.ProducerID] = t
	}

	expected := make(map[string]struct{}, len(expectedProducerIDs))
	for _, id := range expectedProducerIDs {
		if id == "" {
			continue
		}
		expected[id] = struct{}{}
	}

	missing := make([]string, 0)
	for id := range expected {
		if _, ok := breakdown[id]; !ok {
			missing = append(missing, id)
		}
	}
	extra := make([]string, 0)
	for id := range breakdown {
		if _, ok := expected[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)

	duplicates := make([]DuplicatePair, 0)
	for _, k := range pairOrder {
		if n := pairs[k]; n > 1 {
			duplicates = append(duplicates, DuplicatePair{ProducerID: k.producerID, StockLotID: k.stockLotID, Count: n})
		}
	}

	return &ValidationResult{
		OrderID:           orderID,
		IsComplete:        len(missing) == 0 && len(extra) == 0 && len(duplicates) == 0,
		MissingProducers:  missing,
		ExtraProducers:    extra,
		DuplicateEntries:  duplicates,
		TotalEntries:      len(entries),
		ProducerBreakdown: breakdown,
	}
}
