// Package pdf genera el resumen de una orden multi-productor en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Agromercado + N° orden  │  Estado + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Productor | Cantidad | Ingreso | % del total         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Productores / Registros / Cantidad / TOTAL         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: QR con el id de la orden + leyenda                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"sort"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Agromercado-api/internal/application/report"
	"github.com/jhoicas/Agromercado-api/internal/domain/entity"
	"github.com/jhoicas/Agromercado-api/internal/domain/ledger"
)

var _ report.SummaryPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 34, Green: 102, Blue: 51}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa report.SummaryPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	printer *message.Printer
}

// NewMarotoPDFGenerator construye el generador. Los montos usan formato es (1.250.000,50).
func NewMarotoPDFGenerator() *MarotoPDFGenerator {
	return &MarotoPDFGenerator{printer: message.NewPrinter(language.Spanish)}
}

// GenerateOrderSummaryPDF genera el PDF del resumen y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateOrderSummaryPDF(
	_ context.Context,
	order *entity.Order,
	summary *ledger.OrderSummary,
) ([]byte, error) {
	if order == nil || summary == nil {
		return nil, fmt.Errorf("pdf: orden y resumen son obligatorios")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Resumen de orden "+order.ID, true).
		WithAuthor("Agromercado", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.producerRows(summary) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(summary))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(order))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(order *entity.Order) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("AGROMERCADO", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Orden: "+order.ID, props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("RESUMEN MULTI-PRODUCTOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(statusLabel(order.Status), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+order.CreatedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Productor", 6, align.Left),
		h("Cantidad", 2, align.Right),
		h("Ingreso", 3, align.Right),
		h("%", 1, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// producerRows una fila por productor, ordenadas por ingreso descendente.
func (g *MarotoPDFGenerator) producerRows(s *ledger.OrderSummary) []core.Row {
	producers := sortedProducers(s)
	result := make([]core.Row, 0, len(producers))
	for _, p := range producers {
		result = append(result, row.New(7).Add(
			col.New(6).Add(text.New(p.ProducerName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(g.quantity(p.QuantitySold),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(g.money(p.Revenue),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(share(p.Revenue, s.TotalRevenue),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func (g *MarotoPDFGenerator) totalsRow(s *ledger.OrderSummary) core.Row {
	label := func(v string) core.Component {
		return text.New(v, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(v string) core.Component {
		return text.New(v, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(26).Add(
		col.New(5),
		col.New(3).Add(
			label("Productores:"),
			label("Registros:"),
			label("Cantidad total:"),
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2,
			}),
		),
		col.New(4).Add(
			value(g.printer.Sprintf("%d", s.ProducerCount)),
			value(g.printer.Sprintf("%d", s.EntryCount)),
			value(g.quantity(s.TotalQuantitySold)),
			text.New(g.money(s.TotalRevenue), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1,
			}),
		),
	)
}

func footerRow(order *entity.Order) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(order.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Ingresos calculados con los precios congelados en la bitácora de venta.", props.Text{
				Size: 8, Top: 4, Left: 3, Color: colorGray,
			}),
			text.New("Generado: "+time.Now().Format("02/01/2006 15:04"), props.Text{
				Size: 7, Top: 14, Left: 3, Color: colorGray,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func sortedProducers(s *ledger.OrderSummary) []ledger.ProducerSummary {
	out := make([]ledger.ProducerSummary, 0, len(s.Producers))
	for _, p := range s.Producers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Revenue.Equal(out[j].Revenue) {
			return out[i].Revenue.GreaterThan(out[j].Revenue)
		}
		return out[i].ProducerName < out[j].ProducerName
	})
	return out
}

func (g *MarotoPDFGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

func (g *MarotoPDFGenerator) quantity(d decimal.Decimal) string {
	return g.printer.Sprintf("%.3f", d.InexactFloat64())
}

func share(part, total decimal.Decimal) string {
	if total.IsZero() {
		return "0%"
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
}

func statusLabel(status string) string {
	switch status {
	case entity.OrderStatusApproved:
		return "APROBADA"
	case entity.OrderStatusRejected:
		return "RECHAZADA"
	default:
		return "PENDIENTE"
	}
}
