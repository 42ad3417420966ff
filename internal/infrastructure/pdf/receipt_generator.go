// Package pdf genera el comprobante A4 de un movimiento de inventario.
//
// Layout de la página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + tipo de movimiento │ N° + Fecha            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SKU: código + nombre                                        │
//	│  Origen → Destino │ Cantidad                                 │
//	│  Actor / Motivo / Activo                                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Trazabilidad de reversión + QR con el ID            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

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

	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 160, Green: 30, Blue: 30}
)

var _ inventory.ReceiptRenderer = (*ReceiptGenerator)(nil)

// ReceiptGenerator implementa inventory.ReceiptRenderer usando Maroto v2.
type ReceiptGenerator struct {
	issuer string
}

// NewReceiptGenerator construye el generador; issuer aparece como autor del PDF.
func NewReceiptGenerator(issuer string) *ReceiptGenerator {
	return &ReceiptGenerator{issuer: issuer}
}

// Render genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) Render(_ context.Context, r *inventory.Receipt) ([]byte, error) {
	if r == nil || r.Movement == nil || r.Type == nil {
		return nil, fmt.Errorf("pdf: comprobante incompleto")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de movimiento "+r.Movement.ID, true).
		WithAuthor(nonEmpty(g.issuer, "inventory-ledger"), true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(r))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(skuRow(r.SKU))
	m.AddRows(routeRow(r))
	m.AddRows(detailRow(r.Movement))
	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(r.Movement))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(r *inventory.Receipt) core.Row {
	title := "COMPROBANTE DE " + direction(r.Movement)
	return row.New(18).Add(
		col.New(7).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Tipo: "+r.Type.Name, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("N° "+r.Movement.ID, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1}),
			text.New("Fecha: "+r.Movement.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func skuRow(sku *entity.SKU) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("PRODUCTO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("%s  %s", nonEmpty(sku.Code, sku.ID), sku.Name), props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
		),
	)
}

func routeRow(r *inventory.Receipt) core.Row {
	return row.New(14).Add(
		col.New(4).Add(
			text.New("ORIGEN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(locationName(r.From), props.Text{Size: 9, Top: 6}),
		),
		col.New(4).Add(
			text.New("DESTINO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(locationName(r.To), props.Text{Size: 9, Top: 6}),
		),
		col.New(4).Add(
			text.New("CANTIDAD", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}),
			text.New(fmt.Sprintf("%d", r.Movement.Quantity), props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6}),
		),
	)
}

func detailRow(mv *entity.Movement) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("Registrado por: "+mv.ActorID, props.Text{Size: 8, Top: 1, Color: colorGray}),
			text.New("Motivo: "+nonEmpty(mv.Reason, "-"), props.Text{Size: 8, Top: 6}),
			text.New("Activo: "+nonEmpty(mv.AssetID, "-"), props.Text{Size: 8, Top: 11, Color: colorGray}),
		),
	)
}

func footerRow(mv *entity.Movement) core.Row {
	var notes []core.Component
	top := 2.0
	if mv.ReversalOfMovementID != "" {
		notes = append(notes, text.New("Revierte el movimiento "+mv.ReversalOfMovementID, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: top, Color: colorAlert,
		}))
		top += 6
	}
	if mv.RevertedByMovementID != "" {
		notes = append(notes, text.New("REVERTIDO por el movimiento "+mv.RevertedByMovementID, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: top, Color: colorAlert,
		}))
		top += 6
	}
	notes = append(notes, text.New("Documento generado desde el ledger de inventario; el movimiento es inmutable.", props.Text{
		Size: 7, Top: top, Color: colorGray,
	}))
	return row.New(30).Add(
		col.New(3).Add(code.NewQr(mv.ID, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(notes...),
	)
}

func direction(mv *entity.Movement) string {
	switch {
	case mv.IsReversal():
		return "REVERSIÓN"
	case mv.IsEntry():
		return "ENTRADA"
	case mv.IsExit():
		return "SALIDA"
	}
	return "TRASLADO"
}

func locationName(l *entity.Location) string {
	if l == nil {
		return "-"
	}
	return nonEmpty(l.Name, l.ID)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
