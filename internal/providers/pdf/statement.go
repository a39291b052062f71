package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	settingsdomain "github.com/smallbiznis/dairypro/internal/settings/domain"
	settlementdomain "github.com/smallbiznis/dairypro/internal/settlement/domain"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateStatement(ctx context.Context, company settingsdomain.CompanySettings, statement settlementdomain.Statement) (io.Reader, error) {
	_ = ctx

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	companyName := company.CompanyName
	if companyName == "" {
		companyName = "DairyPro"
	}

	m.AddRow(10,
		text.NewCol(12, companyName, props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(12,
		col.New(12).Add(
			text.New(company.Address, props.Text{Size: 9}),
			text.New(company.Phone, props.Text{Size: 9, Top: 4}),
		),
	)

	m.AddRow(10,
		text.NewCol(12, "Milk Settlement Statement", props.Text{
			Size:  13,
			Style: fontstyle.Bold,
		}),
	)

	m.AddRow(18,
		col.New(6).Add(
			text.New("Farmer: "+statement.Farmer.Name, props.Text{Top: 0}),
			text.New("Code: "+statement.Farmer.Code, props.Text{Top: 4}),
			text.New("Rate type: "+string(statement.Farmer.RateType), props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New("Period from: "+statement.PeriodStart.Format("2006-01-02"), props.Text{Top: 0}),
			text.New("Period to: "+statement.PeriodEnd.Format("2006-01-02"), props.Text{Top: 4}),
		),
	)

	m.AddRow(8,
		text.NewCol(3, "Date", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Shift", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty (L)", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Fat %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "SNF %", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(1, "", props.Text{Size: 9}),
	)

	for _, tx := range statement.Transactions {
		note := ""
		if tx.Backfilled {
			note = "*"
		}
		m.AddRow(7,
			text.NewCol(3, tx.Date.Format("2006-01-02"), props.Text{Size: 9}),
			text.NewCol(2, tx.Shift, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%.2f", tx.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", tx.EffectiveFat), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.2f", tx.EffectiveSnf), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(1, note, props.Text{Size: 9}),
		)
	}

	if hasBackfilled(statement.Transactions) {
		m.AddRow(6,
			text.NewCol(12, "* quality carried forward from the previous measured collection", props.Text{Size: 7}),
		)
	}

	summary := statement.Summary
	m.AddRow(8, col.New(12))
	addSummaryRow(m.AddRow, "Total quantity (L)", fmt.Sprintf("%.2f", summary.TotalQuantity), false)
	addSummaryRow(m.AddRow, "Average fat %", fmt.Sprintf("%.2f", summary.AvgFat), false)
	addSummaryRow(m.AddRow, "Average SNF %", fmt.Sprintf("%.2f", summary.AvgSnf), false)
	addSummaryRow(m.AddRow, "Applied rate", fmt.Sprintf("%.4f", summary.AppliedRate), false)
	addSummaryRow(m.AddRow, "Gross amount", fmt.Sprintf("%.2f", summary.GrossAmount), false)
	addSummaryRow(m.AddRow, "Advances deducted", fmt.Sprintf("%.2f", summary.AdvanceDeducted), false)
	addSummaryRow(m.AddRow, "Net payable", fmt.Sprintf("%.2f", summary.NetPayable), true)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

type rowAdder func(height float64, cols ...core.Col) core.Row

func addSummaryRow(addRow rowAdder, label, value string, bold bool) {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	addRow(7,
		col.New(6),
		text.NewCol(4, label, props.Text{Size: 9, Style: style}),
		text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
	)
}

func hasBackfilled(transactions []settlementdomain.Transaction) bool {
	for _, tx := range transactions {
		if tx.Backfilled {
			return true
		}
	}
	return false
}
