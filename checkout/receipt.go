package checkout

import (
	"fmt"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	models "cartcraft/model"
)

var (
	darkGray   = color.Color{Red: 38, Green: 38, Blue: 34}
	mediumGray = color.Color{Red: 121, Green: 119, Blue: 109}
)

// Receipt renders order as a one-page PDF.
// Amounts are printed as "Rs." since the built-in PDF fonts have no rupee glyph.
func Receipt(order models.Order) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 20, 20)

	m.Row(15, func() {
		m.Col(12, func() {
			m.Text("CARTCRAFT RECEIPT", props.Text{Size: 20, Style: consts.Bold, Color: darkGray})
		})
	})
	m.Row(6, func() {
		m.Col(6, func() {
			m.Text("Order "+order.ID, props.Text{Size: 9, Color: mediumGray})
		})
		m.Col(6, func() {
			m.Text(order.CreatedAt.Format("Jan 02, 2006 15:04"), props.Text{Size: 9, Color: mediumGray, Align: consts.Right})
		})
	})
	m.Row(8, func() {})

	header := func(text string, size uint, align consts.Align) {
		m.Col(size, func() {
			m.Text(text, props.Text{Size: 8, Style: consts.Bold, Color: darkGray, Align: align})
		})
	}
	m.Row(6, func() {
		header("Item", 6, consts.Left)
		header("Qty", 2, consts.Right)
		header("Price", 2, consts.Right)
		header("Total", 2, consts.Right)
	})

	for _, line := range order.Items {
		m.Row(6, func() {
			m.Col(6, func() {
				m.Text(line.Name, props.Text{Size: 9, Color: darkGray})
			})
			m.Col(2, func() {
				m.Text(fmt.Sprintf("%d", line.Quantity), props.Text{Size: 9, Color: darkGray, Align: consts.Right})
			})
			m.Col(2, func() {
				m.Text(rupees(line.Price), props.Text{Size: 9, Color: darkGray, Align: consts.Right})
			})
			m.Col(2, func() {
				m.Text(rupees(line.Subtotal()), props.Text{Size: 9, Color: darkGray, Align: consts.Right})
			})
		})
	}
	m.Row(8, func() {})

	summaryRow := func(label, value string, size float64, style consts.Style) {
		m.Row(6, func() {
			m.Col(8, func() {})
			m.Col(2, func() {
				m.Text(label, props.Text{Size: size, Style: style, Color: mediumGray, Align: consts.Right})
			})
			m.Col(2, func() {
				m.Text(value, props.Text{Size: size, Style: style, Color: darkGray, Align: consts.Right})
			})
		})
	}
	s := order.Summary
	summaryRow("Subtotal", rupees(s.Subtotal), 9, consts.Normal)
	if s.Shipping == 0 {
		summaryRow("Shipping", "FREE", 9, consts.Normal)
	} else {
		summaryRow("Shipping", rupees(s.Shipping), 9, consts.Normal)
	}
	if s.Discount > 0 {
		summaryRow("Discount ("+s.Coupon+")", "-"+rupees(s.Discount), 9, consts.Normal)
	}
	summaryRow("Total", rupees(s.Total), 12, consts.Bold)

	m.Row(12, func() {})
	m.Row(5, func() {
		m.Col(12, func() {
			m.Text("Thank you for shopping with CartCraft!", props.Text{Size: 8, Style: consts.Bold, Color: darkGray})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func rupees(amount int64) string {
	return fmt.Sprintf("Rs. %d", amount)
}
