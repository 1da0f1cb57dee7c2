package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/brickoven/pos/internal/app/domain/order"
	"github.com/brickoven/pos/internal/app/domain/store"
)

// receiptWidth is the character width of a standard 80mm thermal printer.
const receiptWidth = 40

// Receipt is the printable payload for an order: plain text lines sized for
// a thermal printer.
type Receipt struct {
	OrderID string   `json:"order_id"`
	Number  int64    `json:"number"`
	Lines   []string `json:"lines"`
}

// Receipt renders a persisted order as printer text lines.
func (s *Service) Receipt(ctx context.Context, id string, loc store.Location) (Receipt, error) {
	ord, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return Receipt{}, err
	}

	var lines []string
	lines = append(lines, center(loc.Name))
	lines = append(lines, center(loc.Address))
	lines = append(lines, center(fmt.Sprintf("%s, %s %s", loc.City, loc.State, loc.Zip)))
	lines = append(lines, strings.Repeat("-", receiptWidth))
	lines = append(lines, fmt.Sprintf("Order #%d  %s", ord.Number, strings.ToUpper(string(ord.Type))))
	lines = append(lines, ord.CreatedAt.Format("Jan 2 2006 3:04 PM"))
	if ord.CustomerName != "" {
		lines = append(lines, "Customer: "+ord.CustomerName)
	}
	if ord.CustomerPhone != "" {
		lines = append(lines, "Phone: "+ord.CustomerPhone)
	}
	if ord.Type == order.TypeDelivery && ord.DeliveryAddress != "" {
		lines = append(lines, "Deliver to: "+ord.DeliveryAddress)
	}
	lines = append(lines, strings.Repeat("-", receiptWidth))

	for _, l := range ord.Lines {
		lines = append(lines, priceLine(fmt.Sprintf("%dx %s", l.Quantity, l.Name), l.LineTotalCents()))
		for _, m := range l.Modifiers {
			if m.PriceDeltaCents != 0 {
				lines = append(lines, priceLine("  + "+m.Name, m.PriceDeltaCents*int64(l.Quantity)))
			} else {
				lines = append(lines, "  + "+m.Name)
			}
		}
	}

	lines = append(lines, strings.Repeat("-", receiptWidth))
	lines = append(lines, priceLine("Subtotal", ord.SubtotalCents))
	lines = append(lines, priceLine("Tax", ord.TaxCents))
	if ord.DeliveryFeeCents > 0 {
		lines = append(lines, priceLine("Delivery", ord.DeliveryFeeCents))
	}
	lines = append(lines, priceLine("TOTAL", ord.TotalCents))
	lines = append(lines, "")
	lines = append(lines, center("Thank you!"))

	return Receipt{OrderID: ord.ID, Number: ord.Number, Lines: lines}, nil
}

// priceLine right-aligns a dollar amount against the label.
func priceLine(label string, cents int64) string {
	amount := fmt.Sprintf("$%d.%02d", cents/100, abs(cents%100))
	pad := receiptWidth - len(label) - len(amount)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + amount
}

func center(text string) string {
	if len(text) >= receiptWidth {
		return text
	}
	return strings.Repeat(" ", (receiptWidth-len(text))/2) + text
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
