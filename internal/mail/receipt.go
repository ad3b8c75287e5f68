package mail

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/olegiv/vsales/internal/model"
)

// ReceiptSubject is the subject line and heading of every receipt.
const ReceiptSubject = "Online Vehicle Purchase Receipt"

// Receipt describes a completed purchase.
type Receipt struct {
	To         string
	Customer   string
	Vehicle    string
	Price      int64
	Date       time.Time
	Reference  string
	PickupCode int // model.NoPickupCode for delivery
}

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatPrice renders whole dollars with thousands separators, e.g. "$12,345".
func FormatPrice(dollars int64) string {
	return printer.Sprintf("$%d", dollars)
}

// ComposeReceipt renders a plain-text receipt. The pick-up code gets its
// own line and is omitted for delivered purchases.
func ComposeReceipt(r Receipt) Message {
	var b strings.Builder
	b.WriteString(ReceiptSubject + "\n\n")
	fmt.Fprintf(&b, "Customer: %s\n", r.Customer)
	fmt.Fprintf(&b, "Vehicle: %s\n", r.Vehicle)
	fmt.Fprintf(&b, "Price: %s\n", FormatPrice(r.Price))
	fmt.Fprintf(&b, "Date: %s\n", r.Date.Format("2006-01-02"))
	if r.Reference != "" {
		fmt.Fprintf(&b, "Reference: %s\n", r.Reference)
	}
	if r.PickupCode != model.NoPickupCode {
		fmt.Fprintf(&b, "Pick-up code: %d\n", r.PickupCode)
	} else {
		b.WriteString("Delivery: to your address on file\n")
	}
	b.WriteString("\nThank you for your purchase.\n")

	return Message{
		To:      r.To,
		Subject: ReceiptSubject,
		Body:    b.String(),
	}
}
