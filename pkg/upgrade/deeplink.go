package upgrade

import (
	"fmt"
	"net/url"
	"strings"
)

// PaymentDeepLink builds a WhatsApp link that opens a chat with the payment
// desk prefilled with the receipt message. It is not tracked by the workflow.
func PaymentDeepLink(phone string, s Summary) string {
	text := fmt.Sprintf("Hello, I paid %s %s for the %s plan (%s orders). Here is the receipt.",
		s.PriceDisplay, s.Currency, s.Title, s.Orders)
	digits := strings.TrimLeft(strings.TrimSpace(phone), "+")
	return "https://wa.me/" + url.PathEscape(digits) + "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}
