package orders

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"strings"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// ParseStatus canonicalizes user input such as "shipped" or "SHIPPED".
func ParseStatus(s string) (Status, bool) {
	st := Status(cases.Title(language.Und).String(strings.TrimSpace(s)))
	if _, ok := validNext[st]; !ok {
		return "", false
	}
	return st, true
}

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "COD"
	PaymentEsewa  PaymentMethod = "esewa"
	PaymentKhalti PaymentMethod = "khalti"
)

func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	s = strings.TrimSpace(s)
	for _, m := range []PaymentMethod{PaymentCOD, PaymentEsewa, PaymentKhalti} {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return "", false
}
