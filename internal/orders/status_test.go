package orders

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"shipped", StatusShipped, true},
		{"SHIPPED", StatusShipped, true},
		{" Confirmed ", StatusConfirmed, true},
		{"cancelled", StatusCancelled, true},
		{"lost", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStatus(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusDelivered, false},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestParsePaymentMethod(t *testing.T) {
	for in, want := range map[string]PaymentMethod{"cod": PaymentCOD, "COD": PaymentCOD, "Esewa": PaymentEsewa, "khalti": PaymentKhalti} {
		if got, ok := ParsePaymentMethod(in); !ok || got != want {
			t.Errorf("ParsePaymentMethod(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParsePaymentMethod("card"); ok {
		t.Error("card should be rejected")
	}
}
