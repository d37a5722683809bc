package comanda

import (
	"fmt"
	"math"
)

// DefaultServiceFeeRate is the standard service charge applied on top of the
// raw total, overridable through the billing.service_fee config key.
const DefaultServiceFeeRate = 0.10

// round2 keeps money at cent precision after every arithmetic step.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Bill is the computed closing amount for a set of line items.
type Bill struct {
	RawTotal   float64 `json:"raw_total"`
	ServiceFee float64 `json:"service_fee"`
	FinalTotal float64 `json:"final_total"`
}

// RawTotal sums price x quantity over the non-cancelled items.
func RawTotal(items []*LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return round2(total)
}

// ComputeBill builds the bill for the given items at the given fee rate.
// Cancelled items contribute nothing.
func ComputeBill(items []*LineItem, feeRate float64) Bill {
	raw := RawTotal(items)
	fee := round2(raw * feeRate)
	return Bill{
		RawTotal:   raw,
		ServiceFee: fee,
		FinalTotal: round2(raw + fee),
	}
}

// PerPerson splits the final total evenly across people.
func (b Bill) PerPerson(people int) (float64, error) {
	if people < 1 {
		return 0, fmt.Errorf("people must be at least 1, got %d", people)
	}
	return round2(b.FinalTotal / float64(people)), nil
}

// CashChange computes the change for a cash payment. A tender below the
// amount due fails with ErrInsufficientPayment unless allowShort is set,
// which records the shortfall as negative change for accounting.
func CashChange(amountDue, amountTendered float64, allowShort bool) (float64, error) {
	change := round2(amountTendered - amountDue)
	if change < 0 && !allowShort {
		return 0, ErrInsufficientPayment
	}
	return change, nil
}
