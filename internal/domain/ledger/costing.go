package ledger

import (
	"stocktrack/internal/core/types"
)

// BlendCost computes the new weighted-average unit cost after receiving
// incomingQty units at incomingUnitPrice into a position already holding
// existingQty units at existingAvgCost.
//
// If the combined quantity is zero the existing average cost is returned
// unchanged (no division by zero). Callers apply this only when an inbound
// unit price is known and the incoming quantity is strictly positive.
func BlendCost(existingQty types.Quantity, existingAvgCost types.Money, incomingQty types.Quantity, incomingUnitPrice types.Money) types.Money {
	total := existingQty + incomingQty
	if total == 0 {
		return existingAvgCost
	}

	existingValue := existingAvgCost.Mul(existingQty.Decimal())
	incomingValue := incomingUnitPrice.Mul(incomingQty.Decimal())

	return existingValue.Add(incomingValue).Div(total.Decimal())
}
