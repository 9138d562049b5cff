package pipeline

import "orderledger/internal"

// AssembleRow merges pass-through raw fields with the derived ones.
func AssembleRow(raw internal.RawOrder, attrs internal.Attributes, productName string) internal.ProcessedOrder {
	return internal.ProcessedOrder{
		RawOrder:    raw,
		Manager:     attrs.Manager,
		SaleType:    attrs.SaleType,
		Upsell:      UpsellFlag(attrs.SaleType, attrs.OrderBump),
		OrderBump:   attrs.OrderBump,
		ProductName: productName,
		ResolvedQty: attrs.Quantity,
	}
}
