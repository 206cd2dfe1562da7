package dto

import (
	"github.com/shopspring/decimal"

	"officina/internal/core/apperror"
	"officina/internal/core/id"
	"officina/internal/domain/orders"
)

// OrderLineRequest is one line of a new purchase order.
type OrderLineRequest struct {
	ItemID   string          `json:"itemId" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// CreateOrderRequest creates a purchase order in DRAFT.
type CreateOrderRequest struct {
	SupplierID string             `json:"supplierId" binding:"required"`
	Lines      []OrderLineRequest `json:"lines" binding:"required"`
}

// ToOrder maps the request to a domain order.
func (r CreateOrderRequest) ToOrder() (*orders.PurchaseOrder, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, apperror.NewValidation("invalid supplierId format").
			WithDetail("field", "supplierId")
	}

	o := &orders.PurchaseOrder{SupplierID: supplierID}
	for i, l := range r.Lines {
		itemID, err := id.Parse(l.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid itemId format").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		o.Lines = append(o.Lines, orders.Line{
			ItemID:          itemID,
			QuantityOrdered: l.Quantity,
		})
	}
	return o, nil
}

// ReceiptLineRequest is one line of a goods receipt.
type ReceiptLineRequest struct {
	ItemID   string          `json:"itemId" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// ReceiveOrderRequest books a full or partial goods receipt.
type ReceiveOrderRequest struct {
	Lines []ReceiptLineRequest `json:"lines" binding:"required"`
}

// ToReceipt maps the request to domain receipt lines.
func (r ReceiveOrderRequest) ToReceipt() ([]orders.ReceiptLine, error) {
	var receipt []orders.ReceiptLine
	for i, l := range r.Lines {
		itemID, err := id.Parse(l.ItemID)
		if err != nil {
			return nil, apperror.NewValidation("invalid itemId format").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		receipt = append(receipt, orders.ReceiptLine{
			ItemID:   itemID,
			Quantity: l.Quantity,
		})
	}
	return receipt, nil
}
