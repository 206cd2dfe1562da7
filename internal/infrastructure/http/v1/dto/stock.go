package dto

import (
	"github.com/shopspring/decimal"
)

// OpenStockRequest opens the stock balance for an item.
type OpenStockRequest struct {
	Initial decimal.Decimal `json:"initial"`
}

// AdjustStockRequest applies a manual stock correction.
type AdjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta" binding:"required"`
	Reason string          `json:"reason" binding:"required"`
}
