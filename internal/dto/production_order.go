package dto

import "encoding/json"

// CreateProductionOrderRequest is the canonical order creation payload,
// produced by the HTTP surface and by the queue message mapper. Items are
// kept opaque; the workflow never looks inside them.
type CreateProductionOrderRequest struct {
	ExternalOrderID string          `json:"externalOrderId"`
	Items           json.RawMessage `json:"items"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}
