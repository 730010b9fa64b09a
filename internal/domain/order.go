package domain

import (
	"encoding/json"
	"time"
)

// ProductionOrder is one order accepted into the production workflow.
// ExternalOrderID is the upstream identifier and the dedup key: there is
// exactly one row per distinct value, enforced by a unique index plus the
// idempotent receive path in the production service.
type ProductionOrder struct {
	ID              string          `json:"id"`
	ExternalOrderID string          `json:"externalOrderId"`
	Items           json.RawMessage `json:"items"`
	Status          Status          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
