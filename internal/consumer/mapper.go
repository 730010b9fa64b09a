package consumer

import (
	"encoding/json"
	"errors"
	"fmt"

	"production-manager/internal/dto"
)

// snsEnvelope matches the wrapper SNS puts around a notification delivered
// to SQS. Message is kept raw because producers send it either as a
// JSON-encoded string or as an already-structured object.
type snsEnvelope struct {
	Type    string          `json:"Type"`
	Message json.RawMessage `json:"Message"`
}

// rawOrder accepts both producer versions of the order payload: newer ones
// send externalOrderId, older ones send id.
type rawOrder struct {
	ID              string          `json:"id"`
	ExternalOrderID string          `json:"externalOrderId"`
	Items           json.RawMessage `json:"items"`
}

// MapToRequest converts one raw queue message body into the canonical order
// creation request. It never panics on malformed input: anything that cannot
// be parsed down to an identifier plus items is rejected with an error, and
// the caller decides what to do with the message.
func MapToRequest(body string) (*dto.CreateProductionOrderRequest, error) {
	record := []byte(body)

	// Envelope detection is best effort: a body that does not look like an
	// SNS notification is treated as the order payload itself.
	var envelope snsEnvelope
	if err := json.Unmarshal(record, &envelope); err == nil &&
		envelope.Type == "Notification" && len(envelope.Message) > 0 {
		record = unwrapNotification(envelope.Message)
	}

	var raw rawOrder
	if err := json.Unmarshal(record, &raw); err != nil {
		return nil, fmt.Errorf("parsing order payload: %w", err)
	}

	externalOrderID := raw.ExternalOrderID
	if externalOrderID == "" {
		externalOrderID = raw.ID
	}
	if externalOrderID == "" || isEmptyJSON(raw.Items) {
		return nil, errors.New("order payload is missing externalOrderId or items")
	}

	return &dto.CreateProductionOrderRequest{
		ExternalOrderID: externalOrderID,
		Items:           raw.Items,
	}, nil
}

// unwrapNotification extracts the inner payload of an SNS notification.
// A string Message holds another JSON document; anything else is already
// the structured payload.
func unwrapNotification(message json.RawMessage) []byte {
	var inner string
	if err := json.Unmarshal(message, &inner); err == nil {
		return []byte(inner)
	}
	return message
}

func isEmptyJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
