package consumer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToRequest_CanonicalPayload(t *testing.T) {
	body := `{"externalOrderId": "ORDER-123", "items": [{"name": "Burger", "quantity": 1}]}`

	req, err := MapToRequest(body)

	require.NoError(t, err)
	assert.Equal(t, "ORDER-123", req.ExternalOrderID)
	assert.JSONEq(t, `[{"name": "Burger", "quantity": 1}]`, string(req.Items))
}

func TestMapToRequest_LegacyIDKey(t *testing.T) {
	body := `{"id": "ORDER-456", "items": [{"name": "Fries", "quantity": 2}]}`

	req, err := MapToRequest(body)

	require.NoError(t, err)
	assert.Equal(t, "ORDER-456", req.ExternalOrderID)
}

func TestMapToRequest_PrefersExternalOrderID(t *testing.T) {
	body := `{"id": "legacy", "externalOrderId": "ORDER-789", "items": [{"name": "Soda", "quantity": 1}]}`

	req, err := MapToRequest(body)

	require.NoError(t, err)
	assert.Equal(t, "ORDER-789", req.ExternalOrderID)
}

func TestMapToRequest_SNSEnvelopeWithStringMessage(t *testing.T) {
	inner := `{"id": "ORDER-123", "items": [{"name": "Burger", "quantity": 1}]}`
	envelope, err := json.Marshal(map[string]any{
		"Type":    "Notification",
		"Message": inner,
	})
	require.NoError(t, err)

	req, err := MapToRequest(string(envelope))

	require.NoError(t, err)
	assert.Equal(t, "ORDER-123", req.ExternalOrderID)
	assert.JSONEq(t, `[{"name": "Burger", "quantity": 1}]`, string(req.Items))
}

func TestMapToRequest_SNSEnvelopeWithObjectMessage(t *testing.T) {
	body := `{"Type": "Notification", "Message": {"id": "ORDER-123", "items": [{"name": "Burger", "quantity": 1}]}}`

	req, err := MapToRequest(body)

	require.NoError(t, err)
	assert.Equal(t, "ORDER-123", req.ExternalOrderID)
	assert.JSONEq(t, `[{"name": "Burger", "quantity": 1}]`, string(req.Items))
}

func TestMapToRequest_NotJSON(t *testing.T) {
	req, err := MapToRequest("not json")

	assert.Error(t, err)
	assert.Nil(t, req)
}

func TestMapToRequest_SNSEnvelopeWithMalformedInnerMessage(t *testing.T) {
	envelope, err := json.Marshal(map[string]any{
		"Type":    "Notification",
		"Message": "{not valid json",
	})
	require.NoError(t, err)

	req, err := MapToRequest(string(envelope))

	assert.Error(t, err)
	assert.Nil(t, req)
}

func TestMapToRequest_MissingIdentifier(t *testing.T) {
	req, err := MapToRequest(`{"items": [{"name": "Burger", "quantity": 1}]}`)

	assert.Error(t, err)
	assert.Nil(t, req)
}

func TestMapToRequest_MissingItems(t *testing.T) {
	req, err := MapToRequest(`{"externalOrderId": "ORDER-123"}`)

	assert.Error(t, err)
	assert.Nil(t, req)
}

func TestMapToRequest_Deterministic(t *testing.T) {
	body := `{"externalOrderId": "ORDER-123", "items": [{"name": "Burger", "quantity": 1}]}`

	first, err := MapToRequest(body)
	require.NoError(t, err)
	second, err := MapToRequest(body)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
