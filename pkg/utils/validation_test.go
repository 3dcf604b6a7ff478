package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	StartNodeID string   `json:"startNodeId" validate:"required"`
	Type        string   `json:"type" validate:"required,identifier"`
	Labels      []string `json:"labels" validate:"omitempty,dive,identifier"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("Should accept a valid request", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{StartNodeID: "a", Type: "KNOWS", Labels: []string{"Person"}})
		assert.NoError(t, err)
	})

	t.Run("Should report every failing field", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{Type: "bad type"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "startNodeId is required")
		assert.Contains(t, err.Error(), "type must be an identifier")
	})

	t.Run("Should validate each label", func(t *testing.T) {
		err := ValidateStruct(sampleRequest{StartNodeID: "a", Type: "KNOWS", Labels: []string{"ok", "1bad"}})
		assert.Error(t, err)
	})
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("direction", "incoming", "direction"))
	err := ValidateVar("direction", "up", "direction")
	assert.EqualError(t, err, "direction must be one of incoming, outgoing, both")
}
