package graph

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewID())
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"Person", true},
		{"_internal", true},
		{"KNOWS_2", true},
		{"", false},
		{"2fast", false},
		{"has space", false},
		{"x`) DETACH DELETE n //", false},
		{"a-b", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateIdentifier("label", tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidIdentifier)
			}
		})
	}
}

func TestValidateLabels_Dedup(t *testing.T) {
	labels, err := ValidateLabels([]string{"Person", "Employee", "Person"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Person", "Employee"}, labels)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, DirectionBoth, d)

	d, err = ParseDirection("incoming")
	require.NoError(t, err)
	assert.Equal(t, DirectionIncoming, d)

	_, err = ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestDirection_Matches(t *testing.T) {
	e := &Edge{StartNode: NodeRef{ID: "a"}, EndNode: NodeRef{ID: "b"}}

	assert.True(t, DirectionOutgoing.Matches(e, "a"))
	assert.False(t, DirectionIncoming.Matches(e, "a"))
	assert.True(t, DirectionIncoming.Matches(e, "b"))
	assert.True(t, DirectionBoth.Matches(e, "b"))
	assert.False(t, DirectionBoth.Matches(e, "c"))
}

func TestPage_Apply(t *testing.T) {
	tests := []struct {
		name       string
		page       Page
		n          int
		start, end int
	}{
		{"first page", Page{Limit: 2, Skip: 0}, 5, 0, 2},
		{"middle", Page{Limit: 2, Skip: 2}, 5, 2, 4},
		{"tail", Page{Limit: 10, Skip: 3}, 5, 3, 5},
		{"skip past end", Page{Limit: 10, Skip: 9}, 5, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.page.Apply(tt.n)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestNode_DisplayName(t *testing.T) {
	n := &Node{ID: "0123456789abcdef", Properties: Properties{}}
	assert.Equal(t, "node 01234567", n.DisplayName())

	n.Properties["name"] = "Alice"
	assert.Equal(t, "Alice", n.DisplayName())
}
