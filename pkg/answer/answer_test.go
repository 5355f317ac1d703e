package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name       string
		stored     string
		submitted  string
		shouldPass bool
	}{
		{
			name:       "Exact match",
			stored:     "Eiffel Tower",
			submitted:  "Eiffel Tower",
			shouldPass: true,
		},
		{
			name:       "Case insensitive",
			stored:     "Paris",
			submitted:  "paris",
			shouldPass: true,
		},
		{
			name:       "Upper case",
			stored:     "Eiffel Tower",
			submitted:  "EIFFEL TOWER",
			shouldPass: true,
		},
		{
			name:       "Surrounding whitespace",
			stored:     "Paris",
			submitted:  "  Paris \n",
			shouldPass: true,
		},
		{
			name:       "Wrong answer",
			stored:     "Paris",
			submitted:  "London",
			shouldPass: false,
		},
		{
			name:       "Inner whitespace is significant",
			stored:     "Eiffel Tower",
			submitted:  "EiffelTower",
			shouldPass: false,
		},
		{
			name:       "Empty submission",
			stored:     "Paris",
			submitted:  "",
			shouldPass: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commitment := Commitment(tt.stored)
			assert.Equal(t, tt.shouldPass, Verify(tt.submitted, commitment))
		})
	}
}

func TestVerify_EmptyCommitment(t *testing.T) {
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("", ""))
}

func TestCommitment_Deterministic(t *testing.T) {
	assert.Equal(t, Commitment("Paris"), Commitment(" paris "))
	assert.NotEqual(t, Commitment("Paris"), Commitment("London"))
	assert.Len(t, Commitment("Paris"), 64)
}
