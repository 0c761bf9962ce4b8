package mysql

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		term string
		want string
	}{
		{"Orwell", "%orwell%"},
		{"100%", "%100!%%"},
		{"a_b", "%a!_b%"},
		{"hi!", "%hi!!%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPattern(tt.term), tt.term)
	}
}

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, isDuplicateError(nil))
	assert.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateError(errors.New("Error 1062: Duplicate entry 'a' for key 'email'")))
	assert.False(t, isDuplicateError(errors.New("connection refused")))
}

func TestValidID(t *testing.T) {
	assert.True(t, validID("6f1c1a4e-8a57-4c6b-9d55-1f1e0b0f9a11"))
	assert.False(t, validID("42"))
	assert.False(t, validID(""))
}
