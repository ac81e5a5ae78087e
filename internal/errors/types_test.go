package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReviewError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ReviewError
		want string
	}{
		{
			name: "message only",
			err:  New(ErrorTypeNotFound, "session not found"),
			want: "[NOT_FOUND] session not found",
		},
		{
			name: "document and field",
			err:  New(ErrorTypeValidation, "required field is empty").WithDocument("doc1").WithField("total"),
			want: "[VALIDATION] required field is empty (document doc1, field total)",
		},
		{
			name: "context and cause",
			err:  Wrap(ErrorTypeLoad, "cannot read manifest", fmt.Errorf("boom")).WithContext("batch.yaml"),
			want: "[LOAD] cannot read manifest: batch.yaml: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestReviewError_IsAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := fmt.Errorf("completing task: %w", Wrap(ErrorTypeExport, "cannot write result", cause))

	assert.True(t, stderrors.Is(err, ErrExport))
	assert.False(t, stderrors.Is(err, ErrNotFound))
	assert.True(t, stderrors.Is(err, cause))

	var re *ReviewError
	assert.True(t, stderrors.As(err, &re))
	assert.Equal(t, ErrorTypeExport, re.Type)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, TypeOf(fmt.Errorf("x: %w", ErrNotFound)))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
	assert.Equal(t, "UNKNOWN", ErrorType(99).String())
}
