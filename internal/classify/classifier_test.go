package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() []Rule {
	return []Rule{
		{
			Name:     "invoice_keywords",
			ClassID:  "invoice",
			Keywords: []string{"invoice", "amount due", "vat"},
			Patterns: []string{`INV-\d+`},
		},
		{
			Name:     "payslip_keywords",
			ClassID:  "payslip",
			Keywords: []string{"gross pay", "net pay", "employee"},
			Weight:   1.2,
		},
	}
}

func TestNewClassifier(t *testing.T) {
	c, err := NewClassifier(testRules(), 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.RuleCount())
	assert.Equal(t, DefaultMinConfidence, c.minConfidence)

	_, err = NewClassifier([]Rule{{Name: "broken", ClassID: "x", Patterns: []string{"("}}}, 0, nil)
	assert.Error(t, err)

	_, err = NewClassifier([]Rule{{Name: "orphan"}}, 0, nil)
	assert.Error(t, err)
}

func TestClassifier_Classify(t *testing.T) {
	c, err := NewClassifier(testRules(), 0.3, nil)
	require.NoError(t, err)

	tests := []struct {
		name      string
		text      string
		wantClass string
	}{
		{
			name:      "invoice",
			text:      "INVOICE INV-2024-001\nAmount due: 100 EUR\nVAT 19%",
			wantClass: "invoice",
		},
		{
			name:      "payslip",
			text:      "Employee: Jane Doe\nGross pay 4000\nNet pay 2800",
			wantClass: "payslip",
		},
		{
			name:      "weak evidence",
			text:      "Dear employee, welcome aboard.",
			wantClass: "",
		},
		{
			name:      "nothing",
			text:      "",
			wantClass: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			if tt.wantClass == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantClass, got.ClassID)
			assert.NotEmpty(t, got.Reasons)
			assert.LessOrEqual(t, got.Confidence, 1.0)
		})
	}
}

func TestClassifier_Alternatives(t *testing.T) {
	c, err := NewClassifier(testRules(), 0.1, nil)
	require.NoError(t, err)

	got, err := c.Classify(context.Background(), "invoice for employee, invoice INV-7, VAT")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "invoice", got.ClassID)
	assert.InDelta(t, 0.12, got.Alternatives["payslip"], 1e-9)
}

func TestClassifier_ContextCancelled(t *testing.T) {
	c, err := NewClassifier(testRules(), 0, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Classify(ctx, "invoice")
	assert.ErrorIs(t, err, context.Canceled)
}
