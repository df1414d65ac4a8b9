package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractFeeDerivation(t *testing.T) {
	monthly := 100.0
	c := &Contract{MonthlyFee: &monthly}

	require.NotNil(t, c.FeeAnnual())
	assert.Equal(t, 1200.0, *c.FeeAnnual())
	assert.Equal(t, 100.0, *c.FeeMonthly())

	annual := 2400.0
	c = &Contract{AnnualFee: &annual}
	require.NotNil(t, c.FeeMonthly())
	assert.Equal(t, 200.0, *c.FeeMonthly())
	assert.Equal(t, 2400.0, *c.FeeAnnual())

	c = &Contract{}
	assert.Nil(t, c.FeeMonthly())
	assert.Nil(t, c.FeeAnnual())
}
