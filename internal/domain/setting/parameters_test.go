package setting

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromProperties(t *testing.T) {
	t.Run("uses defaults when nothing is stored", func(t *testing.T) {
		p := FromProperties(nil)
		assert.True(t, p.MinMargin.Equal(DefaultMinMargin))
		assert.Equal(t, "Calculation", p.CustomerName)
		assert.Nil(t, p.DefaultStateID)
	})

	t.Run("reads stored values", func(t *testing.T) {
		stateID := uuid.New()
		p := FromProperties([]Property{
			{Name: PropertyCustomerName, Value: "ACME"},
			{Name: PropertyMinMargin, Value: "1.25"},
			{Name: PropertyDefaultStateID, Value: stateID.String()},
			{Name: PropertyPrintingQRCode, Value: "true"},
		})
		assert.Equal(t, "ACME", p.CustomerName)
		assert.True(t, p.MinMargin.Equal(decimal.RequireFromString("1.25")))
		require.NotNil(t, p.DefaultStateID)
		assert.Equal(t, stateID, *p.DefaultStateID)
		assert.True(t, p.PrintingQRCode)
	})

	t.Run("ignores invalid values", func(t *testing.T) {
		p := FromProperties([]Property{
			{Name: PropertyMinMargin, Value: "abc"},
			{Name: PropertyDefaultCategoryID, Value: "not-a-uuid"},
		})
		assert.True(t, p.MinMargin.Equal(DefaultMinMargin))
		assert.Nil(t, p.DefaultCategoryID)
	})
}

func TestParameters_RoundTrip(t *testing.T) {
	categoryID := uuid.New()
	p := DefaultParameters()
	p.CustomerEmail = "info@acme.com"
	p.DefaultCategoryID = &categoryID

	back := FromProperties(p.Properties())
	assert.Equal(t, "info@acme.com", back.CustomerEmail)
	require.NotNil(t, back.DefaultCategoryID)
	assert.Equal(t, categoryID, *back.DefaultCategoryID)
}

func TestParameters_Validate(t *testing.T) {
	p := DefaultParameters()
	assert.NoError(t, p.Validate())

	p.MinMargin = decimal.NewFromInt(-1)
	assert.Error(t, p.Validate())
}
