package models_test

import (
	"encoding/json"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    models.Stock
		wantErr bool
	}{
		{"Numeric string", `"12"`, 12, false},
		{"Plain number", `7`, 7, false},
		{"Whole float", `5.0`, 5, false},
		{"Padded string", `" 3 "`, 3, false},
		{"Empty string", `""`, 0, false},
		{"Null", `null`, 0, false},
		{"Fraction", `2.5`, 0, true},
		{"Garbage", `"lots"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s models.Stock
			err := json.Unmarshal([]byte(tt.input), &s)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestStockMarshalsAsString(t *testing.T) {
	data, err := json.Marshal(models.Product{Name: "Pen", Price: 1.5, Quantity: 4})

	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Pen","category":"","price":1.5,"quantity":"4"}`, string(data))
}

func TestProductFromService(t *testing.T) {
	// The reference service returns quantity as a number and no id.
	var products []models.Product
	err := json.Unmarshal([]byte(`[{"name":"Lamp","category":"Home","price":20.5,"quantity":3}]`), &products)

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, models.Stock(3), products[0].Quantity)
	assert.Equal(t, "Lamp", products[0].Key(), "name stands in for a missing id")

	products[0].ID = "p-1"
	assert.Equal(t, "p-1", products[0].Key())
}

func TestCartLineHelpers(t *testing.T) {
	line := models.CartLine{Name: "Mug", Price: 4.25, Quantity: 4}

	assert.Equal(t, 17.0, line.Subtotal())
	assert.Equal(t, "Mug", line.Key())
}

func TestErrorBodyText(t *testing.T) {
	assert.Equal(t, "Invalid credentials", models.ErrorBody{Message: "Invalid credentials"}.Text())
	assert.Equal(t, "Missing Authorization Header", models.ErrorBody{Msg: "Missing Authorization Header"}.Text())
	assert.Empty(t, models.ErrorBody{}.Text())
}

func TestSessionIsAdministrator(t *testing.T) {
	var none *models.Session

	assert.False(t, none.IsAdministrator())
	assert.False(t, (&models.Session{Token: "t", Role: models.RoleCustomer}).IsAdministrator())
	assert.True(t, (&models.Session{Token: "t", Role: models.RoleAdministrator}).IsAdministrator())
}
