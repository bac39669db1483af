package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Total(t *testing.T) {
	testCases := []struct {
		name     string
		items    []*Product
		expected int64
	}{
		{name: "empty", items: nil, expected: 0},
		{name: "priced", items: []*Product{{ID: "a", Price: Price(750)}, {ID: "b", Price: Price(1450)}}, expected: 2200},
		{name: "priceless counts as zero", items: []*Product{{ID: "a", Price: Price(750)}, {ID: "b"}}, expected: 750},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Total(tc.items))
		})
	}
}

func Test_IDs(t *testing.T) {
	assert.Equal(t, []string{}, IDs(nil))
	assert.Equal(t, []string{"a", "b"}, IDs([]*Product{{ID: "a"}, {ID: "b"}}))
}

func Test_ParsePaymentMethod(t *testing.T) {
	testCases := []struct {
		input    string
		expected PaymentMethod
		ok       bool
	}{
		{input: "online", expected: PaymentOnline, ok: true},
		{input: "card", expected: PaymentOnline, ok: true},
		{input: " Cash ", expected: PaymentCash, ok: true},
		{input: "crypto", expected: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := ParsePaymentMethod(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func Test_Product_PricelessJSON(t *testing.T) {
	// given
	raw := `{"id":"1","title":"Мамка-таймер","category":"софт-скил","image":"/a.svg","description":"d","price":null}`

	// when
	var p Product
	err := json.Unmarshal([]byte(raw), &p)

	// then
	require.NoError(t, err)
	assert.False(t, p.HasPrice())
	assert.Equal(t, int64(0), p.PriceValue())
}

func Test_NewOrder(t *testing.T) {
	o := NewOrder()
	assert.Equal(t, PaymentOnline, o.Payment)
	assert.Empty(t, o.Items)
	assert.NotNil(t, o.Items)
	assert.Zero(t, o.Total)
}
