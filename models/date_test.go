package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2024-03-06", "2024-03-06"},
		{" 2024-03-06 ", "2024-03-06"},
		// stored by the old order form: midnight UTC, must not shift a day
		{"2024-03-06T00:00:00.000Z", "2024-03-06"},
		{"2024-03-06T23:30:00-05:00", "2024-03-06"},
		{"2024-03-06 10:00:00", "2024-03-06"},
		{"03-06-24", "2024-03-06"},
		{"3/6/2024", "2024-03-06"},
		{"06.03.2024", "2024-03-06"},
		{"45357", "2024-03-06"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.String())
		})
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, s := range []string{"yesterday", "2024-13-40", "-3"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestDateJSON(t *testing.T) {
	var v struct {
		A Date `json:"a"`
		B Date `json:"b"`
		C Date `json:"c"`
	}
	err := json.Unmarshal([]byte(`{"a":"2024-01-31","b":{"seconds":1709683200,"nanoseconds":0},"c":null}`), &v)
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 31), v.A)
	assert.Equal(t, "2024-03-06", v.B.String())
	assert.True(t, v.C.IsZero())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2024-01-31","b":"2024-03-06","c":null}`, string(out))
}

func TestDaysUntil(t *testing.T) {
	from := NewDate(2024, time.February, 27)
	assert.Equal(t, 3, from.DaysUntil(NewDate(2024, time.March, 1)))
	assert.Equal(t, 0, from.DaysUntil(from))
}

func TestOrderInputValidate(t *testing.T) {
	in := OrderInput{
		CustomerID: "c1",
		Date:       NewDate(2024, time.March, 6),
		Items:      []LineItemInput{{ProductID: "p1", Quantity: 1}},
	}
	assert.Empty(t, in.Validate())
	assert.Equal(t, PriceRetail, in.Items[0].PriceType)

	in.Items[0].PriceType = "bulk"
	assert.Equal(t, "priceType must be one of: retail, wholesale", in.Validate())

	in.Items = nil
	assert.Equal(t, "order must have at least one item", in.Validate())
}
