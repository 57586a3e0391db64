package number

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestCeil(t *testing.T) {
	data := map[string]string{
		"0.10304":     "0.11",
		"0.100000001": "0.11",
		"0.108":       "0.11",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			c := Ceil(Decimal(k), 2)
			assert.Equal(t, v, c.String(), "should be ceil")
		})
	}
}

func TestDiv(t *testing.T) {
	assert.Equal(t, "0.333333333333333333", Div(Decimal("1"), Decimal("3")).String())
	assert.Equal(t, "0.333333333333333334", DivCeil(Decimal("1"), Decimal("3")).String())
	assert.Equal(t, "0.25", DivCeil(Decimal("0.5"), Decimal("2")).String())
	assert.Equal(t, "0", Div(Decimal("1"), Decimal("0")).String())
}

func TestMulDiv(t *testing.T) {
	data := []struct {
		a, b, c string
		want    string
	}{
		{"0.8", "60", "100", "0.48"},
		{"1", "2", "3", "0.666666666666666666"},
		{"100", "60", "100", "60"},
	}

	for _, d := range data {
		t.Run(d.want, func(t *testing.T) {
			got := MulDiv(Decimal(d.a), Decimal(d.b), Decimal(d.c))
			assert.Equal(t, d.want, got.String())
		})
	}
}

func TestFloor(t *testing.T) {
	assert.Equal(t, "1.000000000000000001", Floor(Decimal("1.0000000000000000019")).String())
}
