package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	sp, err := Get("SP500")
	require.NoError(t, err)
	assert.Len(t, sp, 20)
	assert.Contains(t, sp, "BRK.B")

	nq, err := Get("nasdaq100")
	require.NoError(t, err)
	assert.Len(t, nq, 15)

	def, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA", "GME", "AMC", "MSFT", "NVDA", "GOOGL", "AMD", "PLTR", "COIN"}, def)

	_, err = Get("ftse")
	assert.ErrorIs(t, err, ErrUnknownUniverse)
}

func TestGet_ReturnsCopy(t *testing.T) {
	a, _ := Get("test")
	a[0] = "ZZZZ"
	b, _ := Get("test")
	assert.Equal(t, "AAPL", b[0])
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"nasdaq100", "sp500", "test"}, Names())
	assert.Equal(t, 10, Sizes()["test"])
}

func TestResolve(t *testing.T) {
	tests := []struct {
		arg  string
		want []string
	}{
		{"gme, amc,GME", []string{"GME", "AMC"}},
		{"pltr", []string{"PLTR"}},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.arg)
		require.NoError(t, err, tt.arg)
		assert.Equal(t, tt.want, got, tt.arg)
	}

	got, err := Resolve("nasdaq100")
	require.NoError(t, err)
	assert.Len(t, got, 15)

	_, err = Resolve(" , ")
	assert.ErrorIs(t, err, ErrUnknownUniverse)
}
