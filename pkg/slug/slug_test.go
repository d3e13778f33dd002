package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Sukuma Wiki":             "sukuma-wiki",
		"  Hass Avocado  ":        "hass-avocado",
		"Café Arabica (Grade AA)": "cafe-arabica-grade-aa",
		"Maize/Corn Seeds!!":      "maize-corn-seeds",
		"":                        "",
		"***":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Make(in), "input %q", in)
	}
}

func TestMakeMax(t *testing.T) {
	assert.Equal(t, "dap-fertilizer", MakeMax("DAP Fertilizer 50kg Bag", 18))
	assert.Equal(t, "dap", MakeMax("DAP Fertilizer", 5))
	assert.Equal(t, "dap-fertilizer", MakeMax("DAP Fertilizer", 0))
	assert.Equal(t, "abcdef", MakeMax("abcdefghij", 6))
}
