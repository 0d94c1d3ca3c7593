package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "plain number", input: "15000", want: 15000},
		{name: "thousands separators", input: "15.000", want: 15000},
		{name: "currency prefix", input: "Rp 20.000", want: 20000},
		{name: "empty", input: "", want: 0},
		{name: "non numeric", input: "abc", want: 0},
		{name: "zero", input: "0", want: 0},
		{name: "mixed garbage", input: "1a2b3", want: 123},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseAmount(tc.input))
		})
	}
}
