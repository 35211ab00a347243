package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewerID(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "strictly newer", a: "1002", b: "1001", want: true},
		{name: "equal", a: "1001", b: "1001", want: false},
		{name: "older", a: "1000", b: "1001", want: false},
		{name: "no cursor yet", a: "1", b: "", want: true},
		{name: "both empty", a: "", b: "", want: false},
		{name: "numeric beats lexicographic", a: "900", b: "1000", want: false},
		{name: "large snowflakes", a: "1158269847543345152", b: "1158269847543345151", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewerID(tt.a, tt.b))
		})
	}
}
