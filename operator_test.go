package pager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Operator_SeekDirection(t *testing.T) {
	tests := []struct {
		in    Operator
		valid bool
		want  Direction
	}{
		{OperatorGT, true, DirectionASC},
		{OperatorLT, true, DirectionDESC},
		{OperatorEQ, false, ""},
		{"$ne", false, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.in.Valid())

			got, ok := tt.in.SeekDirection()
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
