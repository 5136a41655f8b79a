package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{in: "#ff0000", want: RGB{Red: 1}},
		{in: "00FF00", want: RGB{Green: 1}},
		{in: "#00f", want: RGB{Blue: 1}},
		{in: " #ffffff ", want: RGB{Red: 1, Green: 1, Blue: 1}},
		{in: "#000000", want: RGB{}},
		{in: "#12345", wantErr: true},
		{in: "#gg0000", wantErr: true},
		{in: "red", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHex_Midtones(t *testing.T) {
	got, err := ParseHex("#808080")
	require.NoError(t, err)
	assert.InDelta(t, 128.0/255, got.Red, 1e-9)
	assert.InDelta(t, 128.0/255, got.Green, 1e-9)
	assert.InDelta(t, 128.0/255, got.Blue, 1e-9)
}
