package sessionid

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerator_New_format(t *testing.T) {
	seen := make(map[string]struct{}, 10000)

	for range 10000 {
		id, err := Default.New()
		require.NoError(t, err)

		require.Len(t, id, 36)
		for _, pos := range []int{8, 13, 18, 23} {
			require.Equal(t, byte('-'), id[pos], "hyphen at %d in %s", pos, id)
		}
		require.Equal(t, byte('4'), id[14], id)
		require.Contains(t, "89ab", string(id[19]), id)
		require.Equal(t, strings.ToLower(id), id)
		require.True(t, Valid(id), id)

		seen[id] = struct{}{}
	}

	require.Len(t, seen, 10000)
}

func TestFromSeed(t *testing.T) {
	tests := []struct {
		name     string
		seed     []byte
		expected string
	}{
		{
			name:     "all zero",
			seed:     make([]byte, 16),
			expected: "00000000-0000-4000-8000-000000000000",
		},
		{
			name:     "all ones",
			seed:     bytes.Repeat([]byte{0xff}, 16),
			expected: "ffffffff-ffff-4fff-bfff-ffffffffffff",
		},
		{
			name:     "sequential",
			seed:     []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff},
			expected: "00112233-4455-4677-8899-aabbccddeeff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := bytes.Clone(tt.seed)

			id, err := FromSeed(tt.seed)
			require.NoError(t, err)
			require.Equal(t, tt.expected, id)
			require.Equal(t, original, tt.seed)
		})
	}
}

func TestFromSeed_invalidLength(t *testing.T) {
	for _, n := range []int{0, 1, 15, 17, 32} {
		_, err := FromSeed(make([]byte, n))
		require.ErrorIs(t, err, ErrInvalidSeed)
	}

	_, err := FromSeed(nil)
	require.ErrorIs(t, err, ErrInvalidSeed)
}

func TestGenerator_New_reader(t *testing.T) {
	t.Run("deterministic reader", func(t *testing.T) {
		g := &Generator{Reader: bytes.NewReader(make([]byte, 16))}
		id, err := g.New()
		require.NoError(t, err)
		require.Equal(t, "00000000-0000-4000-8000-000000000000", id)
	})

	t.Run("short reader", func(t *testing.T) {
		g := &Generator{Reader: bytes.NewReader(make([]byte, 8))}
		_, err := g.New()
		require.Error(t, err)
	})

	t.Run("failing reader", func(t *testing.T) {
		g := &Generator{Reader: errReader{}}
		_, err := g.New()
		require.Error(t, err)
	})
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{name: "v4", input: "0b7e5a52-7a4b-4c1e-9d3f-2a1b3c4d5e6f", valid: true},
		{name: "uppercase", input: "0B7E5A52-7A4B-4C1E-9D3F-2A1B3C4D5E6F", valid: false},
		{name: "v7", input: "01936b8a-7a4b-7c1e-9d3f-2a1b3c4d5e6f", valid: false},
		{name: "wrong variant", input: "0b7e5a52-7a4b-4c1e-cd3f-2a1b3c4d5e6f", valid: false},
		{name: "braces", input: "{0b7e5a52-7a4b-4c1e-9d3f-2a1b3c4d5e6f}", valid: false},
		{name: "empty", input: "", valid: false},
		{name: "sql", input: "' OR 1=1 --", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.valid, Valid(tt.input))
		})
	}
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }
