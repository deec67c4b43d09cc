package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want Command
	}{
		{
			name: "command with args",
			line: "BOOK_SEAT 1 2B",
			want: Command{Name: "BOOK_SEAT", Args: []string{"1", "2B"}},
		},
		{
			name: "lower case name",
			line: "login alice Secret123",
			want: Command{Name: "LOGIN", Args: []string{"alice", "Secret123"}},
		},
		{
			name: "extra whitespace and CRLF",
			line: "  GET_SEATS \t 7 \r\n",
			want: Command{Name: "GET_SEATS", Args: []string{"7"}},
		},
		{
			name: "no args",
			line: "GET_FLIGHTS",
			want: Command{Name: "GET_FLIGHTS", Args: []string{}},
		},
		{
			name: "args keep their case",
			line: "register Alice PaSS",
			want: Command{Name: "REGISTER", Args: []string{"Alice", "PaSS"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	for _, line := range []string{"", "   ", "\r\n", "\t"} {
		_, err := Decode(line)
		assert.ErrorIs(t, err, ErrEmptyRequest)
	}
}

func TestCommand_RoundTrip(t *testing.T) {
	lines := []string{
		"LOGIN alice Secret123",
		"UPDATE_USER 1 Alice Smith 30",
		"GET_FLIGHTS",
		"book_seat 1 2B",
		"  CHANGE_PASSWORD   bob   n3w  ",
	}
	for _, line := range lines {
		cmd, err := Decode(line)
		require.NoError(t, err)

		again, err := Decode(cmd.Line())
		require.NoError(t, err)
		assert.Equal(t, cmd, again, line)
	}
}

func TestEncode_SingleLine(t *testing.T) {
	testCases := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "success",
			result: Success("SUCCESS: Seat 2B booked for flight 1"),
			want:   "SUCCESS: Seat 2B booked for flight 1\n",
		},
		{
			name:   "error",
			result: Error("Unknown command"),
			want:   "ERROR: Unknown command\n",
		},
		{
			name:   "records",
			result: Records([]string{"Flight ID: 1, From: A, To: B, Date: 01.12.2026", "Flight ID: 2, From: B, To: C, Date: 03.12.2026"}),
			want:   "Flight ID: 1, From: A, To: B, Date: 01.12.2026 | Flight ID: 2, From: B, To: C, Date: 03.12.2026\n",
		},
		{
			name:   "embedded newlines are flattened",
			result: Error("pq: broken\r\npipe\nagain"),
			want:   "ERROR: pq: broken pipe again\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := Encode(tc.result)
			assert.Equal(t, tc.want, string(out))
			assert.Equal(t, 1, bytes.Count(out, []byte{Delimiter}))
		})
	}
}

func TestResult_OK(t *testing.T) {
	assert.True(t, Success("SUCCESS=1").OK())
	assert.True(t, Records([]string{"a"}).OK())
	assert.False(t, Error("x").OK())
}
