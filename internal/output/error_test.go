package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/output"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

func TestFormatError_Nil(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, nil, output.FormatText))
	assert.Empty(t, buf.String())
}

func TestFormatError_TextWithDetailsAndSuggestion(t *testing.T) {
	t.Parallel()
	err := nebulaerr.WithSuggestion(
		nebulaerr.WithDetails(nebulaerr.ErrUnsupportedChain, map[string]string{
			"chain_id": "0x539",
		}),
		"Run \"nebula network list\" for supported networks",
	)

	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, err, output.FormatText))

	out := buf.String()
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, "chain_id: 0x539")
	assert.Contains(t, out, "Suggestion: Run \"nebula network list\"")
}

func TestFormatError_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatError(&buf, nebulaerr.ErrUserRejected, output.FormatJSON))

	var parsed output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "USER_REJECTED", parsed.Error.Code)
	assert.Equal(t, nebulaerr.ExitRejected, parsed.Error.ExitCode)
}

func TestFormatError_GenericError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	//nolint:err113 // Test error, not wrapped
	require.NoError(t, output.FormatError(&buf, errors.New("boom"), output.FormatJSON))

	var parsed output.ErrorOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "GENERAL_ERROR", parsed.Error.Code)
	assert.Equal(t, "boom", parsed.Error.Message)
}

func TestFormatSuccess(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, output.FormatSuccess(&buf, "wallet connected", output.FormatText))
	assert.Equal(t, "wallet connected\n", buf.String())

	buf.Reset()
	require.NoError(t, output.FormatSuccess(&buf, "wallet connected", output.FormatJSON))
	var parsed map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &parsed))
	assert.Equal(t, "success", parsed["status"])
}

func TestTable(t *testing.T) {
	t.Parallel()
	table := output.NewTable("NETWORK", "CHAIN ID", "CURRENCY")
	table.AddRow("Ethereum", "0x1", "ETH")
	table.AddRow("Polygon", "0x89", "MATIC")

	out := table.String()
	assert.Contains(t, out, "NETWORK")
	assert.Contains(t, out, "Ethereum  0x1")
	assert.Contains(t, out, "Polygon   0x89")
}

func TestTable_NoHeader(t *testing.T) {
	t.Parallel()
	table := output.NewTable("A", "B")
	table.SetNoHeader(true)
	table.AddRow("x", "y")

	out := table.String()
	assert.NotContains(t, out, "A")
	assert.Contains(t, out, "x  y")
}
