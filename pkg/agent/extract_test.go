package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEvent(t *testing.T, raw string) Event {
	t.Helper()
	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	return ev
}

var testSpec = Spec{Fields: []Field{
	{Name: "ticker", Kind: Ticker, Required: true},
	{Name: "data_type", Kind: Enum, Default: "overview"},
	{Name: "additional_params", Kind: JSON},
}}

func TestExtractShapeInvariance(t *testing.T) {
	fromList := decodeEvent(t, `{
		"actionGroup": "FinancialDataActionGroup",
		"function": "getFinancialData",
		"parameters": [
			{"name": "ticker", "value": "aapl"},
			{"name": "data_type", "value": "Overview"}
		]
	}`)
	fromDirect := decodeEvent(t, `{"ticker": "aapl", "data_type": "Overview"}`)

	gotList, err := testSpec.Extract(fromList)
	require.NoError(t, err)
	gotDirect, err := testSpec.Extract(fromDirect)
	require.NoError(t, err)

	assert.Equal(t, gotList, gotDirect)
	assert.Equal(t, "AAPL", gotList.String("ticker"))
	assert.Equal(t, "overview", gotList.String("data_type"))
}

func TestExtractDirectKeyOverridesList(t *testing.T) {
	ev := decodeEvent(t, `{
		"ticker": "msft",
		"parameters": [{"name": "ticker", "value": "aapl"}]
	}`)

	args, err := testSpec.Extract(ev)
	require.NoError(t, err)
	assert.Equal(t, "MSFT", args.String("ticker"))
}

func TestExtractAppliesDefaults(t *testing.T) {
	ev := decodeEvent(t, `{"ticker": "AAPL"}`)

	args, err := testSpec.Extract(ev)
	require.NoError(t, err)
	assert.Equal(t, "overview", args.String("data_type"))
}

func TestExtractMissingRequired(t *testing.T) {
	ev := decodeEvent(t, `{"parameters": [{"name": "ticker", "value": ""}]}`)

	_, err := testSpec.Extract(ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticker")

	var ae *Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, KindMissingParameter, ae.Kind)
}

func TestExtractDuplicateListEntriesLastWins(t *testing.T) {
	ev := decodeEvent(t, `{"parameters": [
		{"name": "ticker", "value": "AAPL"},
		{"name": "ticker", "value": "TSLA"}
	]}`)

	args, err := testSpec.Extract(ev)
	require.NoError(t, err)
	assert.Equal(t, "TSLA", args.String("ticker"))
}

func TestTickerListCoercions(t *testing.T) {
	spec := Spec{Fields: []Field{{Name: "tickers", Kind: TickerList}}}

	cases := map[string]string{
		"json array":   `{"tickers": "[\"aapl\", \"tsla\"]"}`,
		"comma string": `{"tickers": "aapl, tsla"}`,
		"plain array":  `{"tickers": ["aapl", " tsla "]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			args, err := spec.Extract(decodeEvent(t, raw))
			require.NoError(t, err)
			assert.Equal(t, []string{"AAPL", "TSLA"}, args.StringList("tickers"))
		})
	}
}

func TestTickerListDropsEmptyElements(t *testing.T) {
	spec := Spec{Fields: []Field{{Name: "tickers", Kind: TickerList}}}

	args, err := spec.Extract(decodeEvent(t, `{"tickers": "aapl,, ,tsla"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA"}, args.StringList("tickers"))
}

func TestJSONParameterLenientParsing(t *testing.T) {
	ev := decodeEvent(t, `{
		"ticker": "AAPL",
		"additional_params": "{\"period\": \"6m\"}"
	}`)
	args, err := testSpec.Extract(ev)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"period": "6m"}, args.Map("additional_params"))

	ev = decodeEvent(t, `{"ticker": "AAPL", "additional_params": "not json"}`)
	args, err = testSpec.Extract(ev)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"raw_value": "not json"}, args.Map("additional_params"))
}

func TestMergeDirectWins(t *testing.T) {
	merged := Merge(
		map[string]any{"a": 1, "b": 2},
		map[string]any{"b": 3, "c": 4},
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 3, "c": 4}, merged)
}
