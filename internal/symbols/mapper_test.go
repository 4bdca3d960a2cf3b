package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePair(t *testing.T) {
	cases := []struct {
		in    string
		base  string
		quote string
	}{
		{"BTC-USDT", "BTC", "USDT"},
		{"btc_usdt", "BTC", "USDT"},
		{"BTC/USDT", "BTC", "USDT"},
		{" eth-usd ", "ETH", "USD"},
		{"BTCUSDT", "BTC", "USDT"},
		{"BONKFDUSD", "BONK", "FDUSD"},
		{"SOLBTC", "SOL", "BTC"},
	}
	for _, c := range cases {
		p, err := ParsePair(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.base, p.Base, c.in)
		assert.Equal(t, c.quote, p.Quote, c.in)
	}
}

func TestParsePair_Failure(t *testing.T) {
	for _, in := range []string{"", "-", "USDT", "GARBAGE", "A-B-C"} {
		_, err := ParsePair(in)
		var pe *ParseError
		assert.ErrorAs(t, err, &pe, in)
	}
}

func TestNormalize_StablecoinEquivalence(t *testing.T) {
	// The key correctness property: every USD-pegged quote collapses to the
	// same universal symbol.
	for _, q := range []string{"USDT", "USDC", "BUSD", "DAI", "TUSD", "PAX", "FDUSD", "USD"} {
		m := Normalize("BONK-"+q, "okx")
		assert.Equal(t, "BONK/USD", m.UniversalSymbol, q)
		if q != "USD" {
			assert.Equal(t, q, m.Metadata["stablecoinType"])
		}
	}
}

func TestNormalize_MultiplierInvariance(t *testing.T) {
	with := Normalize("1000BONK-USD", "derive")
	without := Normalize("BONK-USDT", "binance")
	assert.Equal(t, "BONK", with.BaseAsset)
	assert.Equal(t, "BONK", without.BaseAsset)
	assert.Equal(t, with.UniversalSymbol, without.UniversalSymbol)
	assert.Equal(t, "1000", with.Metadata["multiplier"])
}

func TestNormalize_Aliases(t *testing.T) {
	m := Normalize("XBT-USDT", "okx")
	assert.Equal(t, "BTC", m.BaseAsset)
	assert.Equal(t, "BTC/USD", m.UniversalSymbol)
	assert.Equal(t, "XBT", m.Metadata["baseAlias"])

	m = Normalize("WBTCUSDT", "binance")
	assert.Equal(t, "BTC", m.BaseAsset)
}

func TestNormalize_NoiseTokens(t *testing.T) {
	for _, in := range []string{"BTC-USDT-SWAP", "BTC-USDT-PERP", "BTCUSDT.P"} {
		m := Normalize(in, "okx")
		assert.Equal(t, "BTC/USD", m.UniversalSymbol, in)
	}
}

func TestNormalize_QuoteClass(t *testing.T) {
	assert.Equal(t, ClassUSD, Normalize("BTC-USDT", "okx").QuoteClass)
	assert.Equal(t, ClassEUR, Normalize("BTC-EUR", "okx").QuoteClass)
	assert.Equal(t, ClassBTC, Normalize("ETH-BTC", "okx").QuoteClass)
	assert.Equal(t, ClassETH, Normalize("LINK-ETH", "okx").QuoteClass)
	assert.Equal(t, ClassOther, Normalize("BTC-JPY", "okx").QuoteClass)
}

func TestNormalize_UnparseableNeverFails(t *testing.T) {
	m := Normalize("???", "binance")
	assert.Equal(t, "???", m.UniversalSymbol)
	assert.Equal(t, 0.1, m.Confidence)
	assert.NotEmpty(t, m.Metadata["error"])
	assert.Empty(t, m.BaseAsset)
}

func TestNormalize_ConfidenceMonotonic(t *testing.T) {
	known := Normalize("BTC-USDT", "binance")
	unknownBase := Normalize("ZZZQX-USDT", "binance")
	assert.Greater(t, known.Confidence, unknownBase.Confidence)
	assert.LessOrEqual(t, known.Confidence, 1.0)
	assert.GreaterOrEqual(t, unknownBase.Confidence, 0.0)
}

func TestToExchangeSymbol(t *testing.T) {
	assert.Equal(t, "BTCUSD", ToExchangeSymbol("BTC/USD", "binance"))
	assert.Equal(t, "BTC-USD", ToExchangeSymbol("BTC/USD", "okx"))
	assert.Equal(t, "BTC_USD", ToExchangeSymbol("BTC/USD", "bitmart"))
	assert.Equal(t, "BTC-USD", ToExchangeSymbol("BTC/USD", "somewhere-new"))
	// Not a universal symbol: passed through.
	assert.Equal(t, "BTCUSD", ToExchangeSymbol("BTCUSD", "okx"))
}

// The round trip is intentionally lossy: the multiplier and the concrete
// stablecoin ticker do not survive normalization.
func TestRoundTrip_LossyByDesign(t *testing.T) {
	m := Normalize("1000BONK-USDT", "okx")
	back := ToExchangeSymbol(m.UniversalSymbol, "okx")
	assert.Equal(t, "BONK-USD", back)
	assert.NotEqual(t, "1000BONK-USDT", back)
}

func TestValidateMapping(t *testing.T) {
	assert.True(t, ValidateMapping("BTCUSDT", "BTC/USD", "binance"))
	assert.False(t, ValidateMapping("BTCUSDT", "BTC/USDT", "binance"))
}

func TestFindEquivalent(t *testing.T) {
	got := FindEquivalent("BONK/USD", []string{
		"1000BONK-USD", "BONK-USDT", "BONKUSDC", "ETH-USDT",
	}, "binance")
	require.Len(t, got, 3)
	for _, m := range got {
		assert.Equal(t, "BONK/USD", m.UniversalSymbol)
	}
}
