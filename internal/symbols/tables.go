package symbols

// Quote tokens recognized when splitting glued symbols like BTCUSDT.
// Ordered longest-first so FDUSD wins over USD and USDT over USD.
var knownQuotes = []string{
	"FDUSD", "BUSD", "USDT", "USDC", "TUSD",
	"USD", "DAI", "PAX",
	"EUR", "GBP", "JPY", "KRW", "CNY",
	"BTC", "ETH", "BNB", "SOL",
}

// USD-pegged stablecoins collapse to the fiat tag "USD". The original
// ticker is kept in Mapping.Metadata["stablecoinType"].
var usdStable = map[string]bool{
	"USDT":  true,
	"USDC":  true,
	"BUSD":  true,
	"DAI":   true,
	"TUSD":  true,
	"PAX":   true,
	"FDUSD": true,
}

// Ticker aliases: legacy symbols, fork tickers, wrapped assets.
var assetAliases = map[string]string{
	"XBT":    "BTC",
	"WBTC":   "BTC",
	"BCC":    "BCH",
	"BCHABC": "BCH",
	"BCHSV":  "BSV",
	"WETH":   "ETH",
}

// Assets we have seen on at least one supported venue. Membership feeds the
// confidence score, nothing else.
var knownAssets = map[string]bool{
	"BTC": true, "ETH": true, "SOL": true, "ADA": true, "DOT": true,
	"AVAX": true, "MATIC": true, "ATOM": true, "NEAR": true, "FTM": true,
	"ALGO": true, "LINK": true, "UNI": true, "AAVE": true, "COMP": true,
	"MKR": true, "DOGE": true, "SHIB": true, "BONK": true, "PEPE": true,
	"WIF": true, "XRP": true, "LTC": true, "BCH": true, "BSV": true,
	"BNB": true, "TRX": true,

	"USD": true, "USDT": true, "USDC": true, "BUSD": true, "DAI": true,
	"TUSD": true, "PAX": true, "FDUSD": true,
	"EUR": true, "GBP": true,
}

// Contract-market noise stripped before parsing. Substring removal, applied
// after uppercasing.
var noiseTokens = []string{
	"PERP", "SWAP", "FUT", "SPOT", ".P",
}

// quoteClassOf buckets a resolved quote ticker for downstream filtering.
func quoteClassOf(quote string) QuoteClass {
	switch {
	case quote == "USD" || usdStable[quote]:
		return ClassUSD
	case quote == "EUR":
		return ClassEUR
	case quote == "GBP":
		return ClassGBP
	case quote == "BTC":
		return ClassBTC
	case quote == "ETH":
		return ClassETH
	default:
		return ClassOther
	}
}

// Per-venue separator used by ToExchangeSymbol. Unknown venues get the dash
// format.
var venueSeparators = map[string]string{
	"binance": "",
	"mexc":    "",
	"okx":     "-",
	"kucoin":  "-",
	"bitmart": "_",
	"derive":  "-",
	"mock":    "-",
}
