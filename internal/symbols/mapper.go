// Package symbols reconciles venue-specific trading symbols into one
// canonical BASE/QUOTE identity. "1000BONK-USD" on one venue and
// "BONK-USDT" on another both resolve to "BONK/USD": the quote side of
// every USD-pegged stablecoin is a claim on the same dollar.
package symbols

import (
	"fmt"
	"regexp"
	"strings"
)

// QuoteClass is a coarse currency bucket used for filtering and display.
type QuoteClass string

const (
	ClassUSD   QuoteClass = "USD"
	ClassEUR   QuoteClass = "EUR"
	ClassGBP   QuoteClass = "GBP"
	ClassBTC   QuoteClass = "BTC"
	ClassETH   QuoteClass = "ETH"
	ClassOther QuoteClass = "OTHER"
)

// Pair is a canonical asset pair. Both fields are uppercase and non-empty.
type Pair struct {
	Base  string
	Quote string
}

func (p Pair) String() string { return p.Base + "/" + p.Quote }

// Human renders the OKX-style dashed form, e.g. "BTC-USDT".
func (p Pair) Human() string { return p.Base + "-" + p.Quote }

// Concat renders the Binance-style glued form, e.g. "BTCUSDT".
func (p Pair) Concat() string { return p.Base + p.Quote }

// ParseError reports a symbol that could not be decomposed into base/quote.
type ParseError struct {
	Symbol string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("symbols: cannot parse %q: %s", e.Symbol, e.Reason)
}

// ParsePair accepts "BTC-USDT", "btc_usdt", "BTC/USDT" or glued "BTCUSDT"
// and returns the pair uppercased. Glued symbols are split on the longest
// known quote suffix. A pair is never silently wrong: failure is a
// *ParseError.
func ParsePair(s string) (Pair, error) {
	raw := s
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.NewReplacer("/", "-", "_", "-").Replace(s)
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if i := strings.Index(s, "-"); i >= 0 {
		base, quote := s[:i], s[i+1:]
		if base == "" || quote == "" || strings.Contains(quote, "-") {
			return Pair{}, &ParseError{Symbol: raw, Reason: "empty or extra component"}
		}
		return Pair{Base: base, Quote: quote}, nil
	}

	for _, q := range knownQuotes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return Pair{Base: strings.TrimSuffix(s, q), Quote: q}, nil
		}
	}
	return Pair{}, &ParseError{Symbol: raw, Reason: "no separator and no known quote suffix"}
}

// Mapping is the result of normalizing one exchange symbol. Produced fresh
// per call; there is no lifecycle beyond the call.
type Mapping struct {
	ExchangeSymbol  string            `json:"exchangeSymbol"`
	UniversalSymbol string            `json:"universalSymbol"`
	BaseAsset       string            `json:"baseAsset"`
	QuoteAsset      string            `json:"quoteAsset"`
	QuoteClass      QuoteClass        `json:"quoteClass"`
	Confidence      float64           `json:"confidence"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

var multiplierRe = regexp.MustCompile(`^(\d+)([A-Z]+)$`)

// Normalize maps a raw venue symbol to its universal identity. It never
// fails: unparseable input comes back with the raw symbol as the universal
// one, confidence 0.1 and the reason under Metadata["error"].
func Normalize(raw, venue string) Mapping {
	meta := map[string]string{}
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	for _, tok := range noiseTokens {
		cleaned = strings.ReplaceAll(cleaned, tok, "")
	}

	pair, err := ParsePair(cleaned)
	if err != nil {
		meta["error"] = err.Error()
		return Mapping{
			ExchangeSymbol:  raw,
			UniversalSymbol: raw,
			QuoteClass:      ClassOther,
			Confidence:      0.1,
			Metadata:        meta,
		}
	}

	base, quote := pair.Base, pair.Quote

	// Venues rebase meme-coin contracts by powers of ten (1000BONK) without
	// changing the underlying asset. The multiplier is metadata, not identity.
	if m := multiplierRe.FindStringSubmatch(base); m != nil {
		meta["multiplier"] = m[1]
		base = m[2]
	}

	if canon, ok := assetAliases[base]; ok {
		meta["baseAlias"] = base
		base = canon
	}
	if canon, ok := assetAliases[quote]; ok {
		meta["quoteAlias"] = quote
		quote = canon
	}

	stableApplied := false
	if usdStable[quote] {
		meta["stablecoinType"] = quote
		quote = "USD"
		stableApplied = true
	}

	class := quoteClassOf(quote)

	conf := 0.5
	conf += 0.2 // both tokens parsed
	if knownAssets[base] {
		conf += 0.1
	}
	if knownAssets[quote] {
		conf += 0.1
	}
	if class != ClassOther {
		conf += 0.1
	}
	if stableApplied {
		conf += 0.1
	}
	if !knownAssets[base] || !knownAssets[quote] {
		conf -= 0.3
	}
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}

	if len(meta) == 0 {
		meta = nil
	}
	return Mapping{
		ExchangeSymbol:  raw,
		UniversalSymbol: base + "/" + quote,
		BaseAsset:       base,
		QuoteAsset:      quote,
		QuoteClass:      class,
		Confidence:      conf,
		Metadata:        meta,
	}
}

// ToExchangeSymbol renders a universal "BASE/QUOTE" symbol in the format a
// venue expects. It is a best-effort inverse of Normalize: the multiplier
// and the original stablecoin ticker are gone by design, so a round trip
// need not reproduce the input byte for byte.
func ToExchangeSymbol(universal, venue string) string {
	i := strings.Index(universal, "/")
	if i < 0 {
		return universal
	}
	base, quote := universal[:i], universal[i+1:]
	sep, ok := venueSeparators[strings.ToLower(venue)]
	if !ok {
		sep = "-"
	}
	return base + sep + quote
}

// ValidateMapping checks that a raw symbol normalizes to the expected
// universal symbol. Structural equality only, no fuzzy matching.
func ValidateMapping(raw, expectedUniversal, venue string) bool {
	return Normalize(raw, venue).UniversalSymbol == expectedUniversal
}

// FindEquivalent returns the mappings of every candidate symbol that
// resolves to the target universal symbol.
func FindEquivalent(targetUniversal string, candidates []string, venue string) []Mapping {
	var out []Mapping
	for _, s := range candidates {
		if m := Normalize(s, venue); m.UniversalSymbol == targetUniversal {
			out = append(out, m)
		}
	}
	return out
}
