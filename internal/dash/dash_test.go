package dash

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/xetrade/internal/aggregator"
)

func sampleResult() aggregator.Result {
	bin := aggregator.VenueQuote{Venue: "binance", Bid: 64000, Ask: 64001}
	okx := aggregator.VenueQuote{Venue: "okx", Bid: 63990, Ask: 64005}
	return aggregator.Result{
		BestBid: &bin,
		BestAsk: &bin,
		All:     []aggregator.VenueQuote{bin, okx},
	}
}

func TestStore_UpdateAndList(t *testing.T) {
	s := NewStore()
	s.Update("BTC/USDT", sampleResult())

	rows := s.List()
	require.Len(t, rows, 3)

	// Best row sorts first within the pair.
	assert.Equal(t, "best", rows[0].Venue)
	assert.Equal(t, 64000.0, rows[0].Bid)
	assert.Equal(t, 64001.0, rows[0].Ask)
	assert.Equal(t, 64000.5, rows[0].Mid)

	assert.Equal(t, "binance", rows[1].Venue)
	assert.InDelta(t, 0, rows[1].DriftPct, 1e-9)
	assert.Equal(t, "okx", rows[2].Venue)
	assert.NotZero(t, rows[2].DriftPct)
}

func TestStore_EmptyResult(t *testing.T) {
	s := NewStore()
	s.Update("ETH/USDT", aggregator.Result{})

	rows := s.List()
	require.Len(t, rows, 1)
	assert.Equal(t, "best", rows[0].Venue)
	assert.Zero(t, rows[0].Bid)
	assert.Zero(t, rows[0].Mid)
}

func TestAPIHandler(t *testing.T) {
	s := NewStore()
	s.Update("BTC/USDT", sampleResult())

	mux := http.NewServeMux()
	mux.HandleFunc("/api/dash", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.List())
	})
	srv := httptest.NewServer(withCORS(mux))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/dash")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var rows []Row
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	assert.Len(t, rows, 3)
}
