// Package dash serves a small live table of per-venue quotes. It exists for
// eyeballing the feed during development; Grafana over the metrics endpoint
// is the real monitoring surface.
package dash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/you/xetrade/internal/aggregator"
)

// Row is one (pair, venue) line. The synthetic "best" row carries the
// cross-venue best bid/ask.
type Row struct {
	Pair  string `json:"pair"`
	Venue string `json:"venue"`

	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
	Mid float64 `json:"mid"`

	// Deviation of this venue's mid from the cross-venue mid.
	DriftPct float64 `json:"driftPct"`

	TS int64 `json:"ts"`
}

type Store struct {
	mu   sync.RWMutex
	rows map[string]Row // key: pair|venue
}

func NewStore() *Store { return &Store{rows: make(map[string]Row, 64)} }

// Update replaces the rows for one pair from an aggregation round.
func (s *Store) Update(pair string, res aggregator.Result) {
	now := time.Now().UnixMilli()
	bestMid, hasBest := res.Mid()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, vq := range res.All {
		row := Row{
			Pair:  pair,
			Venue: vq.Venue,
			Bid:   vq.Bid,
			Ask:   vq.Ask,
			Mid:   (vq.Bid + vq.Ask) / 2,
			TS:    now,
		}
		if hasBest && bestMid > 0 {
			row.DriftPct = (row.Mid/bestMid - 1) * 100
		}
		s.rows[pair+"|"+vq.Venue] = row
	}

	best := Row{Pair: pair, Venue: "best", TS: now}
	if res.BestBid != nil {
		best.Bid = res.BestBid.Bid
	}
	if res.BestAsk != nil {
		best.Ask = res.BestAsk.Ask
	}
	if hasBest {
		best.Mid = bestMid
	}
	s.rows[pair+"|best"] = best
}

func (s *Store) List() []Row {
	s.mu.RLock()
	out := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Pair == out[j].Pair {
			// "best" row first within a pair.
			if (out[i].Venue == "best") != (out[j].Venue == "best") {
				return out[i].Venue == "best"
			}
			return out[i].Venue < out[j].Venue
		}
		return out[i].Pair < out[j].Pair
	})
	return out
}

func StartHTTP(ctx context.Context, s *Store, addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/dash", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.List())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexHTML)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() { <-ctx.Done(); _ = srv.Close() }()

	log.Info("dash listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("dash server error", zap.Error(err))
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>Cross-Venue Quotes</title>
  <style>
    :root { --bg:#f8fafc; --card:#fff; --muted:#6b7280; --chip:#e5e7eb; }
    body{margin:0;background:var(--bg);font:14px/1.4 ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Ubuntu; color:#111827;}
    .wrap{max-width:980px;margin:24px auto;padding:0 16px;}
    .hdr{display:flex;align-items:flex-end;justify-content:space-between;margin-bottom:12px;}
    .state{font-size:12px;padding:2px 8px;border-radius:999px;background:#d1fae5;color:#065f46;}
    table{width:100%;border-collapse:collapse;background:var(--card);border-radius:16px;overflow:hidden;box-shadow:0 10px 30px rgba(0,0,0,.06);}
    thead{background:#f3f4f6;} th,td{padding:12px 14px;text-align:left;} tbody tr{border-top:1px solid #f3f4f6;}
    tbody tr.best{background:#f0fdf4;}
    .chip{display:inline-block;font-size:12px;padding:2px 8px;background:var(--chip);border-radius:999px;color:#374151;}
    .pct{padding:2px 8px;border-radius:8px;font-size:12px;}
    .pct.ok{background:#dcfce7;color:#166534;} .pct.bad{background:#fee2e2;color:#991b1b;} .pct.dim{background:#f3f4f6;color:#6b7280;}
    .sub{color:var(--muted);font-size:12px;margin:0;}
  </style>
</head>
<body>
<div class="wrap">
  <div class="hdr">
    <div>
      <h1 style="margin:0;font-size:22px;font-weight:600">Cross-Venue Quotes</h1>
      <p class="sub">Best bid/ask across venues, per pair</p>
    </div>
    <div id="state" class="state">live</div>
  </div>
  <table>
    <thead>
      <tr>
        <th>Pair</th><th>Venue</th>
        <th>Bid</th><th>Ask</th><th>Mid</th>
        <th>Drift vs best</th>
        <th style="text-align:right">Updated</th>
      </tr>
    </thead>
    <tbody id="rows"></tbody>
  </table>
  <p class="sub" style="margin-top:8px">Drift = venue mid / cross-venue mid − 1. The highlighted row is the synthetic best book.</p>
</div>
<script>
  function px(x){ return (x==null||isNaN(x)||x===0) ? '—' : Number(x).toLocaleString(undefined,{maximumFractionDigits:6}); }
  function pct(x){ return (x==null||isNaN(x)||x===0) ? '—' : (x.toFixed(4)+'%'); }
  function rowHTML(r){
    var cls = r.venue==='best' ? ' class="best"' : '';
    var drift = r.driftPct||0;
    var driftCls = r.venue==='best' ? 'dim' : (Math.abs(drift) < 0.05 ? 'ok' : 'bad');
    return '<tr'+cls+'>'
      + '<td><strong>' + (r.pair||'') + '</strong></td>'
      + '<td><span class="chip">' + (r.venue||'') + '</span></td>'
      + '<td>' + px(r.bid) + '</td>'
      + '<td>' + px(r.ask) + '</td>'
      + '<td>' + px(r.mid) + '</td>'
      + '<td><span class="pct ' + driftCls + '">' + (r.venue==='best' ? '—' : pct(drift)) + '</span></td>'
      + '<td style="text-align:right;color:#6B7280;font-size:12px">' + new Date(r.ts||Date.now()).toLocaleTimeString() + '</td>'
      + '</tr>';
  }
  async function tick(){
    try{
      var res = await fetch('/api/dash', {cache:'no-store'});
      if(!res.ok) throw new Error('status '+res.status);
      var data = await res.json();
      document.getElementById('state').textContent = 'live';
      document.getElementById('rows').innerHTML = data.map(rowHTML).join('');
    }catch(e){
      document.getElementById('state').textContent = 'stale';
    }
  }
  tick(); setInterval(tick, 1000);
</script>
</body>
</html>`
