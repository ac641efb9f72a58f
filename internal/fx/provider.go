package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"retail-backend/internal/cache"
	"retail-backend/internal/ledger"
	"retail-backend/internal/metrics"
)

// Static fallback used when every source and the cache are unavailable.
// Updated manually on deploys; real rates arrive on the first successful fetch.
var fallbackRates = Rates{
	USD:    RatePair{Buying: 34.65, Selling: 34.75},
	EUR:    RatePair{Buying: 37.45, Selling: 37.60},
	Gold:   RatePair{Buying: 3180, Selling: 3210},
	Source: "static",
}

type RatePair struct {
	Buying  float64 `json:"buying"`
	Selling float64 `json:"selling"`
}

// Rates is the exchange rate snapshot served to dashboards and used
// for ledger conversions. All values are TRY per unit.
type Rates struct {
	USD        RatePair  `json:"usd"`
	EUR        RatePair  `json:"eur"`
	Gold       RatePair  `json:"gold"`
	LastUpdate time.Time `json:"last_update"`
	Source     string    `json:"source"`
}

// Table returns the selling rates in the form the ledger arithmetic expects.
func (r Rates) Table() ledger.RateTable {
	return ledger.RateTable{USD: r.USD.Selling, EUR: r.EUR.Selling}
}

// Provider fetches exchange rates from a chain of public sources and
// degrades gracefully: cache, then last-known-good, then static fallback.
// It never returns an error to callers; a sale must not fail because a
// rate API is down.
type Provider struct {
	httpClient *http.Client

	truncgilURL    string
	genelparaURL   string
	frankfurterURL string

	mu       sync.RWMutex
	current  Rates
	onUpdate func(Rates)
}

func NewProvider() *Provider {
	return &Provider{
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		truncgilURL:    "https://finans.truncgil.com/today.json",
		genelparaURL:   "https://api.genelpara.com/embed/para-birimleri.json",
		frankfurterURL: "https://api.frankfurter.app/latest?from=USD&to=TRY,EUR",
		current:        fallbackRates,
	}
}

// SetOnUpdate registers a callback invoked after each successful refresh,
// used to push new rates to connected websocket clients.
func (p *Provider) SetOnUpdate(fn func(Rates)) {
	p.mu.Lock()
	p.onUpdate = fn
	p.mu.Unlock()
}

// Current returns the most recent rate snapshot without touching the network.
func (p *Provider) Current() Rates {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Refresh walks the source chain and updates the current snapshot.
// On total failure it falls back to the Redis last-known-good entry,
// then to the static constants. Never returns an error.
func (p *Provider) Refresh(ctx context.Context) Rates {
	type source struct {
		name  string
		fetch func(context.Context) (Rates, error)
	}
	sources := []source{
		{"truncgil", p.fetchTruncgil},
		{"genelpara", p.fetchGenelpara},
		{"frankfurter", p.fetchFrankfurter},
	}

	for _, s := range sources {
		rates, err := s.fetch(ctx)
		if err != nil {
			metrics.FxRateFetchesTotal.WithLabelValues(s.name, "error").Inc()
			log.Printf("[Fx] %s fetch failed: %v", s.name, err)
			continue
		}
		if err := validate(rates); err != nil {
			metrics.FxRateFetchesTotal.WithLabelValues(s.name, "invalid").Inc()
			log.Printf("[Fx] %s returned invalid rates: %v", s.name, err)
			continue
		}
		metrics.FxRateFetchesTotal.WithLabelValues(s.name, "ok").Inc()

		rates.LastUpdate = time.Now()
		rates.Source = s.name
		p.store(rates)
		p.persist(ctx, rates)
		return rates
	}

	// All sources down: serve the last-known-good snapshot if we have one.
	if cached, ok := p.loadCached(ctx); ok {
		cached.Source = cached.Source + " (cached)"
		p.store(cached)
		return cached
	}

	log.Printf("[Fx] all sources failed, using static fallback rates")
	p.store(fallbackRates)
	return fallbackRates
}

// Start refreshes immediately, then on a fixed interval until ctx is done.
func (p *Provider) Start(ctx context.Context, interval time.Duration) {
	p.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

func (p *Provider) store(rates Rates) {
	p.mu.Lock()
	p.current = rates
	fn := p.onUpdate
	p.mu.Unlock()

	if fn != nil {
		fn(rates)
	}
}

func (p *Provider) persist(ctx context.Context, rates Rates) {
	data, err := json.Marshal(rates)
	if err != nil {
		return
	}
	cache.SetCached(ctx, cache.RatesKey, data, 24*time.Hour)
}

func (p *Provider) loadCached(ctx context.Context) (Rates, bool) {
	data, ok := cache.GetCached(ctx, cache.RatesKey)
	if !ok {
		return Rates{}, false
	}
	var rates Rates
	if err := json.Unmarshal(data, &rates); err != nil {
		return Rates{}, false
	}
	if validate(rates) != nil {
		return Rates{}, false
	}
	return rates, true
}

func validate(r Rates) error {
	if r.USD.Selling <= 0 || r.EUR.Selling <= 0 || r.Gold.Selling <= 0 {
		return fmt.Errorf("non-positive selling rate: usd=%.4f eur=%.4f gold=%.4f",
			r.USD.Selling, r.EUR.Selling, r.Gold.Selling)
	}
	return nil
}

func (p *Provider) fetchJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// truncgil today.json: {"USD":{"Alış":"34,65","Satış":"34,75"},"EUR":{...},"GA":{...}}
func (p *Provider) fetchTruncgil(ctx context.Context) (Rates, error) {
	var payload map[string]map[string]string
	if err := p.fetchJSON(ctx, p.truncgilURL, &payload); err != nil {
		return Rates{}, err
	}

	pair := func(code string) RatePair {
		entry := payload[code]
		return RatePair{
			Buying:  parseTurkishFloat(entry["Alış"]),
			Selling: parseTurkishFloat(entry["Satış"]),
		}
	}

	return Rates{USD: pair("USD"), EUR: pair("EUR"), Gold: pair("GA")}, nil
}

// genelpara: {"USD":{"alis":"34.65","satis":"34.75"},"EUR":{...},"GA":{...}}
func (p *Provider) fetchGenelpara(ctx context.Context) (Rates, error) {
	var payload map[string]map[string]string
	if err := p.fetchJSON(ctx, p.genelparaURL, &payload); err != nil {
		return Rates{}, err
	}

	pair := func(code string) RatePair {
		entry := payload[code]
		return RatePair{
			Buying:  parseTurkishFloat(entry["alis"]),
			Selling: parseTurkishFloat(entry["satis"]),
		}
	}

	return Rates{USD: pair("USD"), EUR: pair("EUR"), Gold: pair("GA")}, nil
}

// frankfurter gives a single mid rate and no gold quote; we use the mid
// for both sides and keep the previous gold pair.
func (p *Provider) fetchFrankfurter(ctx context.Context) (Rates, error) {
	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := p.fetchJSON(ctx, p.frankfurterURL, &payload); err != nil {
		return Rates{}, err
	}

	usdTry := payload.Rates["TRY"]
	usdEur := payload.Rates["EUR"]
	if usdTry <= 0 || usdEur <= 0 {
		return Rates{}, fmt.Errorf("missing TRY/EUR rates in response")
	}
	eurTry := usdTry / usdEur

	prev := p.Current()
	return Rates{
		USD:  RatePair{Buying: usdTry, Selling: usdTry},
		EUR:  RatePair{Buying: eurTry, Selling: eurTry},
		Gold: prev.Gold,
	}, nil
}

// parseTurkishFloat handles both "34,75" and "34.75" styles, plus
// thousand separators like "3.180,50".
func parseTurkishFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
