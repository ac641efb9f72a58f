package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestProvider(truncgil, genelpara, frankfurter string) *Provider {
	p := NewProvider()
	p.truncgilURL = truncgil
	p.genelparaURL = genelpara
	p.frankfurterURL = frankfurter
	return p
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func failingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}
}

func TestRefreshUsesPrimarySource(t *testing.T) {
	truncgil := httptest.NewServer(jsonHandler(`{
		"USD": {"Alış": "34,65", "Satış": "34,75"},
		"EUR": {"Alış": "37,45", "Satış": "37,60"},
		"GA":  {"Alış": "3.180,00", "Satış": "3.210,00"}
	}`))
	defer truncgil.Close()

	p := newTestProvider(truncgil.URL, "http://127.0.0.1:0", "http://127.0.0.1:0")
	rates := p.Refresh(context.Background())

	if rates.Source != "truncgil" {
		t.Fatalf("expected truncgil source, got %q", rates.Source)
	}
	if rates.USD.Selling != 34.75 {
		t.Errorf("USD selling = %v, want 34.75", rates.USD.Selling)
	}
	if rates.EUR.Buying != 37.45 {
		t.Errorf("EUR buying = %v, want 37.45", rates.EUR.Buying)
	}
	if rates.Gold.Selling != 3210 {
		t.Errorf("gold selling = %v, want 3210", rates.Gold.Selling)
	}
}

func TestRefreshFallsThroughChain(t *testing.T) {
	down := httptest.NewServer(failingHandler())
	defer down.Close()

	genelpara := httptest.NewServer(jsonHandler(`{
		"USD": {"alis": "34.60", "satis": "34.70"},
		"EUR": {"alis": "37.40", "satis": "37.55"},
		"GA":  {"alis": "3175", "satis": "3205"}
	}`))
	defer genelpara.Close()

	p := newTestProvider(down.URL, genelpara.URL, "http://127.0.0.1:0")
	rates := p.Refresh(context.Background())

	if rates.Source != "genelpara" {
		t.Fatalf("expected genelpara source, got %q", rates.Source)
	}
	if rates.USD.Selling != 34.70 {
		t.Errorf("USD selling = %v, want 34.70", rates.USD.Selling)
	}
}

func TestRefreshFrankfurterDerivesCrossRate(t *testing.T) {
	down := httptest.NewServer(failingHandler())
	defer down.Close()

	frankfurter := httptest.NewServer(jsonHandler(`{
		"base": "USD",
		"rates": {"TRY": 34.70, "EUR": 0.925}
	}`))
	defer frankfurter.Close()

	p := newTestProvider(down.URL, down.URL, frankfurter.URL)
	rates := p.Refresh(context.Background())

	if rates.Source != "frankfurter" {
		t.Fatalf("expected frankfurter source, got %q", rates.Source)
	}
	if rates.USD.Selling != 34.70 {
		t.Errorf("USD selling = %v, want 34.70", rates.USD.Selling)
	}
	wantEUR := 34.70 / 0.925
	if diff := rates.EUR.Selling - wantEUR; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("EUR selling = %v, want %v", rates.EUR.Selling, wantEUR)
	}
	// No gold quote from frankfurter; the previous pair stays in place.
	if rates.Gold.Selling != fallbackRates.Gold.Selling {
		t.Errorf("gold selling = %v, want fallback %v", rates.Gold.Selling, fallbackRates.Gold.Selling)
	}
}

func TestRefreshNeverFails(t *testing.T) {
	p := newTestProvider("http://127.0.0.1:0", "http://127.0.0.1:0", "http://127.0.0.1:0")
	rates := p.Refresh(context.Background())

	if rates.Source != "static" {
		t.Fatalf("expected static fallback, got %q", rates.Source)
	}
	if rates.USD.Selling <= 0 || rates.EUR.Selling <= 0 {
		t.Errorf("fallback rates must stay positive: %+v", rates)
	}
}

func TestRefreshRejectsInvalidRates(t *testing.T) {
	zeroRates := httptest.NewServer(jsonHandler(`{
		"USD": {"Alış": "0", "Satış": "0"},
		"EUR": {"Alış": "0", "Satış": "0"},
		"GA":  {"Alış": "0", "Satış": "0"}
	}`))
	defer zeroRates.Close()

	p := newTestProvider(zeroRates.URL, "http://127.0.0.1:0", "http://127.0.0.1:0")
	rates := p.Refresh(context.Background())

	if rates.Source != "static" {
		t.Fatalf("zero rates should be rejected, got source %q", rates.Source)
	}
}

func TestParseTurkishFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"34,75", 34.75},
		{"34.75", 34.75},
		{"3.180,50", 3180.50},
		{" 37,60 ", 37.60},
		{"", 0},
		{"bozuk", 0},
	}
	for _, tt := range tests {
		if got := parseTurkishFloat(tt.in); got != tt.want {
			t.Errorf("parseTurkishFloat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTableUsesSellingRates(t *testing.T) {
	r := Rates{
		USD: RatePair{Buying: 34.65, Selling: 34.75},
		EUR: RatePair{Buying: 37.45, Selling: 37.60},
	}
	table := r.Table()
	if table.USD != 34.75 || table.EUR != 37.60 {
		t.Errorf("Table() = %+v, want selling rates", table)
	}
}
