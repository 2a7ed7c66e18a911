package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"fluxo/internal/logger"
)

const (
	// fxLookbackDays bounds the backward fill when the requested date has no
	// published rate (weekends, bank holidays).
	fxLookbackDays = 10

	fxCacheTTL     = 12 * time.Hour
	fxCacheCleanup = 1 * time.Hour
)

// fxService fetches daily ECB reference rates from the Frankfurter API.
// Responses are cached per (range, currency) and requests are rate limited
// so a burst of imports does not hammer the upstream.
type fxService struct {
	client  *retryablehttp.Client
	cache   *gocache.Cache
	limiter *rate.Limiter
	baseURL string
}

// NewFXService creates a new FXServicer against the given base URL
// (e.g. https://api.frankfurter.dev/v1).
func NewFXService(baseURL string, timeout time.Duration) FXServicer {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.HTTPClient.Timeout = timeout
	client.Logger = nil

	return &fxService{
		client:  client,
		cache:   gocache.New(fxCacheTTL, fxCacheCleanup),
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		baseURL: baseURL,
	}
}

type fxRangeResponse struct {
	Rates map[string]map[string]float64 `json:"rates"`
}

// RatesForRange returns daily rates for [start, end], expressed as units of
// toCurrency per unit of EUR. Days without a published rate (weekends,
// holidays) are absent from the result.
func (s *fxService) RatesForRange(start, end time.Time, toCurrency string) (RatesByDay, error) {
	cacheKey := fmt.Sprintf("%s..%s:%s", start.Format("2006-01-02"), end.Format("2006-01-02"), toCurrency)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(RatesByDay), nil
	}

	if err := s.limiter.Wait(context.Background()); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s..%s?to=%s",
		s.baseURL, start.Format("2006-01-02"), end.Format("2006-01-02"), toCurrency)
	resp, err := s.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var decoded fxRangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding exchange rates: %w", err)
	}

	rates := RatesByDay(decoded.Rates)
	s.cache.Set(cacheKey, rates, gocache.DefaultExpiration)
	return rates, nil
}

// Normalize converts an amount in fromCurrency to EUR at the rate of the
// given date, falling back up to fxLookbackDays to the most recent published
// rate. Returns nil when no rate can be obtained; callers then keep the raw
// amount and treat it as already ledger-valued.
func (s *fxService) Normalize(amount float64, fromCurrency string, date time.Time) *float64 {
	if fromCurrency == "" || fromCurrency == "EUR" {
		return &amount
	}

	rates, err := s.RatesForRange(date.AddDate(0, 0, -fxLookbackDays), date, fromCurrency)
	if err != nil {
		logger.Get().Warnw("exchange rate lookup failed",
			"currency", fromCurrency,
			"date", date.Format("2006-01-02"),
			"error", err.Error(),
		)
		return nil
	}

	for i := 0; i <= fxLookbackDays; i++ {
		day := date.AddDate(0, 0, -i).Format("2006-01-02")
		if dayRates, ok := rates[day]; ok {
			if r, ok := dayRates[fromCurrency]; ok && r != 0 {
				converted, _ := decimal.NewFromFloat(amount).
					Div(decimal.NewFromFloat(r)).
					Round(2).
					Float64()
				return &converted
			}
		}
	}

	logger.Get().Warnw("no exchange rate published within lookback window",
		"currency", fromCurrency,
		"date", date.Format("2006-01-02"),
	)
	return nil
}
