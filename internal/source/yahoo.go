package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"time"

	"github.com/quantfolio/quantfolio/internal/core"
)

const defaultYahooURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// validTicker matches symbols like SPY, TLT, BTC-USD, 0700.HK.
var validTicker = regexp.MustCompile(`^[A-Za-z0-9]{1,10}([.-][A-Za-z]{1,4})?$`)

// Yahoo fetches daily closes from the Yahoo Finance chart API and
// aligns them into a single price table. Days on which a ticker has no
// close simply lack that ticker's entry; the engine's return calculator
// handles the gaps.
type Yahoo struct {
	client  *http.Client
	baseURL string
	tickers []string
	start   time.Time
	end     time.Time
}

// NewYahoo creates a Yahoo source for the given tickers and date range.
func NewYahoo(tickers []string, start, end time.Time) *Yahoo {
	return &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultYahooURL,
		tickers: tickers,
		start:   start,
		end:     end,
	}
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

func (y *Yahoo) Fetch(ctx context.Context) (*core.PriceTable, error) {
	if len(y.tickers) == 0 {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("no tickers requested"))
	}

	// date string -> ticker -> close
	closes := make(map[string]map[string]float64)
	for _, tk := range y.tickers {
		series, err := y.fetchCloses(ctx, tk)
		if err != nil {
			return nil, core.WrapError(core.ErrSourceFailed,
				fmt.Errorf("fetching %s: %w", tk, err))
		}
		for date, price := range series {
			if closes[date] == nil {
				closes[date] = make(map[string]float64, len(y.tickers))
			}
			closes[date][tk] = price
		}
	}
	if len(closes) == 0 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("yahoo returned no closes for %v", y.tickers))
	}

	dates := make([]string, 0, len(closes))
	for d := range closes {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	rows := make([]core.PriceRow, 0, len(dates))
	for _, d := range dates {
		date, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, core.WrapError(core.ErrSourceFailed, err)
		}
		rows = append(rows, core.PriceRow{Date: date, Prices: closes[d]})
	}

	return core.NewPriceTable(y.tickers, rows)
}

// fetchCloses returns date-keyed daily closes for one ticker.
func (y *Yahoo) fetchCloses(ctx context.Context, ticker string) (map[string]float64, error) {
	if err := validateTicker(ticker); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?interval=1d&period1=%d&period2=%d",
		y.baseURL, ticker, y.start.Unix(), y.end.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("no data for ticker: %s", ticker)
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data for ticker: %s", ticker)
	}
	quote := r.Indicators.Quote[0]

	series := make(map[string]float64, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue // skip missing closes
		}
		day := time.Unix(int64(ts), 0).UTC().Format("2006-01-02")
		series[day] = *quote.Close[i]
	}
	return series, nil
}

func validateTicker(ticker string) error {
	if ticker == "" {
		return fmt.Errorf("ticker cannot be empty")
	}
	if !validTicker.MatchString(ticker) {
		return fmt.Errorf("invalid ticker format: %s", ticker)
	}
	return nil
}

// Yahoo API response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Timestamp  []int      `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type indicators struct {
	Quote []struct {
		Close []*float64 `json:"close"`
	} `json:"quote"`
}
