// Package indicators provides technical indicator calculations with parallel processing.
package indicators

import (
	"context"
	"sync"

	"nse-insight/internal/config"
	"nse-insight/internal/models"
)

// Indicator defines the interface for single-value technical indicators.
type Indicator interface {
	Name() string
	Calculate(bars []models.PriceBar) ([]float64, error)
	Period() int
}

// MultiValueIndicator defines the interface for indicators that return multiple series.
type MultiValueIndicator interface {
	Name() string
	Calculate(bars []models.PriceBar) (map[string][]float64, error)
	Period() int
}

// Engine provides parallel indicator calculation using a worker pool.
type Engine struct {
	workers     int
	indicators  map[string]Indicator
	multiIndics map[string]MultiValueIndicator
	mu          sync.RWMutex
}

// NewEngine creates a new indicator engine with the specified number of workers.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		workers:     workers,
		indicators:  make(map[string]Indicator),
		multiIndics: make(map[string]MultiValueIndicator),
	}
}

// DefaultEngine creates an engine with every indicator from the
// configuration registered.
func DefaultEngine(cfg config.IndicatorConfig, workers int) *Engine {
	e := NewEngine(workers)
	for _, p := range cfg.SMAPeriods {
		e.RegisterIndicator(NewSMA(p))
	}
	for _, p := range cfg.EMAPeriods {
		e.RegisterIndicator(NewEMA(p))
	}
	e.RegisterIndicator(NewRSI(cfg.RSIPeriod))
	e.RegisterIndicator(NewROC(10))
	e.RegisterIndicator(NewATR(cfg.ATRPeriod))
	e.RegisterIndicator(NewHistoricalVolatility(20))
	e.RegisterIndicator(NewVolumeSMA(20))
	e.RegisterIndicator(NewVolumeRatio(20))
	e.RegisterIndicator(NewOBV())
	e.RegisterMultiIndicator(NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal))
	e.RegisterMultiIndicator(NewBollingerBands(cfg.BBPeriod, cfg.BBStdDev))
	e.RegisterMultiIndicator(NewStochastic(cfg.StochPeriod, 3))
	return e
}

// RegisterIndicator registers a single-value indicator.
func (e *Engine) RegisterIndicator(ind Indicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indicators[ind.Name()] = ind
}

// RegisterMultiIndicator registers a multi-value indicator.
func (e *Engine) RegisterMultiIndicator(ind MultiValueIndicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.multiIndics[ind.Name()] = ind
}

// CalculateAll calculates all registered indicators in parallel.
// Indicators that fail (for example on short input) are omitted from the results.
func (e *Engine) CalculateAll(ctx context.Context, bars []models.PriceBar) (map[string][]float64, map[string]map[string][]float64, error) {
	e.mu.RLock()
	indicators := make([]Indicator, 0, len(e.indicators))
	for _, ind := range e.indicators {
		indicators = append(indicators, ind)
	}
	multiIndics := make([]MultiValueIndicator, 0, len(e.multiIndics))
	for _, ind := range e.multiIndics {
		multiIndics = append(multiIndics, ind)
	}
	e.mu.RUnlock()

	singleResults := make(map[string][]float64)
	multiResults := make(map[string]map[string][]float64)
	var mu sync.Mutex
	var wg sync.WaitGroup

	singleWork := make(chan Indicator, len(indicators))
	multiWork := make(chan MultiValueIndicator, len(multiIndics))

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ind := range singleWork {
				select {
				case <-ctx.Done():
					return
				default:
					values, err := ind.Calculate(bars)
					if err == nil {
						mu.Lock()
						singleResults[ind.Name()] = values
						mu.Unlock()
					}
				}
			}
		}()
	}

	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ind := range multiWork {
				select {
				case <-ctx.Done():
					return
				default:
					values, err := ind.Calculate(bars)
					if err == nil {
						mu.Lock()
						multiResults[ind.Name()] = values
						mu.Unlock()
					}
				}
			}
		}()
	}

	for _, ind := range indicators {
		singleWork <- ind
	}
	close(singleWork)
	for _, ind := range multiIndics {
		multiWork <- ind
	}
	close(multiWork)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return singleResults, multiResults, nil
}
