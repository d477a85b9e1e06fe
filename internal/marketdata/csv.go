package marketdata

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// CSVProvider reads daily bars from per-symbol CSV files in a directory.
// Files are named <SYMBOL>.csv with a header row of
// date,open,high,low,close,volume and dates formatted 2006-01-02.
type CSVProvider struct {
	dir string
}

// NewCSVProvider creates a provider rooted at dir.
func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir}
}

// History loads up to the last days bars for a symbol. Pass days <= 0 for
// the full file.
func (p *CSVProvider) History(ctx context.Context, symbol string, days int) ([]models.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewDataError("prices", symbol, "no data file", apperrors.ErrSymbolNotFound)
		}
		return nil, apperrors.NewDataError("prices", symbol, "opening data file", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewDataError("prices", symbol, "parsing csv", err)
	}
	if len(records) < 2 {
		return nil, apperrors.NewDataError("prices", symbol, "empty data file", apperrors.ErrInsufficientData)
	}

	var bars []models.PriceBar
	var lastDate time.Time
	for _, rec := range records[1:] {
		if len(rec) < 6 {
			return nil, apperrors.NewDataError("prices", symbol, "short csv row", nil)
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, apperrors.NewDataError("prices", symbol, "bad date "+rec[0], err)
		}
		if !lastDate.IsZero() && !date.After(lastDate) {
			return nil, apperrors.NewDataError("prices", symbol, "dates must strictly ascend", nil)
		}
		lastDate = date

		open, err1 := strconv.ParseFloat(rec[1], 64)
		high, err2 := strconv.ParseFloat(rec[2], 64)
		low, err3 := strconv.ParseFloat(rec[3], 64)
		closeP, err4 := strconv.ParseFloat(rec[4], 64)
		volume, err5 := strconv.ParseInt(rec[5], 10, 64)
		for _, perr := range []error{err1, err2, err3, err4, err5} {
			if perr != nil {
				return nil, apperrors.NewDataError("prices", symbol, "bad numeric field", perr)
			}
		}

		bars = append(bars, models.PriceBar{
			Date:   date,
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeP,
			Volume: volume,
		})
	}

	if days > 0 && len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}
