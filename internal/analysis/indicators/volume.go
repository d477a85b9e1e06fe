package indicators

import (
	"fmt"

	apperrors "nse-insight/internal/errors"
	"nse-insight/internal/models"
)

// VolumeSMA calculates the simple moving average of volume.
type VolumeSMA struct {
	period int
}

// NewVolumeSMA creates a new volume SMA indicator.
func NewVolumeSMA(period int) *VolumeSMA {
	return &VolumeSMA{period: period}
}

func (v *VolumeSMA) Name() string {
	return fmt.Sprintf("VolumeSMA_%d", v.period)
}

func (v *VolumeSMA) Period() int {
	return v.period
}

func (v *VolumeSMA) Calculate(bars []models.PriceBar) ([]float64, error) {
	if v.period <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < v.period {
		return nil, apperrors.ErrInsufficientData
	}

	result := nanSlice(len(bars))
	vols := volumeSeries(bars)

	for i := v.period - 1; i < len(bars); i++ {
		result[i] = mean(vols[i-v.period+1 : i+1])
	}

	return result, nil
}

// VolumeRatio calculates current volume relative to its moving average.
type VolumeRatio struct {
	period int
}

// NewVolumeRatio creates a new volume ratio indicator.
func NewVolumeRatio(period int) *VolumeRatio {
	return &VolumeRatio{period: period}
}

func (v *VolumeRatio) Name() string {
	return fmt.Sprintf("VolumeRatio_%d", v.period)
}

func (v *VolumeRatio) Period() int {
	return v.period
}

func (v *VolumeRatio) Calculate(bars []models.PriceBar) ([]float64, error) {
	if v.period <= 0 {
		return nil, apperrors.ErrInvalidPeriod
	}
	if len(bars) < v.period {
		return nil, apperrors.ErrInsufficientData
	}

	result := nanSlice(len(bars))
	vols := volumeSeries(bars)

	for i := v.period - 1; i < len(bars); i++ {
		avg := mean(vols[i-v.period+1 : i+1])
		result[i] = safeDiv(vols[i], avg, 1)
	}

	return result, nil
}

// OBV calculates On-Balance Volume.
type OBV struct{}

// NewOBV creates a new OBV indicator.
func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Name() string {
	return "OBV"
}

func (o *OBV) Period() int {
	return 1
}

func (o *OBV) Calculate(bars []models.PriceBar) ([]float64, error) {
	if len(bars) < 2 {
		return nil, apperrors.ErrInsufficientData
	}

	n := len(bars)
	result := make([]float64, n)

	for i := 1; i < n; i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			result[i] = result[i-1] + float64(bars[i].Volume)
		case bars[i].Close < bars[i-1].Close:
			result[i] = result[i-1] - float64(bars[i].Volume)
		default:
			result[i] = result[i-1]
		}
	}

	return result, nil
}
