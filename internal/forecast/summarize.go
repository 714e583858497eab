package forecast

import (
	"github.com/shopspring/decimal"
)

// Summarize computes the daily highlights for a bucket. It panics on an empty
// bucket: buckets produced by BucketByDay always hold at least one sample.
func Summarize(samples []NormalizedSample) DaySummary {
	if len(samples) == 0 {
		panic("forecast: Summarize called with an empty day bucket")
	}

	first := samples[0]
	sum := DaySummary{
		MinTemperature: first.TemperatureC,
		MaxTemperature: first.TemperatureC,
		MaxWindSpeed:   first.WindSpeedMS,
	}

	var (
		humidity = decimal.Zero
		wind     = decimal.Zero
		pressure = decimal.Zero
	)

	for _, s := range samples {
		if s.TemperatureC < sum.MinTemperature {
			sum.MinTemperature = s.TemperatureC
		}
		if s.TemperatureC > sum.MaxTemperature {
			sum.MaxTemperature = s.TemperatureC
		}
		if s.WindSpeedMS > sum.MaxWindSpeed {
			sum.MaxWindSpeed = s.WindSpeedMS
		}
		humidity = humidity.Add(decimal.NewFromInt(int64(s.HumidityPercent)))
		wind = wind.Add(decimal.NewFromFloat(s.WindSpeedMS))
		pressure = pressure.Add(decimal.NewFromInt(int64(s.PressureHPa)))
	}

	n := decimal.NewFromInt(int64(len(samples)))
	sum.AvgHumidity = int(humidity.Div(n).Round(0).IntPart())
	sum.AvgPressure = int(pressure.Div(n).Round(0).IntPart())
	sum.AvgWindSpeed, _ = wind.Div(n).Round(1).Float64()

	return sum
}
