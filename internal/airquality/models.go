package airquality

import (
	"time"
)

// Pollutant names a concentration reported alongside the air-quality index.
type Pollutant string

const (
	PM25 Pollutant = "pm2_5"
	PM10 Pollutant = "pm10"
	CO   Pollutant = "co"
	NO2  Pollutant = "no2"
	SO2  Pollutant = "so2"
	O3   Pollutant = "o3"
	NH3  Pollutant = "nh3"
)

// Pollutants lists every pollutant tracked at raw and hourly granularity.
var Pollutants = []Pollutant{PM25, PM10, CO, NO2, SO2, O3, NH3}

// Location is a monitored place. Locations are reference data created out of band.
type Location struct {
	ID        int64   `json:"id" db:"location_id"`
	Name      string  `json:"name" db:"name"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Reading is a provider's normalized observation for one location.
// Components only holds the pollutants the provider actually reported.
type Reading struct {
	AQI        int
	Components map[Pollutant]float64
}

// RawReading is one persisted observation.
type RawReading struct {
	LocationID int64     `json:"location_id" db:"location_id"`
	AQI        int       `json:"aqi" db:"aqi"`
	PM25       *float64  `json:"pm2_5" db:"pm2_5"`
	PM10       *float64  `json:"pm10" db:"pm10"`
	CO         *float64  `json:"co" db:"co"`
	NO2        *float64  `json:"no2" db:"no2"`
	SO2        *float64  `json:"so2" db:"so2"`
	O3         *float64  `json:"o3" db:"o3"`
	NH3        *float64  `json:"nh3" db:"nh3"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
}

// NewRawReading maps a provider reading onto the persisted row shape.
func NewRawReading(locationID int64, r Reading, recordedAt time.Time) RawReading {
	get := func(p Pollutant) *float64 {
		v, ok := r.Components[p]
		if !ok {
			return nil
		}
		return &v
	}
	return RawReading{
		LocationID: locationID,
		AQI:        r.AQI,
		PM25:       get(PM25),
		PM10:       get(PM10),
		CO:         get(CO),
		NO2:        get(NO2),
		SO2:        get(SO2),
		O3:         get(O3),
		NH3:        get(NH3),
		RecordedAt: recordedAt.UTC(),
	}
}

// PollutantMap returns the reading's concentrations keyed by pollutant name,
// with nil for the ones the provider omitted.
func (r RawReading) PollutantMap() map[Pollutant]*float64 {
	return map[Pollutant]*float64{
		PM25: r.PM25,
		PM10: r.PM10,
		CO:   r.CO,
		NO2:  r.NO2,
		SO2:  r.SO2,
		O3:   r.O3,
		NH3:  r.NH3,
	}
}

// HourlyRollup averages the raw readings of one location over one hour bucket.
type HourlyRollup struct {
	LocationID int64     `json:"location_id" db:"location_id"`
	HourBucket time.Time `json:"hour_bucket" db:"hour_bucket"`
	AvgAQI     float64   `json:"avg_aqi" db:"avg_aqi"`
	AvgPM25    *float64  `json:"avg_pm2_5" db:"avg_pm2_5"`
	AvgPM10    *float64  `json:"avg_pm10" db:"avg_pm10"`
	AvgCO      *float64  `json:"avg_co" db:"avg_co"`
	AvgNO2     *float64  `json:"avg_no2" db:"avg_no2"`
	AvgSO2     *float64  `json:"avg_so2" db:"avg_so2"`
	AvgO3      *float64  `json:"avg_o3" db:"avg_o3"`
	AvgNH3     *float64  `json:"avg_nh3" db:"avg_nh3"`
}

// DailyFeatureRow summarizes the hourly rollups of one location over one UTC day.
// Only pm2_5, pm10, no2 and co are carried to the daily level.
type DailyFeatureRow struct {
	LocationID  int64     `json:"location_id" db:"location_id"`
	FeatureDate time.Time `json:"feature_date" db:"feature_date"`
	MeanAQI     float64   `json:"mean_aqi" db:"mean_aqi"`
	StdAQI      *float64  `json:"std_aqi" db:"std_aqi"`
	MinAQI      float64   `json:"min_aqi" db:"min_aqi"`
	MaxAQI      float64   `json:"max_aqi" db:"max_aqi"`
	MeanPM25    *float64  `json:"mean_pm2_5" db:"mean_pm2_5"`
	MeanPM10    *float64  `json:"mean_pm10" db:"mean_pm10"`
	MeanNO2     *float64  `json:"mean_no2" db:"mean_no2"`
	MeanCO      *float64  `json:"mean_co" db:"mean_co"`
}
