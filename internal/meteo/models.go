package meteo

import (
	"math"
	"time"
)

// InstantLayout is the timestamp layout the station uses in its CSV feed
// and in persisted rows.
const InstantLayout = "2006-01-02 15:04:05"

// Symbol identifies one of the station's measured data types.
type Symbol string

const (
	SymbolTemperature Symbol = "T"
	SymbolHumidity    Symbol = "H"
	SymbolPressure    Symbol = "P"
	SymbolPM10        Symbol = "PM10"
	SymbolPM25        Symbol = "PM25"
	SymbolSmoke       Symbol = "S"
)

// DataType describes a measured quantity: its symbol, unit of measurement,
// the CSV file the station publishes it under, its Italian display name and
// the rounding precision applied to readings.
type DataType struct {
	Symbol      Symbol `json:"symbol"`
	Unit        string `json:"unit"`
	FileName    string `json:"fileName"`
	ItalianName string `json:"italianName"`
	Precision   int    `json:"precision"`
}

// DataTypes lists every data type the station measures, in display order.
var DataTypes = []DataType{
	{Symbol: SymbolTemperature, Unit: "°C", FileName: "temperature.csv", ItalianName: "Temperatura", Precision: 2},
	{Symbol: SymbolHumidity, Unit: "%", FileName: "humidity.csv", ItalianName: "Umidità", Precision: 2},
	{Symbol: SymbolPressure, Unit: "hPa", FileName: "pressure.csv", ItalianName: "Pressione", Precision: 2},
	{Symbol: SymbolPM10, Unit: "µg/m³", FileName: "pm10.csv", ItalianName: "PM10", Precision: 2},
	{Symbol: SymbolPM25, Unit: "µg/m³", FileName: "pm25.csv", ItalianName: "PM2,5", Precision: 2},
	{Symbol: SymbolSmoke, Unit: "µg/m³", FileName: "smoke.csv", ItalianName: "Fumo e vapori infiammabili", Precision: 2},
}

// FromSymbol returns the data type registered under the given symbol.
func FromSymbol(s Symbol) (DataType, bool) {
	for _, dt := range DataTypes {
		if dt.Symbol == s {
			return dt, true
		}
	}
	return DataType{}, false
}

// FromUnit returns the first data type using the given unit.
func FromUnit(unit string) (DataType, bool) {
	for _, dt := range DataTypes {
		if dt.Unit == unit {
			return dt, true
		}
	}
	return DataType{}, false
}

// FromFileName returns the data type published under the given CSV file name.
func FromFileName(name string) (DataType, bool) {
	for _, dt := range DataTypes {
		if dt.FileName == name {
			return dt, true
		}
	}
	return DataType{}, false
}

// FromItalianName returns the data type with the given Italian display name.
func FromItalianName(name string) (DataType, bool) {
	for _, dt := range DataTypes {
		if dt.ItalianName == name {
			return dt, true
		}
	}
	return DataType{}, false
}

// Observation is a single timestamped reading of one data type.
type Observation struct {
	Symbol  Symbol    `json:"symbol"`
	Instant time.Time `json:"instant"` // always UTC, second resolution
	Value   float64   `json:"value"`
}

// NewObservation builds an Observation, normalizing the instant to UTC and
// rounding the value to the data type's precision.
func NewObservation(sym Symbol, instant time.Time, value float64) Observation {
	prec := 2
	if dt, ok := FromSymbol(sym); ok {
		prec = dt.Precision
	}
	return Observation{
		Symbol:  sym,
		Instant: instant.UTC().Truncate(time.Second),
		Value:   roundTo(value, prec),
	}
}

func roundTo(v float64, precision int) float64 {
	factor := math.Pow(10, float64(precision))
	return math.Round(v*factor) / factor
}
