package weather

// ForecastDays is the fixed forecast window requested from the provider.
const ForecastDays = 7

// DailyForecast is the simplified view of a single forecast day.
type DailyForecast struct {
	Date      string  `json:"date"`
	MaxTempC  float64 `json:"max_temp_c"`
	MinTempC  float64 `json:"min_temp_c"`
	Condition string  `json:"condition"`
}

// WeatherResponse is the reshaped provider payload returned to callers.
// Location is the place name as resolved by the provider, which may differ
// from the query string.
type WeatherResponse struct {
	Location      string          `json:"location"`
	TempC         float64         `json:"temp_c"`
	Condition     string          `json:"condition"`
	DailyForecast []DailyForecast `json:"daily_forecast"`
}
