package weather

import (
	"fmt"
	"strconv"
	"time"
)

// Conditions is the forecast entry chosen for a day.
type Conditions struct {
	Time        time.Time
	Temperature float64
	FeelsLike   float64
	Humidity    float64
	Conditions  string
	Description string
	WindSpeed   float64
	Summary     string
}

// SelectNoon picks the entry closest to local noon on date (YYYY-MM-DD).
// Local time uses the forecast city's offset, or the server zone when the
// provider omits it. An entry from another day is never returned.
func SelectNoon(f *Forecast, date string) (Conditions, error) {
	loc := time.Local
	if f.City.Timezone != nil {
		loc = time.FixedZone("city", *f.City.Timezone)
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return Conditions{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	noon := day.Add(12 * time.Hour)

	best := -1
	var bestDiff time.Duration
	for i, e := range f.List {
		t := time.Unix(e.Dt, 0).In(loc)
		if y, m, d := t.Date(); y != day.Year() || m != day.Month() || d != day.Day() {
			continue
		}
		diff := t.Sub(noon)
		if diff < 0 {
			diff = -diff
		}
		if best == -1 || diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if best == -1 {
		return Conditions{}, fmt.Errorf("%w for %s: please choose a date within the next 5 days", ErrForecastUnavailable, date)
	}

	e := f.List[best]
	c := Conditions{
		Time:        time.Unix(e.Dt, 0).In(loc),
		Temperature: e.Main.Temp,
		FeelsLike:   e.Main.FeelsLike,
		Humidity:    e.Main.Humidity,
		WindSpeed:   e.Wind.Speed,
	}
	if len(e.Weather) > 0 {
		c.Conditions = e.Weather[0].Main
		c.Description = e.Weather[0].Description
	}
	c.Summary = fmt.Sprintf("%s with temperature of %s°C", c.Conditions, strconv.FormatFloat(c.Temperature, 'f', -1, 64))
	return c, nil
}
