package domain

import "fmt"

type WeatherLocation struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
}

type WeatherCurrent struct {
	TempC           float64  `json:"temp_c"`
	FeelsLikeC      *float64 `json:"feels_like_c"`
	WindKph         *float64 `json:"wind_kph"`
	PrecipitationMM *float64 `json:"precipitation_mm"`
	ConditionCode   *int     `json:"condition_code"`
	ConditionText   *string  `json:"condition_text"`
}

type Weather struct {
	Location    WeatherLocation `json:"location"`
	Current     WeatherCurrent  `json:"current"`
	GeneratedAt string          `json:"generated_at"`
}

type NewsItem struct {
	Headline    string  `json:"headline"`
	URL         string  `json:"url"`
	Source      string  `json:"source"`
	PublishedAt *string `json:"published_at"`
	Summary     *string `json:"summary"`
}

type Mood struct {
	Affirmation string `json:"affirmation"`
	FocusPrompt string `json:"focus_prompt"`
}

// DailyFeed is the morning dashboard bundle.
type DailyFeed struct {
	GeneratedAt string     `json:"generated_at"`
	Weather     Weather    `json:"weather"`
	News        []NewsItem `json:"news"`
	Mood        Mood       `json:"mood"`
}

// WeatherLine renders the current conditions, e.g. "21°C & Cloudy".
func (f *DailyFeed) WeatherLine() string {
	cond := "Sunny"
	if c := f.Weather.Current.ConditionText; c != nil && *c != "" {
		cond = *c
	}
	return fmt.Sprintf("%g°C & %s", f.Weather.Current.TempC, cond)
}

// Greeting returns the dashboard salutation for the given hour of day.
func Greeting(name string, hour int) string {
	switch {
	case hour < 12:
		return fmt.Sprintf("Good Morning, %s!", name)
	case hour < 18:
		return fmt.Sprintf("Good Afternoon, %s!", name)
	case hour < 22:
		return fmt.Sprintf("Good Evening, %s!", name)
	}
	return fmt.Sprintf("Good Night, %s!", name)
}
