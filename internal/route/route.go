// Package route selects the view to show from a link and builds the links
// the home view navigates to.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"boxbreath/internal/core/model"
)

// ErrInvalidCustomTime is returned for a custom session length that is not a
// positive number of minutes.
var ErrInvalidCustomTime = errors.New("custom time must be a positive number of minutes")

// Query parameter names.
const (
	ParamView  = "view"
	ParamPhase = "phase"
	ParamLimit = "limit"

	ViewValueExercise = "exercise"
)

// View identifies a screen of the application.
type View string

const (
	ViewHome     View = "home"
	ViewExercise View = "exercise"
)

// Route is the result of resolving a link.
type Route struct {
	View    View
	Session model.SessionConfig
}

// Preset is a one-tap session length offered on the home view.
type Preset struct {
	Label string
	Limit time.Duration
}

// Presets lists the fixed session lengths of the home view.
var Presets = []Preset{
	{Label: "1 min", Limit: time.Minute},
	{Label: "3 min", Limit: 3 * time.Minute},
	{Label: "5 min", Limit: 5 * time.Minute},
	{Label: "10 min", Limit: 10 * time.Minute},
}

// Parse resolves query parameters into a route. The exercise view is chosen
// when view=exercise or when either phase or limit is present.
func Parse(query url.Values) Route {
	if query.Get(ParamView) != ViewValueExercise && !query.Has(ParamPhase) && !query.Has(ParamLimit) {
		return Route{View: ViewHome, Session: model.NewSessionConfig(model.DefaultPhaseSeconds, nil)}
	}

	phaseSeconds := model.DefaultPhaseSeconds
	if value, ok := leadingInt(query.Get(ParamPhase)); ok {
		phaseSeconds = value
	}

	var limit *time.Duration
	if value, ok := leadingInt(query.Get(ParamLimit)); ok {
		seconds, _ := model.ScaleDuration(value, time.Second)
		limit = &seconds
	}

	return Route{View: ViewExercise, Session: model.NewSessionConfig(phaseSeconds, limit)}
}

// ParseLink resolves a full or relative link such as "/?view=exercise&phase=5".
func ParseLink(link string) (Route, error) {
	parsed, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Route{}, fmt.Errorf("parse link: %w", err)
	}
	return Parse(parsed.Query()), nil
}

// ExerciseLink builds the link that opens the exercise view. A nil limit
// produces an unbounded session.
func ExerciseLink(limit *time.Duration, phaseSeconds int) string {
	link := fmt.Sprintf("/?%s=%s&%s=%d", ParamView, ViewValueExercise, ParamPhase, phaseSeconds)
	if limit != nil {
		link += fmt.Sprintf("&%s=%d", ParamLimit, int64(*limit/time.Second))
	}
	return link
}

// HomeLink returns the link of the home view.
func HomeLink() string {
	return "/"
}

// CustomLimit converts the custom-minutes input of the home view into a limit.
// Values too large to represent are rejected.
func CustomLimit(minutes string) (time.Duration, error) {
	value, ok := leadingInt(minutes)
	if !ok || value <= 0 {
		return 0, ErrInvalidCustomTime
	}
	limit, fits := model.ScaleDuration(value, time.Minute)
	if !fits {
		return 0, ErrInvalidCustomTime
	}
	return limit, nil
}

// leadingInt reads an optionally signed run of digits at the start of the
// value, ignoring anything after it ("5s" reads as 5).
func leadingInt(value string) (int, bool) {
	value = strings.TrimSpace(value)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	parsed, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0, false
	}
	return parsed, true
}
