package models

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidSeason is returned when a season code is not of the form YYYYYYYY
var ErrInvalidSeason = errors.New("invalid season")

// Season is the provider's 8-digit season code, start year followed by end year (e.g. "20192020")
type Season string

// ParseSeason validates a season code
func ParseSeason(code string) (Season, error) {
	if len(code) != 8 {
		return "", fmt.Errorf("%w: %q must have 8 digits", ErrInvalidSeason, code)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return "", fmt.Errorf("%w: %q must have 8 digits", ErrInvalidSeason, code)
		}
	}

	start, err := strconv.Atoi(code[:4])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeason, code)
	}
	end, err := strconv.Atoi(code[4:])
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeason, code)
	}
	if end != start+1 {
		return "", fmt.Errorf("%w: %q end year must follow start year", ErrInvalidSeason, code)
	}

	return Season(code), nil
}

// ParseSeasons validates every code in order
func ParseSeasons(codes []string) ([]Season, error) {
	seasons := make([]Season, 0, len(codes))
	for _, code := range codes {
		season, err := ParseSeason(code)
		if err != nil {
			return nil, err
		}
		seasons = append(seasons, season)
	}
	return seasons, nil
}

// StartYear returns the year the season starts in
func (s Season) StartYear() string {
	if len(s) != 8 {
		return ""
	}
	return string(s[:4])
}

// EndYear returns the year the season ends in
func (s Season) EndYear() string {
	if len(s) != 8 {
		return ""
	}
	return string(s[4:])
}

// Dir returns the storage partition name, "YYYY-YYYY"
func (s Season) Dir() string {
	return s.StartYear() + "-" + s.EndYear()
}

func (s Season) String() string {
	return string(s)
}
