package domain

import (
	"fmt"
	"strings"
)

// WarnLevel is the freshness classification of a dated item.
type WarnLevel string

const (
	WarnFresh   WarnLevel = "fresh"
	WarnSoon    WarnLevel = "soon"
	WarnExpired WarnLevel = "expired"
)

// Rank orders levels by urgency: Expired 0, Soon 1, Fresh 2.
// Unknown levels rank after Fresh.
func (w WarnLevel) Rank() int {
	switch w {
	case WarnExpired:
		return 0
	case WarnSoon:
		return 1
	case WarnFresh:
		return 2
	default:
		return 3
	}
}

func (w WarnLevel) Valid() bool {
	return w == WarnFresh || w == WarnSoon || w == WarnExpired
}

// ParseWarnLevel accepts the English names and the German labels of the web UI.
func ParseWarnLevel(s string) (WarnLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fresh", "ok":
		return WarnFresh, nil
	case "soon", "bald":
		return WarnSoon, nil
	case "expired", "abgelaufen":
		return WarnExpired, nil
	}
	return "", fmt.Errorf("unknown warn level %q", s)
}

// Classify maps an expiry date to a warn level relative to today.
//
//	diff < -grace       -> Expired
//	0 <= diff <= soon   -> Soon
//	otherwise           -> Fresh
//
// With grace > 0, items between 1 and grace days past expiry fall into neither
// band and classify as Fresh. The comparison against -grace is strict.
func Classify(expiry, today Date, th Thresholds) WarnLevel {
	diff := DaysBetween(today, expiry)
	switch {
	case diff < -th.ExpiredGraceDays:
		return WarnExpired
	case diff >= 0 && diff <= th.SoonDays:
		return WarnSoon
	default:
		return WarnFresh
	}
}

// ClassifyText parses a DD.MM.YYYY expiry and classifies it.
func ClassifyText(expiry string, today Date, th Thresholds) (WarnLevel, error) {
	d, err := ParseDate(expiry)
	if err != nil {
		return "", err
	}
	return Classify(d, today, th), nil
}
