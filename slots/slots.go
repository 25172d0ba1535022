package slots

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// Availability is a generated slot tagged with whether it is already taken.
type Availability struct {
	Time   string `json:"time"`
	Booked bool   `json:"booked"`
}

// Generate returns the HH:MM labels starting at open, advancing by interval
// minutes and stopping strictly before closing. Labels that cannot be parsed,
// a non-positive interval or open >= closing yield an empty slice.
func Generate(open, closing string, interval int) []string {
	start, ok := parseLabel(open)
	if !ok {
		return []string{}
	}

	end, ok := parseLabel(closing)
	if !ok || interval <= 0 {
		return []string{}
	}

	labels := []string{}

	for m := start; m < end; m += interval {
		labels = append(labels, formatLabel(m))
	}

	return labels
}

// Classify marks every slot in all that appears verbatim in booked.
func Classify(all, booked []string) []Availability {
	result := make([]Availability, 0, len(all))

	for _, slot := range all {
		result = append(result, Availability{
			Time:   slot,
			Booked: slices.Contains(booked, slot),
		})
	}

	return result
}

// Available returns the labels of all that are not present in booked.
func Available(all, booked []string) []string {
	free := []string{}

	for _, a := range Classify(all, booked) {
		if !a.Booked {
			free = append(free, a.Time)
		}
	}

	return free
}

// IsBooked reports whether slot is in booked.
func IsBooked(slot string, booked []string) bool {
	return slices.Contains(booked, slot)
}

// Valid reports whether label is a well formed HH:MM time of day.
func Valid(label string) bool {
	_, ok := parseLabel(label)
	return ok
}

func parseLabel(label string) (int, bool) {
	hh, mm, found := strings.Cut(strings.TrimSpace(label), ":")
	if !found || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, false
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}

	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}

	total := h*60 + m
	if total > minutesPerDay {
		return 0, false
	}

	return total, true
}

func formatLabel(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
