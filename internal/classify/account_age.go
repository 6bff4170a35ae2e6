package classify

import (
	"fmt"
	"time"
)

// AncestralLabel is returned for identifiers below the smallest anchor,
// accounts older than the calibration curve can resolve.
const AncestralLabel = "una era ancestral"

type ageAnchor struct {
	id      int64
	created time.Time
}

func monthDate(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// ageAnchors maps known numeric identifiers to observed creation months.
// This is a heuristic calibration curve, not an authoritative source; the
// list must stay sorted by identifier.
var ageAnchors = []ageAnchor{
	{1000000, monthDate(2013, time.August)},
	{10000000, monthDate(2014, time.March)},
	{40000000, monthDate(2014, time.October)},
	{100000000, monthDate(2015, time.July)},
	{200000000, monthDate(2016, time.May)},
	{300000000, monthDate(2017, time.January)},
	{400000000, monthDate(2017, time.October)},
	{500000000, monthDate(2018, time.May)},
	{700000000, monthDate(2019, time.January)},
	{900000000, monthDate(2019, time.August)},
	{1100000000, monthDate(2020, time.March)},
	{1400000000, monthDate(2020, time.October)},
	{1700000000, monthDate(2021, time.May)},
	{2100000000, monthDate(2021, time.December)},
	{5000000000, monthDate(2022, time.September)},
	{6000000000, monthDate(2023, time.March)},
	{7000000000, monthDate(2023, time.November)},
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// EstimateAccountAge estimates the creation month of an account from its
// numeric identifier. Identifiers between two anchors are interpolated
// linearly; identifiers past the last anchor are extrapolated using the
// slope of the final segment.
func EstimateAccountAge(userID int64) string {
	if userID < ageAnchors[0].id {
		return AncestralLabel
	}

	for i := 1; i < len(ageAnchors); i++ {
		if userID <= ageAnchors[i].id {
			return formatMonth(interpolate(ageAnchors[i-1], ageAnchors[i], userID))
		}
	}

	prev, last := ageAnchors[len(ageAnchors)-2], ageAnchors[len(ageAnchors)-1]
	slope := last.created.Sub(prev.created).Seconds() / float64(last.id-prev.id)
	estimated := last.created.Add(time.Duration(float64(userID-last.id)*slope) * time.Second)
	return formatMonth(estimated)
}

func interpolate(a, b ageAnchor, userID int64) time.Time {
	fraction := float64(userID-a.id) / float64(b.id-a.id)
	return a.created.Add(time.Duration(fraction * float64(b.created.Sub(a.created))))
}

func formatMonth(date time.Time) string {
	return fmt.Sprintf("%s de %d", spanishMonths[date.Month()-1], date.Year())
}
