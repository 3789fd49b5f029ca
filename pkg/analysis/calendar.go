package analysis

import (
	"sort"

	"github.com/otherjamesbrown/conversa/pkg/transcript"
)

// Band is a fixed time-of-day bucket.
type Band string

const (
	Madrugada Band = "Madrugada"
	Manha     Band = "Manhã"
	Tarde     Band = "Tarde"
	Noite     Band = "Noite"
)

// Bands lists the time-of-day buckets in enumeration order.
var Bands = []Band{Madrugada, Manha, Tarde, Noite}

// BandFor returns the bucket containing hour.
func BandFor(hour int) Band {
	switch {
	case hour < 6:
		return Madrugada
	case hour < 12:
		return Manha
	case hour < 18:
		return Tarde
	default:
		return Noite
	}
}

// BandCount is the number of messages sent in a band.
type BandCount struct {
	Band  Band `json:"band" yaml:"band"`
	Count int  `json:"count" yaml:"count"`
}

// BandResult is the time-of-day histogram.
type BandResult struct {
	Counts  []BandCount `json:"counts" yaml:"counts"`
	Busiest Band        `json:"busiest" yaml:"busiest"`
}

// TimeBands counts messages per band. Busiest takes the earliest band
// among equal counts.
func TimeBands(msgs []transcript.Message) BandResult {
	counts := make(map[Band]int, len(Bands))
	for _, m := range msgs {
		counts[BandFor(m.Clock.Hour)]++
	}

	res := BandResult{Counts: make([]BandCount, 0, len(Bands)), Busiest: Bands[0]}
	for _, b := range Bands {
		res.Counts = append(res.Counts, BandCount{Band: b, Count: counts[b]})
		if counts[b] > counts[res.Busiest] {
			res.Busiest = b
		}
	}
	return res
}

// MonthCount is the number of messages in a calendar month (YYYY-MM).
type MonthCount struct {
	Month string `json:"month" yaml:"month"`
	Count int    `json:"count" yaml:"count"`
}

// MonthlyVolume counts messages per month, ascending by month.
func MonthlyVolume(msgs []transcript.Message) []MonthCount {
	counts := make(map[string]int)
	for _, m := range msgs {
		counts[m.Date.MonthKey()]++
	}
	out := make([]MonthCount, 0, len(counts))
	for k, v := range counts {
		out = append(out, MonthCount{Month: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// DailyAverage divides each author's message total by the number of
// distinct days they posted on.
func DailyAverage(msgs []transcript.Message) []AuthorMean {
	totals := NewCounter[string]()
	days := make(map[string]map[transcript.Date]bool)
	for _, m := range msgs {
		totals.Inc(m.Author)
		if days[m.Author] == nil {
			days[m.Author] = make(map[transcript.Date]bool)
		}
		days[m.Author][m.Date] = true
	}

	out := make([]AuthorMean, 0, totals.Len())
	for _, e := range totals.Entries() {
		out = append(out, AuthorMean{Author: e.Key, Mean: float64(e.Count) / float64(len(days[e.Key]))})
	}
	return out
}

// DayRecord is the busiest calendar day with its per-author breakdown.
type DayRecord struct {
	Date    transcript.Date `json:"date" yaml:"date"`
	Total   int             `json:"total" yaml:"total"`
	Authors []AuthorCount   `json:"authors" yaml:"authors"`
}

// DailyRecord finds the date with the most messages, the earliest seen
// among equals. It reports false for an empty transcript.
func DailyRecord(msgs []transcript.Message) (DayRecord, bool) {
	perDay := NewCounter[transcript.Date]()
	for _, m := range msgs {
		perDay.Inc(m.Date)
	}
	top := perDay.MostCommon(1)
	if len(top) == 0 {
		return DayRecord{}, false
	}

	day := top[0].Key
	authors := NewCounter[string]()
	for _, m := range msgs {
		if m.Date == day {
			authors.Inc(m.Author)
		}
	}
	return DayRecord{Date: day, Total: top[0].Count, Authors: authorCounts(authors.Entries())}, true
}
