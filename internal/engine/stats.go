package engine

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	// StatsKey is the store key holding the daily statistics payload.
	StatsKey = "pomodoro_stats"

	// RetentionDays is how far back daily statistics are kept.
	RetentionDays = 90

	dateLayout = "2006-01-02"
)

// DailyStat aggregates completed work sessions for one calendar date.
type DailyStat struct {
	Date              string `json:"date"`
	CompletedSessions int    `json:"completedSessions"`
	TotalFocusTime    int    `json:"totalFocusTime"` // seconds
}

// statsBook holds DailyStat entries keyed by date.
type statsBook map[string]DailyStat

func (b statsBook) record(date string, seconds int) DailyStat {
	st, ok := b[date]
	if !ok {
		st = DailyStat{Date: date}
	}
	st.CompletedSessions++
	st.TotalFocusTime += seconds
	b[date] = st
	return st
}

func (b statsBook) get(date string) DailyStat {
	if st, ok := b[date]; ok {
		return st
	}
	return DailyStat{Date: date}
}

// merge adds every entry of other into b.
func (b statsBook) merge(other statsBook) {
	for date, st := range other {
		cur := b.get(date)
		cur.CompletedSessions += st.CompletedSessions
		cur.TotalFocusTime += st.TotalFocusTime
		b[date] = cur
	}
}

// prune drops entries dated before cutoff. Dates are fixed-width ISO strings,
// so string order is calendar order.
func (b statsBook) prune(cutoff string) bool {
	removed := false
	for date := range b {
		if date < cutoff {
			delete(b, date)
			removed = true
		}
	}
	return removed
}

// week returns the seven days ending at today, oldest first.
func (b statsBook) week(today time.Time) []DailyStat {
	days := make([]DailyStat, 0, 7)
	for i := 6; i >= 0; i-- {
		days = append(days, b.get(dateKey(today.AddDate(0, 0, -i))))
	}
	return days
}

func (b statsBook) sorted() []DailyStat {
	out := make([]DailyStat, 0, len(b))
	for _, st := range b {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func dateKey(t time.Time) string {
	return t.Format(dateLayout)
}

func encodeStats(b statsBook) (string, error) {
	data, err := json.Marshal(b.sorted())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeStats parses a stored payload. Records without a valid date are
// dropped and repeated dates are summed.
func decodeStats(payload string) (statsBook, error) {
	var records []DailyStat
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, err
	}
	b := make(statsBook, len(records))
	for _, r := range records {
		if _, err := time.Parse(dateLayout, r.Date); err != nil {
			continue
		}
		if r.CompletedSessions < 0 {
			r.CompletedSessions = 0
		}
		if r.TotalFocusTime < 0 {
			r.TotalFocusTime = 0
		}
		if prev, ok := b[r.Date]; ok {
			r.CompletedSessions += prev.CompletedSessions
			r.TotalFocusTime += prev.TotalFocusTime
		}
		b[r.Date] = r
	}
	return b, nil
}
