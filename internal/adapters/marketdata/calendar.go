package marketdata

import (
	"time"

	"github.com/scmhub/calendar"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
)

// maxSessionLookback bounds the walk back to the previous trading day
const maxSessionLookback = 14

// Sessions resolves trading dates per exchange
type Sessions struct {
	loc *time.Location
	now func() time.Time
}

// NewSessions creates a resolver reporting dates in loc
func NewSessions(loc *time.Location) *Sessions {
	if loc == nil {
		loc = time.UTC
	}
	return &Sessions{loc: loc, now: time.Now}
}

// LastSession returns the most recent trading day, at or before now, of the
// exchange the ticker is listed on, as a UTC midnight date
func (s *Sessions) LastSession(ticker string) time.Time {
	return s.lastSessionAt(ticker, s.now())
}

func (s *Sessions) lastSessionAt(ticker string, now time.Time) time.Time {
	local := now.In(s.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, s.loc)

	isOpen := weekday
	if cal := calendar.GetCalendar(exchangeMIC(ticker)); cal != nil {
		isOpen = func(t time.Time) bool {
			if cal.Loc != nil {
				t = time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, cal.Loc)
			}
			return cal.IsBusinessDay(t)
		}
	}

	for i := 0; i < maxSessionLookback; i++ {
		if isOpen(day) {
			break
		}
		day = day.AddDate(0, 0, -1)
	}
	return dateOnly(day)
}

func weekday(t time.Time) bool {
	return t.Weekday() != time.Saturday && t.Weekday() != time.Sunday
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate parses a provider's YYYY-MM-DD date
func parseDate(s string) (time.Time, error) {
	return time.Parse(financial.DateLayout, s)
}
