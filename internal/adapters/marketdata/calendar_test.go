package marketdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessions_LastSession(t *testing.T) {
	s := NewSessions(time.UTC)

	// Sunday rolls back to Friday
	sunday := time.Date(2024, 5, 12, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), s.lastSessionAt("IBM", sunday))

	// A regular weekday is its own session
	wednesday := time.Date(2024, 5, 8, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), s.lastSessionAt("IBM", wednesday))
}

func TestSessions_UsesMarketTimezone(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	s := NewSessions(ist)

	// Late Tuesday UTC is already Wednesday in IST
	at := time.Date(2024, 5, 7, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), s.lastSessionAt("TCS.NS", at))
}
