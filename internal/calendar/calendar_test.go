package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const tehran = 3*time.Hour + 30*time.Minute

func TestJalaliDate(t *testing.T) {
	c := New(tehran, Jalali)

	d := c.Display(time.Date(2024, 10, 18, 4, 30, 0, 0, time.UTC))
	assert.Equal(t, "1403/07/27", d.DateString())
	assert.Equal(t, "08:00", d.TimeString())
}

func TestJalaliDateCrossesLocalMidnight(t *testing.T) {
	c := New(tehran, Jalali)

	d := c.Display(time.Date(2024, 10, 18, 21, 0, 0, 0, time.UTC))
	assert.Equal(t, "1403/07/28", d.DateString())
	assert.Equal(t, "00:30", d.TimeString())
}

func TestGregorianIgnoresProcessZone(t *testing.T) {
	c := New(-5*time.Hour, Gregorian)

	instant := time.Date(2024, 1, 1, 3, 0, 0, 0, time.FixedZone("elsewhere", 9*3600))
	d := c.Display(instant)
	assert.Equal(t, Date{Year: 2023, Month: 12, Day: 31, Hour: 13, Minute: 0}, d)
	assert.Equal(t, "UTC-05:00", c.ToLocal(instant).Location().String())
}

func TestUnknownSystemFallsBackToGregorian(t *testing.T) {
	instant := time.Date(2024, 10, 18, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, New(0, Gregorian).Display(instant), New(0, System("lunar")).Display(instant))
}
