package calendar

import (
	"fmt"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// System is the calendar used for display.
type System string

const (
	Gregorian System = "gregorian"
	Jalali    System = "jalali"
)

// Date is a civil date and time in the display calendar.
type Date struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// DateString formats the date as YYYY/MM/DD.
func (d Date) DateString() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// TimeString formats the time as HH:MM.
func (d Date) TimeString() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// Converter maps absolute instants to a region's civil time and display calendar.
// It never consults the process's local timezone.
type Converter struct {
	zone   *time.Location
	system System
}

// New creates a Converter for a fixed UTC offset.
func New(offset time.Duration, system System) *Converter {
	if system != Jalali {
		system = Gregorian
	}
	return &Converter{
		zone:   time.FixedZone(zoneName(offset), int(offset/time.Second)),
		system: system,
	}
}

func zoneName(offset time.Duration) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	return fmt.Sprintf("UTC%c%02d:%02d", sign, h, m)
}

// ToLocal returns the same instant expressed in the region's civil time.
func (c *Converter) ToLocal(instant time.Time) time.Time {
	return instant.In(c.zone)
}

// ToDisplay splits a civil time into display calendar fields.
func (c *Converter) ToDisplay(local time.Time) Date {
	local = c.ToLocal(local)
	if c.system == Jalali {
		pt := ptime.New(local)
		return Date{
			Year:   pt.Year(),
			Month:  int(pt.Month()),
			Day:    pt.Day(),
			Hour:   local.Hour(),
			Minute: local.Minute(),
		}
	}
	return Date{
		Year:   local.Year(),
		Month:  int(local.Month()),
		Day:    local.Day(),
		Hour:   local.Hour(),
		Minute: local.Minute(),
	}
}

// Display converts an absolute instant straight to display fields.
func (c *Converter) Display(instant time.Time) Date {
	return c.ToDisplay(c.ToLocal(instant))
}
