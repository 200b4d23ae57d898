// Package simtime is the simulated calendar: 12 months of 30 days, 360-day years.
package simtime

import "fmt"

const (
	DaysPerMonth  = 30
	MonthsPerYear = 12
	DaysPerYear   = DaysPerMonth * MonthsPerYear
)

var monthNames = [MonthsPerYear]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Date is a day count since the start of year 0.
type Date struct {
	Days int `json:"days"`
}

// New builds a date from a year, 1-based month and 1-based day.
func New(year, month, day int) Date {
	return Date{Days: year*DaysPerYear + (month-1)*DaysPerMonth + (day - 1)}
}

func (d Date) Year() int  { return d.Days / DaysPerYear }
func (d Date) Month() int { return d.Days%DaysPerYear/DaysPerMonth + 1 }
func (d Date) Day() int   { return d.Days%DaysPerMonth + 1 }

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date { return Date{Days: d.Days + n} }

// AddMonths returns the date n months later.
func (d Date) AddMonths(n int) Date { return d.AddDays(n * DaysPerMonth) }

func (d Date) Before(o Date) bool { return d.Days < o.Days }

// YearsSince returns the fractional years between o and d.
func (d Date) YearsSince(o Date) float64 {
	return float64(d.Days-o.Days) / DaysPerYear
}

func (d Date) String() string {
	return fmt.Sprintf("%02d %s %04d", d.Day(), monthNames[d.Month()-1], d.Year())
}

// Clock is the world's current date. Systems read it; the engine advances it.
type Clock struct {
	Now Date
}

// Advance moves the clock forward by n days.
func (c *Clock) Advance(n int) { c.Now = c.Now.AddDays(n) }
