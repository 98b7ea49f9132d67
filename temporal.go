package packstream

import "time"

const secondsPerDay = 24 * 60 * 60

// NewDate returns the calendar date of t in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Days: time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Unix(d.Days*secondsPerDay, 0).UTC()
}

func sinceMidnight(t time.Time) int64 {
	h, m, s := t.Clock()
	return (int64(h)*3600+int64(m)*60+int64(s))*int64(time.Second) + int64(t.Nanosecond())
}

// NewLocalTime returns the wall-clock time of day of t.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{Nanoseconds: sinceMidnight(t)}
}

func (t LocalTime) Duration() time.Duration {
	return time.Duration(t.Nanoseconds)
}

// NewTime returns the wall-clock time of day of t with t's UTC offset.
func NewTime(t time.Time) Time {
	_, off := t.Zone()
	return Time{Nanoseconds: sinceMidnight(t), TZOffsetSeconds: int64(off)}
}

func (t Time) Duration() time.Duration {
	return time.Duration(t.Nanoseconds)
}

// Location returns a fixed zone for the offset.
func (t Time) Location() *time.Location {
	return time.FixedZone("", int(t.TZOffsetSeconds))
}

// NewDateTime records the instant t with t's UTC offset.
func NewDateTime(t time.Time) DateTime {
	_, off := t.Zone()
	return DateTime{
		Seconds:         t.Unix(),
		Nanoseconds:     int64(t.Nanosecond()),
		TZOffsetSeconds: int64(off),
	}
}

func (t DateTime) Time() time.Time {
	return time.Unix(t.Seconds, t.Nanoseconds).In(time.FixedZone("", int(t.TZOffsetSeconds)))
}

// NewDateTimeZoneID records the instant t in t's named location.
func NewDateTimeZoneID(t time.Time) DateTimeZoneID {
	return DateTimeZoneID{
		Seconds:     t.Unix(),
		Nanoseconds: int64(t.Nanosecond()),
		TZID:        t.Location().String(),
	}
}

// Time resolves TZID with time.LoadLocation.
func (t DateTimeZoneID) Time() (time.Time, error) {
	loc, err := time.LoadLocation(t.TZID)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(t.Seconds, t.Nanoseconds).In(loc), nil
}

// NewLocalDateTime records the wall clock of t, dropping its location.
func NewLocalDateTime(t time.Time) LocalDateTime {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	wall := time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
	return LocalDateTime{Seconds: wall.Unix(), Nanoseconds: int64(wall.Nanosecond())}
}

// Time returns the wall clock as a UTC time.
func (t LocalDateTime) Time() time.Time {
	return time.Unix(t.Seconds, t.Nanoseconds).UTC()
}

// NewDuration splits d into seconds and nanoseconds. Months and days are
// left at zero.
func NewDuration(d time.Duration) Duration {
	return Duration{
		Seconds:     int64(d / time.Second),
		Nanoseconds: int64(d % time.Second),
	}
}
