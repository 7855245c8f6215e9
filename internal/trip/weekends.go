package trip

import "time"

// Weekends returns every Friday-to-Sunday weekend fully contained in the
// range, ordered by date. A range too short to hold a complete weekend
// yields an empty slice, not an error; callers must treat zero weekends as
// a valid outcome.
func Weekends(r DateRange) ([]Weekend, error) {
	return enumerate(r, time.Friday, 2)
}

// LongWeekends returns extended weekends. The departure day is Thursday
// when thursday is true (Friday otherwise) and the return day is Monday
// when monday is true (Sunday otherwise).
func LongWeekends(r DateRange, thursday, monday bool) ([]Weekend, error) {
	start := time.Friday
	if thursday {
		start = time.Thursday
	}
	length := 2
	if monday {
		length = 3
	}
	if thursday {
		length++
	}
	return enumerate(r, start, length)
}

// CustomTrips returns trips of a fixed duration starting every intervalDays
// from the range start. Durations and intervals below one day are clamped
// to one.
func CustomTrips(r DateRange, durationDays, intervalDays int) ([]Weekend, error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}
	if durationDays < 1 {
		durationDays = 1
	}
	if intervalDays < 1 {
		intervalDays = 1
	}

	trips := []Weekend{}
	for cur := midnight(r.Start); !cur.After(midnight(r.End)); cur = cur.AddDate(0, 0, intervalDays) {
		end := cur.AddDate(0, 0, durationDays)
		if end.After(midnight(r.End)) {
			continue
		}
		trips = append(trips, Weekend{Departure: cur, Return: end})
	}
	return trips, nil
}

func enumerate(r DateRange, startDay time.Weekday, length int) ([]Weekend, error) {
	if err := checkRange(r); err != nil {
		return nil, err
	}

	start := midnight(r.Start)
	end := midnight(r.End)

	// First departure day on or after the range start.
	offset := (int(startDay) - int(start.Weekday()) + 7) % 7
	departure := start.AddDate(0, 0, offset)

	weekends := []Weekend{}
	for ; !departure.After(end); departure = departure.AddDate(0, 0, 7) {
		ret := departure.AddDate(0, 0, length)
		// Only complete weekends count.
		if ret.After(end) {
			continue
		}
		weekends = append(weekends, Weekend{Departure: departure, Return: ret})
	}
	return weekends, nil
}

func checkRange(r DateRange) error {
	if r.Start.After(r.End) {
		return ErrInvalidRange
	}
	return nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
