package models

// Appointment is a confirmed booking of one hour on one day by one user.
// Day is denormalized so an appointment snapshot is self-describing in
// events and notifications.
type Appointment struct {
	Hour   string `json:"hour"`
	UserID int64  `json:"user_id"`
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Day    string `json:"day"`
}

// Day holds the slot state of a single calendar date: which hours are
// currently bookable and which appointments exist. Booked hours are not
// required to be a subset of open - closing an hour never invalidates an
// existing appointment.
type Day struct {
	Open   []string      `json:"open"`
	Booked []Appointment `json:"booked"`
}

// IsBooked reports whether the hour already has an appointment.
// Hour comparison is exact string match, no normalization.
func (d *Day) IsBooked(hour string) bool {
	for _, a := range d.Booked {
		if a.Hour == hour {
			return true
		}
	}
	return false
}

// IsOpen reports whether the hour is currently offered for booking.
func (d *Day) IsOpen(hour string) bool {
	for _, h := range d.Open {
		if h == hour {
			return true
		}
	}
	return false
}

// AppointmentBy returns the user's appointment for this day, if any.
// At most one exists per user per day.
func (d *Day) AppointmentBy(userID int64) (Appointment, bool) {
	for _, a := range d.Booked {
		if a.UserID == userID {
			return a, true
		}
	}
	return Appointment{}, false
}

// FreeHours returns open hours that are not yet booked, in the stored
// (ascending) order of the open set.
func (d *Day) FreeHours() []string {
	free := make([]string, 0, len(d.Open))
	for _, h := range d.Open {
		if !d.IsBooked(h) {
			free = append(free, h)
		}
	}
	return free
}

// Calendar maps ISO day keys (YYYY-MM-DD) to day slot state. It is the
// single unit of durable state and is always persisted as a whole.
type Calendar map[string]*Day

// Clone deep-copies the calendar so callers can hand out snapshots
// without exposing store-owned state.
func (c Calendar) Clone() Calendar {
	out := make(Calendar, len(c))
	for key, day := range c {
		cp := &Day{
			Open:   append([]string(nil), day.Open...),
			Booked: append([]Appointment(nil), day.Booked...),
		}
		out[key] = cp
	}
	return out
}

// HourStatus pairs a catalog hour with its open flag for the admin's
// slot management view.
type HourStatus struct {
	Hour string `json:"hour"`
	Open bool   `json:"open"`
}

// PendingSelection is a user's in-progress, not-yet-confirmed slot choice.
// It lives only in the pending registry and is lost on restart.
type PendingSelection struct {
	UserID int64  `json:"user_id"`
	Day    string `json:"day"`
	Hour   string `json:"hour"`
}
