package entities

import (
	"fmt"
	"time"
)

// User represents a bot user. Stopping the bot deactivates the user but keeps
// their vocabulary history.
type User struct {
	ChatID    int64
	FirstName string
	LastName  string
	Username  string
	IsActive  bool
	CreatedAt time.Time
}

func NewUser(chatID int64, firstName, lastName, username string) *User {
	return &User{
		ChatID:    chatID,
		FirstName: firstName,
		LastName:  lastName,
		Username:  username,
		IsActive:  true,
	}
}

// ReminderCycle holds the five review offsets in days, counted back from the
// current day. Offsets need not be sorted or distinct; offset 0 means "words
// added today".
type ReminderCycle [5]int

// DefaultReminderCycle mirrors the registration defaults.
func DefaultReminderCycle() ReminderCycle {
	return ReminderCycle{0, 1, 3, 6, 14}
}

func (c ReminderCycle) Validate() error {
	for _, offset := range c {
		if offset < 0 {
			return fmt.Errorf("reminder offset must be non-negative, got %d", offset)
		}
	}
	return nil
}

// TargetDates returns the distinct calendar dates (midnight UTC) the cycle
// points at, counted back from asOf. Duplicate offsets collapse.
func (c ReminderCycle) TargetDates(asOf time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(c))
	dates := make([]time.Time, 0, len(c))
	for _, offset := range c {
		d := DateUTC(asOf).AddDate(0, 0, -offset)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		dates = append(dates, d)
	}
	return dates
}
