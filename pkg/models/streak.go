package models

// StreakRecord is the daily-engagement counter stored per learner+language.
// LastDate is a calendar date in "2006-01-02" form; the counter continues if
// the stored date is today or yesterday and resets otherwise.
type StreakRecord struct {
	Count    int    `json:"count"`
	LastDate string `json:"last_date"`
}
