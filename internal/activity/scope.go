package activity

import "time"

// Scope bounds a query on slot start time. A nil bound is open.
type Scope struct {
	From *time.Time
	To   *time.Time
}

func AllTime() Scope {
	return Scope{}
}

// Between is the half open range [from, to).
func Between(from, to time.Time) Scope {
	return Scope{From: &from, To: &to}
}

func (s Scope) Contains(t time.Time) bool {
	if s.From != nil && t.Before(*s.From) {
		return false
	}
	if s.To != nil && !t.Before(*s.To) {
		return false
	}
	return true
}

func (s Scope) IsAllTime() bool {
	return s.From == nil && s.To == nil
}
