package model

import "time"

// Session is the authenticated clerk context handed to every operation.
// It replaces ambient browser storage: handlers build it from the bearer
// token and pass it down explicitly.
type Session struct {
	TokenID   string    `json:"-"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	CourtID   string    `json:"court_id"`
	CountyID  string    `json:"county_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CanAccess reports whether the session's court owns the motion.
func (s *Session) CanAccess(m *Motion) bool {
	return s != nil && s.CourtID != "" && m.CourtID == s.CourtID
}
