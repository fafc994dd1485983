package model

// User is a clerk or administrator assigned to exactly one court.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"` // clerk, admin
	CourtID    string `json:"court_id"`
	CourtName  string `json:"court_name"`
	CountyID   string `json:"county_id"`
	CountyName string `json:"county_name"`
	IsActive   bool   `json:"is_active"`
}

type County struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Court struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	CountyID string `json:"county_id"`
}

// CaseTypeEviction is the case type every registered motion type belongs to.
const CaseTypeEviction = 1

type CaseType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type MotionType struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CaseTypeID int    `json:"case_type_id"`
}
