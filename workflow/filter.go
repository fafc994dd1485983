package workflow

import (
	"strings"

	"github.com/jakeh134/motionflow/model"
)

// StatusAll disables the status predicate.
const StatusAll = "all"

// Criteria is the dashboard filter. Both predicates are ANDed.
type Criteria struct {
	Status string // "all", "" or a status value (aliases accepted)
	Query  string
}

// NewCriteria parses raw filter input, rejecting unknown statuses.
func NewCriteria(status, query string) (Criteria, error) {
	c := Criteria{Status: StatusAll, Query: strings.TrimSpace(query)}
	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, StatusAll) {
		return c, nil
	}
	st, err := model.ParseStatus(status)
	if err != nil {
		return Criteria{}, err
	}
	c.Status = string(st)
	return c, nil
}

// Match reports whether mo passes both predicates.
func (c Criteria) Match(mo *model.Motion) bool {
	if c.Status != "" && c.Status != StatusAll {
		want := model.Status(c.Status)
		if st, err := model.ParseStatus(c.Status); err == nil {
			want = st
		}
		if mo.Status != want {
			return false
		}
	}

	q := strings.ToLower(strings.TrimSpace(c.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{mo.CaseNumber, mo.MotionType, mo.FilerName} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the motions matching c in their original order. The result
// is a new slice and is never nil.
func Filter(motions []*model.Motion, c Criteria) []*model.Motion {
	out := make([]*model.Motion, 0, len(motions))
	for _, mo := range motions {
		if c.Match(mo) {
			out = append(out, mo)
		}
	}
	return out
}

// IDs returns the identifiers of motions in order.
func IDs(motions []*model.Motion) []string {
	ids := make([]string, len(motions))
	for i, mo := range motions {
		ids[i] = mo.ID
	}
	return ids
}
