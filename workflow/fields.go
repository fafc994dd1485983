package workflow

import (
	"sort"
	"sync"

	"github.com/jakeh134/motionflow/model"
)

// FieldSpec describes one editable field of the review form.
type FieldSpec struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	// Scored fields carry an AI confidence and get low-confidence hints.
	Scored    bool `json:"scored"`
	Multiline bool `json:"multiline,omitempty"`
}

// Schema is the field set the review form shows for one motion type.
type Schema struct {
	MotionType string      `json:"motion_type"`
	Fields     []FieldSpec `json:"fields"`
}

// Field looks up a field by name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

var commonFields = []FieldSpec{
	{Name: "caseNumber", Label: "Case Number", Required: true, Scored: true},
	{Name: "motionType", Label: "Motion Type", Required: true, Scored: true},
	{Name: "filerName", Label: "Filer Name", Required: true, Scored: true},
}

var defaultFields = []FieldSpec{
	{Name: "reason", Label: "Reason for Motion", Scored: true, Multiline: true},
}

// SchemaRegistry maps motion types to their field sets. Unknown types get
// the common fields plus a free-text reason.
type SchemaRegistry struct {
	mu      sync.RWMutex
	byType  map[string][]FieldSpec
	typeIDs map[string]int
}

// NewSchemaRegistry returns a registry preloaded with the eviction motion types.
func NewSchemaRegistry() *SchemaRegistry {
	r := &SchemaRegistry{byType: make(map[string][]FieldSpec), typeIDs: make(map[string]int)}

	r.Register(1, "Motion for Continuance", []FieldSpec{
		{Name: "reason", Label: "Reason for Continuance", Required: true, Scored: true, Multiline: true},
		{Name: "originalDate", Label: "Original Hearing Date", Scored: true},
		{Name: "requestedDate", Label: "Requested New Date", Scored: true},
	})
	r.Register(2, "Motion to Dismiss", []FieldSpec{
		{Name: "dismissalReason", Label: "Grounds for Dismissal", Required: true, Scored: true, Multiline: true},
		{Name: "legalAuthority", Label: "Legal Authority Cited", Scored: true},
	})
	r.Register(3, "Motion for Default Judgment", []FieldSpec{
		{Name: "defaultReason", Label: "Reason for Default", Required: true, Scored: true, Multiline: true},
		{Name: "serviceDate", Label: "Date of Service", Scored: true},
		{Name: "responseDeadline", Label: "Response Deadline", Scored: true},
		{Name: "judgmentAmount", Label: "Judgment Amount Requested", Scored: true},
	})
	r.Register(4, "Motion for Stay of Execution", []FieldSpec{
		{Name: "stayReason", Label: "Reason for Stay Request", Required: true, Scored: true, Multiline: true},
		{Name: "judgmentDate", Label: "Judgment Date", Scored: true},
		{Name: "executionDate", Label: "Scheduled Execution Date", Scored: true},
		{Name: "requestedStayDuration", Label: "Requested Stay Duration", Scored: true},
	})
	r.Register(5, "Motion to Set Aside Judgment", []FieldSpec{
		{Name: "setAsideReason", Label: "Grounds for Setting Aside", Required: true, Scored: true, Multiline: true},
		{Name: "judgmentDate", Label: "Judgment Date", Scored: true},
		{Name: "filingDeadline", Label: "Filing Deadline", Scored: true},
		{Name: "legalAuthority", Label: "Legal Authority Cited", Scored: true},
	})
	return r
}

// Register adds or replaces the variant fields for a motion type.
func (r *SchemaRegistry) Register(id int, motionType string, fields []FieldSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[motionType] = append([]FieldSpec(nil), fields...)
	r.typeIDs[motionType] = id
}

// TypeID returns the numeric id of a registered motion type.
func (r *SchemaRegistry) TypeID(motionType string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.typeIDs[motionType]
	return id, ok
}

// For returns the schema of motionType.
func (r *SchemaRegistry) For(motionType string) Schema {
	r.mu.RLock()
	variant, ok := r.byType[motionType]
	r.mu.RUnlock()
	if !ok {
		variant = defaultFields
	}

	fields := make([]FieldSpec, 0, len(commonFields)+len(variant))
	fields = append(fields, commonFields...)
	fields = append(fields, variant...)
	return Schema{MotionType: motionType, Fields: fields}
}

// MotionTypes lists the registered motion types ordered by id.
func (r *SchemaRegistry) MotionTypes() []model.MotionType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.MotionType, 0, len(r.typeIDs))
	for name, id := range r.typeIDs {
		out = append(out, model.MotionType{ID: id, Name: name, CaseTypeID: model.CaseTypeEviction})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
