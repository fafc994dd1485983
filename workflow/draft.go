package workflow

import (
	"time"

	"github.com/jakeh134/motionflow/model"
)

// SaveFieldEdits merges patch into the motion's extracted data. Status is
// left untouched.
func SaveFieldEdits(mo *model.Motion, patch map[string]string, now time.Time) {
	if len(patch) == 0 {
		return
	}
	if mo.ExtractedData == nil {
		mo.ExtractedData = make(map[string]string, len(patch))
	}
	for k, v := range patch {
		mo.ExtractedData[k] = v
	}
	mo.UpdatedAt = now
}

// Draft collects unsaved field edits for one motion. Dirty stays set until
// Save or Discard.
type Draft struct {
	motion *model.Motion
	patch  map[string]string
}

func NewDraft(mo *model.Motion) *Draft {
	return &Draft{motion: mo, patch: make(map[string]string)}
}

// Edit stages a value for field.
func (d *Draft) Edit(field, value string) {
	d.patch[field] = value
}

// Value returns the staged value for field, falling back to the saved one.
func (d *Draft) Value(field string) string {
	if v, ok := d.patch[field]; ok {
		return v
	}
	return d.motion.ExtractedData[field]
}

func (d *Draft) Dirty() bool {
	return len(d.patch) > 0
}

// Pending returns a copy of the staged edits.
func (d *Draft) Pending() map[string]string {
	out := make(map[string]string, len(d.patch))
	for k, v := range d.patch {
		out[k] = v
	}
	return out
}

// Save applies staged edits to the motion and clears the dirty flag.
func (d *Draft) Save(now time.Time) {
	SaveFieldEdits(d.motion, d.patch, now)
	d.patch = make(map[string]string)
}

func (d *Draft) Discard() {
	d.patch = make(map[string]string)
}
