package validation

import (
	"fmt"
	"time"

	"timetrack/internal/domain"
)

type startInput struct {
	ProjectID int64 `field:"project_id" validate:"gt=0"`
}

type overridesInput struct {
	ProjectID *int64 `field:"project_id" validate:"omitnil,gt=0"`
	EntryID   *int64 `field:"entry_id" validate:"omitnil,gt=0"`
}

type updateInput struct {
	ID        int64  `field:"entry_id" validate:"gt=0"`
	ProjectID *int64 `field:"project_id" validate:"omitnil,gt=0"`
	Duration  *int64 `field:"duration" validate:"omitnil,gte=0"`
}

type listInput struct {
	ProjectID *int64 `field:"project_id" validate:"omitnil,gt=0"`
	Limit     int    `field:"limit" validate:"gte=0"`
}

// ValidateStart validates the input of a new running entry
func (v *Validator) ValidateStart(projectID int64, description string, startTime *time.Time) error {
	ve := NewValidationError()
	ve.addValidatorErrors(validate.Struct(startInput{ProjectID: projectID}), "")
	v.checkDescription(ve, description)
	v.checkDate(ve, "start_time", startTime)
	return ve.OrNil()
}

// ValidateStopOverrides validates the overrides applied when stopping the running entry
func (v *Validator) ValidateStopOverrides(overrides domain.StopOverrides) error {
	ve := NewValidationError()
	ve.addValidatorErrors(validate.Struct(overridesInput{ProjectID: overrides.ProjectID, EntryID: overrides.EntryID}), "")
	if overrides.Description != nil {
		v.checkDescription(ve, *overrides.Description)
	}
	v.checkDate(ve, "end_time", overrides.EndTime)
	return ve.OrNil()
}

// ValidateEntryUpdate validates an explicit edit of an entry
func (v *Validator) ValidateEntryUpdate(id int64, update domain.EntryUpdate) error {
	ve := NewValidationError()
	if update.IsEmpty() {
		ve.AddRequiredError("update")
	}
	ve.addValidatorErrors(validate.Struct(updateInput{ID: id, ProjectID: update.ProjectID, Duration: update.Duration}), "")
	if update.Description != nil {
		v.checkDescription(ve, *update.Description)
	}
	v.checkDate(ve, "start_time", update.StartTime)
	v.checkDate(ve, "end_time", update.EndTime)
	return ve.OrNil()
}

// ValidateEntry validates a complete entry, typically after an update was applied
func (v *Validator) ValidateEntry(entry domain.TimeEntry) error {
	ve := NewValidationError()
	if entry.StartTime.IsZero() {
		ve.AddRequiredError("start_time")
	}
	if entry.ProjectID <= 0 {
		ve.AddInvalidValueError("project_id", entry.ProjectID, "must be a positive integer")
	}
	if entry.EndTime != nil {
		if entry.EndTime.Before(entry.StartTime) {
			ve.AddInvalidRangeError("time_range", map[string]time.Time{
				"start": entry.StartTime,
				"end":   *entry.EndTime,
			}, "end time must not be before start time")
		}
		if max := v.getMaxEntryDuration(); entry.Elapsed(*entry.EndTime) > max {
			ve.AddInvalidValueError("duration", entry.Elapsed(*entry.EndTime), fmt.Sprintf("must be at most %s", max))
		}
	}
	return ve.OrNil()
}

// ValidateListOptions validates the filters of an entry listing
func (v *Validator) ValidateListOptions(opts domain.ListOptions) error {
	ve := NewValidationError()
	ve.addValidatorErrors(validate.Struct(listInput{ProjectID: opts.ProjectID, Limit: opts.Limit}), "")
	v.checkDate(ve, "since", opts.Since)
	return ve.OrNil()
}
