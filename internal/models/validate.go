// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2024-2026 koano contributors
// https://github.com/ushiradineth/koano

package models

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ushiradineth/koano/internal/pkg/errors"
)

// validate is the shared validator instance. Struct tag validation only,
// no custom validators registered.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the form payload against its struct tags.
func (in *CreateEventInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fieldErrors(err)
	}
	if _, err := time.LoadLocation(in.Timezone); err != nil {
		return errors.ValidationFailed(map[string]string{
			"timezone": "must be a valid IANA zone",
		})
	}
	return nil
}

// Validate checks the partial update payload against its struct tags.
func (in *UpdateEventInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return fieldErrors(err)
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return errors.ValidationFailed(map[string]string{
				"timezone": "must be a valid IANA zone",
			})
		}
	}
	if in.StartTime != nil && in.EndTime != nil && !in.StartTime.Before(*in.EndTime) {
		return errors.ValidationFailed(map[string]string{
			"end_time": "must be strictly after start_time",
		})
	}
	return nil
}

// Apply overlays the non-nil fields onto the event.
func (in *UpdateEventInput) Apply(e *Event) {
	if in.Title != nil {
		e.Title = *in.Title
	}
	if in.StartTime != nil {
		e.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		e.EndTime = *in.EndTime
	}
	if in.Timezone != nil {
		e.Timezone = *in.Timezone
	}
	if in.Repeated != nil {
		e.Repeated = *in.Repeated
	}
}

// fieldErrors converts validator failures into the field-keyed
// validation error the handlers return.
func fieldErrors(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.InvalidInput(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = "failed " + fe.Tag() + " validation"
	}
	return errors.ValidationFailed(fields)
}
