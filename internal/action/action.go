// Package action resolves button commands into field-value patches. The
// resolution is pure: given the card's current values, the schema, and an
// explicit "now", it computes a patch without touching the card or the
// clock, so repeated resolution at the same instant is identical.
package action

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alfredjeanlab/cardwall/internal/fieldtype"
	"github.com/alfredjeanlab/cardwall/internal/model"
)

// Resolution failures are recoverable: the failing action contributes no
// patch entry and the caller reports the error inline.
var (
	ErrUnknownCommand       = errors.New("unknown command")
	ErrUnknownValueProvider = errors.New("unknown value provider")
)

// Resolve computes the single-field patch for one action. The returned
// patch is empty (never nil) when the action fails.
func Resolve(a model.Action, values model.FieldValues, schema model.Schema, now time.Time) (model.FieldValues, error) {
	field := schema.FieldByID(a.Field)
	if field == nil {
		return model.FieldValues{}, fmt.Errorf("action targets unknown field %q", a.Field)
	}

	switch a.Command {
	case model.CommandSetValue:
		return resolveSetValue(a, field, now)
	case model.CommandAddDays:
		return resolveAddDays(a, field, values, now)
	default:
		return model.FieldValues{}, fmt.Errorf("%w: %q", ErrUnknownCommand, a.Command)
	}
}

// ResolveAll resolves an ordered action list into one merged patch. Later
// actions override earlier ones on the same field. Failing actions are
// skipped; their errors are joined and returned alongside the patch.
func ResolveAll(actions []model.Action, values model.FieldValues, schema model.Schema, now time.Time) (model.FieldValues, error) {
	patch := model.FieldValues{}
	var errs []error
	for _, a := range actions {
		p, err := Resolve(a, values, schema, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for k, v := range p {
			patch[k] = v
		}
	}
	return patch, errors.Join(errs...)
}

func resolveSetValue(a model.Action, field *model.Element, now time.Time) (model.FieldValues, error) {
	switch model.ValueProvider(a.Value) {
	case model.ProviderEmpty:
		return model.FieldValues{field.ID: nil}, nil
	case model.ProviderNow:
		v, err := nowValue(field.DataType, now)
		if err != nil {
			return model.FieldValues{}, err
		}
		return model.FieldValues{field.ID: v}, nil
	default:
		return model.FieldValues{}, fmt.Errorf("%w: %q", ErrUnknownValueProvider, a.Value)
	}
}

// nowValue renders "now" in the target field's stored representation; text
// fields get a human-readable timestamp.
func nowValue(dataType model.DataType, now time.Time) (any, error) {
	switch dataType {
	case model.TypeDate:
		return now.Format(fieldtype.DateLayout), nil
	case model.TypeDateTime:
		return now.Format(time.RFC3339), nil
	case model.TypeText:
		return now.Format(fieldtype.HumanDateTimeLayout), nil
	default:
		return nil, fmt.Errorf("value provider %q does not support data type %q", model.ProviderNow, dataType)
	}
}

func resolveAddDays(a model.Action, field *model.Element, values model.FieldValues, now time.Time) (model.FieldValues, error) {
	days, err := strconv.Atoi(a.Value)
	if err != nil {
		return model.FieldValues{}, fmt.Errorf("add_days value %q is not an integer", a.Value)
	}

	// Start from the field's current value only while it is today or later;
	// a stale date restarts from now so repeated presses don't keep pushing
	// a past date further back.
	start := now
	if s, ok := values[field.ID].(string); ok {
		if t, parsed := fieldtype.ParseStored(s); parsed && !dayFloor(t).Before(dayFloor(now)) {
			start = t
		}
	}
	result := start.AddDate(0, 0, days)

	switch field.DataType {
	case model.TypeDate:
		return model.FieldValues{field.ID: dayFloor(result).Format(fieldtype.DateLayout)}, nil
	case model.TypeDateTime:
		return model.FieldValues{field.ID: result.Format(time.RFC3339)}, nil
	default:
		return model.FieldValues{}, fmt.Errorf("%q does not apply to data type %q", model.CommandAddDays, field.DataType)
	}
}

func dayFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
