package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type DaoError struct {
	Err           error
	Message       string
	NotFound      bool
	BadValidation bool
	Conflict      bool
}

func (e *DaoError) Error() string {
	if e.Err == nil {
		return e.Message
	} else {
		return fmt.Sprintf("%v: %v", e.Message, e.Err.Error())
	}
}

func (e *DaoError) Unwrap() error {
	return e.Err
}

func (e *DaoError) Wrap(err error) {
	e.Err = err
}

func IsNotFound(err error) bool {
	var daoErr *DaoError
	return errors.As(err, &daoErr) && daoErr.NotFound
}

func IsConflict(err error) bool {
	var daoErr *DaoError
	return errors.As(err, &daoErr) && daoErr.Conflict
}

// ValidationError collects per field messages, rendered as {"field": ["msg"]}.
type ValidationError struct {
	Fields map[string][]string
}

func (v *ValidationError) Add(field, msg string) {
	if v.Fields == nil {
		v.Fields = map[string][]string{}
	}
	v.Fields[field] = append(v.Fields[field], msg)
}

func (v *ValidationError) Empty() bool {
	return len(v.Fields) == 0
}

// OrNil returns nil when no field failed so callers can return it directly.
func (v *ValidationError) OrNil() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], ", ")))
	}
	return strings.Join(parts, "; ")
}
