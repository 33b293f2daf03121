package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error collects field level problems of a user request
type Error struct {
	errors map[string]string
}

func New() *Error {
	return &Error{errors: make(map[string]string)}
}

// Add a message for the field, the first message for a field wins
func (err *Error) Add(field, message string) {
	if _, ok := err.errors[field]; ok {
		return
	}

	err.errors[field] = message
}

func (err *Error) Empty() bool {
	return len(err.errors) == 0
}

func (err *Error) Has(field string) bool {
	_, ok := err.errors[field]
	return ok
}

func (err *Error) Error() string {
	fields := make([]string, 0, len(err.errors))
	for f := range err.errors {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (err *Error) Errors() map[string]string {
	return err.errors
}

// OrNil returns nil when nothing was collected, so it can be returned as error directly
func (err *Error) OrNil() error {
	if err.Empty() {
		return nil
	}

	return err
}
