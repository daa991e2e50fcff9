package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrQueryNotFound is returned when a query id is not in the catalog
type ErrQueryNotFound struct {
	QueryId string
}

func (e *ErrQueryNotFound) Error() string {
	return fmt.Sprintf("query not found: %s", e.QueryId)
}

// From checks if the given error is an ErrQueryNotFound
func (e *ErrQueryNotFound) From(err error) bool {
	var notFound *ErrQueryNotFound
	return errors.As(err, &notFound)
}

// ErrDuplicateQueryId is returned when registering a query whose id already exists
type ErrDuplicateQueryId struct {
	QueryId string
}

func (e *ErrDuplicateQueryId) Error() string {
	return fmt.Sprintf("query id already registered: %s", e.QueryId)
}

func (e *ErrDuplicateQueryId) From(err error) bool {
	var dup *ErrDuplicateQueryId
	return errors.As(err, &dup)
}

// ErrUndefinedPlaceholder is returned at registration time when the template
// references tokens never declared as parameters. Execution would send a
// literal unresolved token to the backend, so this is a hard error.
type ErrUndefinedPlaceholder struct {
	QueryId string
	Tokens  []string
}

func (e *ErrUndefinedPlaceholder) Error() string {
	return fmt.Sprintf("query %s: template references undeclared parameters: %s",
		e.QueryId, strings.Join(e.Tokens, ", "))
}

func (e *ErrUndefinedPlaceholder) From(err error) bool {
	var undef *ErrUndefinedPlaceholder
	return errors.As(err, &undef)
}

// ErrInvalidParameterDefinition is returned when a parameter definition is
// malformed (select kind without options, range default with lo > hi, ...)
type ErrInvalidParameterDefinition struct {
	Parameter string
	Reason    string
}

func (e *ErrInvalidParameterDefinition) Error() string {
	return fmt.Sprintf("invalid parameter definition %q: %s", e.Parameter, e.Reason)
}

func (e *ErrInvalidParameterDefinition) From(err error) bool {
	var invalid *ErrInvalidParameterDefinition
	return errors.As(err, &invalid)
}

// ErrInvalidSubmission is returned when a contributed query fails field
// validation before reaching placeholder cross-validation
type ErrInvalidSubmission struct {
	Field  string
	Reason string
}

func (e *ErrInvalidSubmission) Error() string {
	return fmt.Sprintf("invalid submission field %q: %s", e.Field, e.Reason)
}

func (e *ErrInvalidSubmission) From(err error) bool {
	var invalid *ErrInvalidSubmission
	return errors.As(err, &invalid)
}

// ErrParameterValidation is returned before execution when a supplied value
// violates its parameter definition. Parameter names the slot, Reason the
// specific violated rule.
type ErrParameterValidation struct {
	Parameter string
	Reason    string
}

func (e *ErrParameterValidation) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Parameter, e.Reason)
}

func (e *ErrParameterValidation) From(err error) bool {
	var validation *ErrParameterValidation
	return errors.As(err, &validation)
}

// ErrQueryExecution is returned when the backend rejects the query or fails
// transiently. The runner does not retry; rerunning is a user action.
type ErrQueryExecution struct {
	QueryId string
	Message string
}

func (e *ErrQueryExecution) Error() string {
	return fmt.Sprintf("query %s failed: %s", e.QueryId, e.Message)
}

func (e *ErrQueryExecution) From(err error) bool {
	var exec *ErrQueryExecution
	return errors.As(err, &exec)
}

// ErrUnresolvedPlaceholder indicates tokens survived rendering despite the
// value set passing validation. This is an internal invariant violation, not
// a user input error; callers log it loudly and show a generic message.
type ErrUnresolvedPlaceholder struct {
	QueryId string
	Tokens  []string
}

func (e *ErrUnresolvedPlaceholder) Error() string {
	return fmt.Sprintf("query %s: unresolved placeholders after rendering: %s",
		e.QueryId, strings.Join(e.Tokens, ", "))
}

func (e *ErrUnresolvedPlaceholder) From(err error) bool {
	var unresolved *ErrUnresolvedPlaceholder
	return errors.As(err, &unresolved)
}
