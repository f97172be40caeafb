package workflow

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNodeNotFound       = errors.New("node not found")
	ErrConnectionNotFound = errors.New("connection not found")
	ErrTriggerNotFound    = errors.New("trigger not found")
	ErrDuplicateNode      = errors.New("duplicate node id")
	ErrDuplicateID        = errors.New("id already in use")
	ErrInvalidID          = errors.New("invalid id")
	ErrSelfLoop           = errors.New("connection source and dest are the same node")
	ErrIllegalConnection  = errors.New("connection violates pole rules")
	ErrTriggerMismatch    = errors.New("trigger record does not match node")
	ErrTypeImmutable      = errors.New("node type cannot change")
	ErrDataMismatch       = errors.New("node data does not match node type")
	ErrUnknownType        = errors.New("unknown node type")
	ErrInvalidCondition   = errors.New("invalid connection condition")
	ErrInvariant          = errors.New("workflow invariant violated")
)

// WorkflowError provides structured error information for graph operations.
type WorkflowError struct {
	Op      string // Operation that failed (e.g., "AddNode", "AddConnection")
	Entity  string // "node", "connection" or "trigger"
	ID      string
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *WorkflowError) Error() string {
	if e.ID != "" {
		if e.Context != "" {
			return fmt.Sprintf("%s %s %s (%s): %v", e.Op, e.Entity, e.ID, e.Context, e.Cause)
		}
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Cause)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Entity, e.Context, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *WorkflowError) Unwrap() error {
	return e.Cause
}

// ErrorBuilder provides a fluent interface for building WorkflowErrors.
type ErrorBuilder struct {
	err WorkflowError
}

// NewError creates a new error builder with the given operation.
func NewError(op string) *ErrorBuilder {
	return &ErrorBuilder{err: WorkflowError{Op: op}}
}

// Node sets the entity to "node" with the given ID.
func (b *ErrorBuilder) Node(id string) *ErrorBuilder {
	b.err.Entity = "node"
	b.err.ID = id
	return b
}

// Connection sets the entity to "connection" with the given ID.
func (b *ErrorBuilder) Connection(id string) *ErrorBuilder {
	b.err.Entity = "connection"
	b.err.ID = id
	return b
}

// Trigger sets the entity to "trigger" with the given ID.
func (b *ErrorBuilder) Trigger(id string) *ErrorBuilder {
	b.err.Entity = "trigger"
	b.err.ID = id
	return b
}

// Context sets additional context information.
func (b *ErrorBuilder) Context(format string, args ...any) *ErrorBuilder {
	b.err.Context = fmt.Sprintf(format, args...)
	return b
}

// Cause sets the underlying error cause.
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Err returns the error as an error interface.
func (b *ErrorBuilder) Err() error {
	e := b.err
	return &e
}

// NodeNotFoundError creates a node not found error.
func NodeNotFoundError(op, id string) error {
	return NewError(op).Node(id).Cause(ErrNodeNotFound).Err()
}

// ConnectionNotFoundError creates a connection not found error.
func ConnectionNotFoundError(op, id string) error {
	return NewError(op).Connection(id).Cause(ErrConnectionNotFound).Err()
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound) || errors.Is(err, ErrConnectionNotFound) || errors.Is(err, ErrTriggerNotFound)
}

// mustHold panics with an ErrInvariant-wrapping error. Used where a failed
// lookup can only mean an earlier invariant violation.
func mustHold(cond bool, op, format string, args ...any) {
	if !cond {
		panic(NewError(op).Context(format, args...).Cause(ErrInvariant).Err())
	}
}
