// Package util provides logging, validation helpers, and common error types.
package util

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure classes surfaced to the operator
var (
	ErrServiceUnavailable  = errors.New("network management service unavailable")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrInterfaceNotFound   = errors.New("interface not found")
	ErrNoCandidate         = errors.New("no candidate interface")
	ErrBridgeExists        = errors.New("bridge already exists")
	ErrAlreadyBridged      = errors.New("interface already enslaved")
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrConnectionNotActive = errors.New("connection not active")
	ErrActivationFailed    = errors.New("activation failed")
)

// ServiceError wraps a failed call against the network management service
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v (is NetworkManager running?)", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return ErrServiceUnavailable
}

// NewServiceError creates a service error for a failed operation
func NewServiceError(op string, err error) *ServiceError {
	return &ServiceError{Op: op, Err: err}
}

// ParameterError reports an option value that failed validation
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// NewParameterError creates a parameter error naming the offending field
func NewParameterError(field, format string, args ...interface{}) *ParameterError {
	return &ParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a missing network interface or connection profile
type NotFoundError struct {
	Kind string // "interface" or "connection"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	if e.Kind == "interface" {
		return ErrInterfaceNotFound
	}
	return ErrConnectionNotFound
}

// NewInterfaceNotFound creates a not-found error for a network interface
func NewInterfaceNotFound(name string) *NotFoundError {
	return &NotFoundError{Kind: "interface", Name: name}
}

// NewConnectionNotFound creates a not-found error for a connection profile
func NewConnectionNotFound(name string) *NotFoundError {
	return &NotFoundError{Kind: "connection", Name: name}
}

// BridgeExistsError reports a name collision with an existing bridge profile
type BridgeExistsError struct {
	Bridge string // existing bridge profile name
	Name   string // requested connection or interface name that collided
}

func (e *BridgeExistsError) Error() string {
	return fmt.Sprintf("bridge profile %q already uses %q (use --force to recreate)", e.Bridge, e.Name)
}

func (e *BridgeExistsError) Unwrap() error {
	return ErrBridgeExists
}

// EnslavedError reports an interface that is already a port of a bridge
type EnslavedError struct {
	Interface string
	Bridge    string // owning bridge profile name
}

func (e *EnslavedError) Error() string {
	return fmt.Sprintf("interface %s is already a port of bridge %q (use --force to replace it)", e.Interface, e.Bridge)
}

func (e *EnslavedError) Unwrap() error {
	return ErrAlreadyBridged
}

// ActivationError wraps the service's failure detail for an activation attempt
type ActivationError struct {
	Connection string
	Err        error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("activating %q: %v", e.Connection, e.Err)
}

func (e *ActivationError) Unwrap() error {
	return ErrActivationFailed
}

// NotActiveError reports a deactivation attempt on an inactive connection
type NotActiveError struct {
	Connection string
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("connection %q is not active", e.Connection)
}

func (e *NotActiveError) Unwrap() error {
	return ErrConnectionNotActive
}
