package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAuth                = errors.New("invalid credentials")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrForbiddenTransition = errors.New("operation not allowed in current status")
	ErrNotEligible         = errors.New("not eligible")
	ErrNotFound            = errors.New("not found")
	ErrAlreadyMatched      = errors.New("already matched")
	ErrConflict            = errors.New("conflict")
	ErrForbidden           = errors.New("forbidden")
)

// ValidationError 输入校验失败，Field 为空表示整体错误
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

// StateError 状态机拒绝某个操作；Kind 为对应的哨兵错误
type StateError struct {
	Kind   error
	Entity string
	ID     string
	Status string
	Detail string
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("%s %s is %s", e.Entity, e.ID, e.Status)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *StateError) Unwrap() error { return e.Kind }

func NotFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}
