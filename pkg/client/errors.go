package client

import (
	"errors"
	"fmt"
)

// ErrNetwork 请求未到达服务端或响应无法解析
var ErrNetwork = errors.New("network error")

// 与服务端 reason 一一对应
var (
	ErrValidation          = errors.New("validation failed")
	ErrAuth                = errors.New("not authenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrForbiddenTransition = errors.New("operation not allowed in current status")
	ErrAlreadyMatched      = errors.New("already matched")
	ErrConflict            = errors.New("conflict")
	ErrNotEligible         = errors.New("not eligible")
	ErrRateLimited         = errors.New("rate limited")
	ErrTimeout             = errors.New("request timed out")
)

var reasons = map[string]error{
	"validation":           ErrValidation,
	"auth":                 ErrAuth,
	"forbidden":            ErrForbidden,
	"not_found":            ErrNotFound,
	"invalid_transition":   ErrInvalidTransition,
	"forbidden_transition": ErrForbiddenTransition,
	"already_matched":      ErrAlreadyMatched,
	"conflict":             ErrConflict,
	"not_eligible":         ErrNotEligible,
	"rate_limited":         ErrRateLimited,
	"timeout":              ErrTimeout,
}

// APIError success=false 的响应；Message 可直接展示给用户
type APIError struct {
	Code    int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Code, e.Reason)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

func (e *APIError) Is(target error) bool {
	s, ok := reasons[e.Reason]
	return ok && s == target
}
