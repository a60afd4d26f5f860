// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"errors"
	"net/http"

	"github.com/morganforge/tafakkur/internal/deepseek"
)

// Kind classifies a turn failure.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindMissingCredentials Kind = "missing_credentials"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindRateLimited        Kind = "rate_limited"
	KindTimeout            Kind = "timeout"
	KindEmptyResponse      Kind = "empty_response"
	KindProvider           Kind = "provider"
)

// User-facing Arabic messages per failure kind.
const (
	msgValidation         = "بيانات غير صالحة"
	msgMissingCredentials = "الخدمة غير متوفرة حالياً"
	msgInvalidCredentials = "مفتاح DeepSeek API غير صالح"
	msgRateLimited        = "تم تجاوز حد الطلبات - حاول مرة أخرى لاحقاً"
	msgTimeout            = "انتهت مهلة الاتصال - حاول مرة أخرى"
	msgEmptyResponse      = "استجابة غير صالحة من DeepSeek API"
	msgProvider           = "فشل في الحصول على استجابة من الذكاء الاصطناعي"
)

// Error is a classified turn failure. Message and Details are Arabic and
// returned to clients verbatim.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

// Unwrap exposes the underlying provider error for errors.Is checks.
func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the failure kind to the status code the API returns.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindMissingCredentials:
		return http.StatusServiceUnavailable
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindEmptyResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// newValidationError wraps collected validation messages.
func newValidationError(details []string) *Error {
	return &Error{Kind: KindValidation, Message: msgValidation, Details: details}
}

// classifyCompletionError maps a completion adapter failure onto the
// taxonomy.
func classifyCompletionError(err error) *Error {
	switch {
	case errors.Is(err, deepseek.ErrNotConfigured):
		return &Error{
			Kind:    KindMissingCredentials,
			Message: msgMissingCredentials,
			Details: []string{"مفتاح DeepSeek API غير متوفر"},
			cause:   err,
		}
	case errors.Is(err, deepseek.ErrAuthFailed):
		return &Error{Kind: KindInvalidCredentials, Message: msgInvalidCredentials, cause: err}
	case errors.Is(err, deepseek.ErrRateLimited):
		return &Error{Kind: KindRateLimited, Message: msgRateLimited, cause: err}
	case errors.Is(err, deepseek.ErrTimeout):
		return &Error{Kind: KindTimeout, Message: msgTimeout, cause: err}
	case errors.Is(err, deepseek.ErrEmptyResponse):
		return &Error{Kind: KindEmptyResponse, Message: msgEmptyResponse, cause: err}
	default:
		return &Error{Kind: KindProvider, Message: msgProvider, cause: err}
	}
}
