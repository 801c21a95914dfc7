package service

import (
	"errors"
)

// 业务哨兵错误
var (
	ErrProductNotFound        = errors.New("product not found")
	ErrVariantNotFound        = errors.New("variant not found")
	ErrPricingRuleNotFound    = errors.New("pricing rule not found")
	ErrPricingRuleInvalid     = errors.New("pricing rule invalid")
	ErrPromotionNotFound      = errors.New("promotion not found")
	ErrPromotionInvalid       = errors.New("promotion invalid")
	ErrPromotionTargetInvalid = errors.New("promotion target invalid")
)

// ErrorKind 定价错误类别
type ErrorKind string

// 定价错误类别常量
const (
	ErrorKindNotFound       ErrorKind = "not_found"
	ErrorKindInvalid        ErrorKind = "invalid"
	ErrorKindPersistence    ErrorKind = "persistence"
	ErrorKindPartialFailure ErrorKind = "partial_failure"
)

// PricingError 定价领域错误：Message 可直接展示，Err 仅用于服务端日志
type PricingError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error 实现 error 接口
func (e *PricingError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

// Unwrap 返回底层错误
func (e *PricingError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newPricingError(kind ErrorKind, message string, err error) *PricingError {
	return &PricingError{Kind: kind, Message: message, Err: err}
}

func notFoundError(message string, sentinel error) *PricingError {
	return newPricingError(ErrorKindNotFound, message, sentinel)
}

func invalidError(message string, cause error) *PricingError {
	return newPricingError(ErrorKindInvalid, message, cause)
}

func persistenceError(message string, cause error) *PricingError {
	return newPricingError(ErrorKindPersistence, message, cause)
}

// KindOf 返回错误类别，非定价错误返回空
func KindOf(err error) ErrorKind {
	var pricingErr *PricingError
	if errors.As(err, &pricingErr) {
		return pricingErr.Kind
	}
	return ""
}

// SafeMessage 返回可展示的错误信息
func SafeMessage(err error, fallback string) string {
	var pricingErr *PricingError
	if errors.As(err, &pricingErr) && pricingErr.Message != "" {
		return pricingErr.Message
	}
	return fallback
}
