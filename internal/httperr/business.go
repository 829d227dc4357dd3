package httperr

import (
	"errors"
	"fmt"
)

// Kind classifica um erro de negócio. Cada kind tem um status HTTP fixo.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
)

// BusinessError é um erro esperado, reportado ao chamador com código estável.
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
}

func (e *BusinessError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// With devolve uma cópia do erro com mais um detalhe de contexto.
func (e *BusinessError) With(key string, value any) *BusinessError {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &BusinessError{Kind: e.Kind, Code: e.Code, Message: e.Message, Details: details}
}

func newErr(kind Kind, code, message string) *BusinessError {
	return &BusinessError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *BusinessError { return newErr(KindValidation, code, message) }
func Conflict(code, message string) *BusinessError   { return newErr(KindConflict, code, message) }
func NotFound(code, message string) *BusinessError   { return newErr(KindNotFound, code, message) }
func Forbidden(code, message string) *BusinessError  { return newErr(KindForbidden, code, message) }

// ErrBusiness mantém o atalho antigo: um conflito identificado só pelo código.
func ErrBusiness(code string) error {
	return Conflict(code, "")
}

// AsBusiness extrai o BusinessError da cadeia, se houver.
func AsBusiness(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

func IsBusiness(err error, code string) bool {
	if be, ok := AsBusiness(err); ok {
		return be.Code == code
	}
	return false
}

// KindOf devolve o kind do erro, ou "" para erros inesperados.
func KindOf(err error) Kind {
	if be, ok := AsBusiness(err); ok {
		return be.Kind
	}
	return ""
}
