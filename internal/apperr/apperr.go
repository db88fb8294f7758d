// Package apperr is the error taxonomy surfaced to callers of the workflow
// layer. Every error leaving the gateway or the workflow guards carries one
// of the kinds below.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a failed client-side precondition. It never reaches the network.
	KindValidation
	// KindAuthentication means the credential is expired or invalid; the session must end.
	KindAuthentication
	// KindForbidden is a 403: the actor may not perform the action.
	KindForbidden
	// KindNotFound is a 404.
	KindNotFound
	// KindConflict means the entity already changed state; refresh, do not retry.
	KindConflict
	// KindNetwork is a transport failure; surfaced for manual retry.
	KindNetwork
	// KindServer is a 5xx or an unreadable response.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	}
	return "unknown"
}

var fallbackMessages = map[Kind]string{
	KindValidation:     "Dados inválidos",
	KindAuthentication: "Sessão expirada. Faça login novamente",
	KindForbidden:      "Você não tem permissão para esta ação",
	KindNotFound:       "Item não encontrado",
	KindConflict:       "Este item já foi atualizado. Recarregando",
	KindNetwork:        "Erro de conexão. Verifique sua internet e tente novamente",
	KindServer:         "Erro no servidor. Tente novamente mais tarde",
	KindUnknown:        "Erro inesperado",
}

// Error is a classified error. Message is what the user sees; Err is the
// underlying cause kept for logs.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fallbackMessages[e.Kind]
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation builds a client-side precondition failure.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the normalized human-readable message for err, falling
// back to a generic message for the kind when the source supplied none.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return fallbackMessages[e.Kind]
	}
	return fallbackMessages[KindUnknown]
}
