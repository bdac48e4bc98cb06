package domain

import "errors"

var (
	// ErrStoreUnavailable indica falha de infraestrutura no store de contadores
	// (conexão recusada, timeout, erro de protocolo/script).
	// Quem chama trata como Admit (fail-open).
	ErrStoreUnavailable = errors.New("rate limit store unavailable")

	// ErrQuotaExceeded classifica um Reject. Não é falha: é operação normal.
	ErrQuotaExceeded = errors.New("rate limit quota exceeded")
)

// StoreError carrega a causa original (timeout, conexão, script) e ainda
// casa com ErrStoreUnavailable em errors.Is.
type StoreError struct {
	Err error
}

// NewStoreError classifica err como ErrStoreUnavailable sem perder a causa.
func NewStoreError(err error) error {
	return &StoreError{Err: err}
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return ErrStoreUnavailable.Error()
	}
	return ErrStoreUnavailable.Error() + ": " + e.Err.Error()
}

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

func (e *StoreError) Unwrap() error { return e.Err }

func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}
