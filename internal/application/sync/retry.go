package sync

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/qbo"
)

// RetryPolicy reintentos con backoff exponencial acotado para fallos
// transitorios de la frontera QBO. Pasado MaxAttempts no hay más reintentos:
// el resultado vuelve como fallo para que un humano lo re-lance.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy 3 intentos, 200ms de base (200ms → 400ms entre intentos).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond}
}

// IsTransient decide si un fallo amerita reintento. Un fault QBO responde por
// sí mismo (429 y 5xx); un error que no es fault es transporte (timeout, DNS,
// conexión) y también se reintenta. Los 4xx de validación se reportan de una.
func IsTransient(err error) bool {
	var apiErr *qbo.APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsTransient()
	}
	return true
}

// Do ejecuta op reintentando solo fallos transitorios, con espera sensible al
// contexto. Devuelve el último error cuando se agotan los intentos.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
