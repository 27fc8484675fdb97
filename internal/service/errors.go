package service

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vbonduro/kitchzone/internal/localstore"
	"github.com/vbonduro/kitchzone/internal/remote"
	"github.com/vbonduro/kitchzone/internal/storage"
)

var (
	// ErrUnauthenticated is returned when no user is signed in.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrNotFound is returned when the record to change does not exist.
	ErrNotFound = errors.New("not found")
	// ErrTransient wraps any backend failure. It never changes which backend
	// is selected.
	ErrTransient = errors.New("backend operation failed")
)

// ValidationError lists the fields of a record that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid " + strings.Join(e.Fields, ", ")
}

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRecord checks rec's struct tags before anything is persisted.
func validateRecord(rec any) error {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate: %w", err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// normalize turns a backend error into one of the service errors. Only the
// backend error's text survives; callers match on the sentinels.
func normalize(logger *slog.Logger, op, backend string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	}
	if errors.Is(err, localstore.ErrMissingUser) {
		return ErrUnauthenticated
	}
	logger.Error("backend operation failed",
		"op", op, "backend", backend, "kind", remote.KindOf(err).String(), "error", err)
	return fmt.Errorf("%w: %s: %v", ErrTransient, op, err)
}

// degradeList returns an empty result for a corrupt local collection instead
// of failing, so the page still renders.
func degradeList[T any](logger *slog.Logger, op, backend string, recs []T, err error) ([]T, error) {
	if errors.Is(err, localstore.ErrCorruptRecord) {
		logger.Error("corrupt local collection, returning empty result", "op", op, "error", err)
		return []T{}, nil
	}
	if err != nil {
		return nil, normalize(logger, op, backend, err)
	}
	return recs, nil
}
