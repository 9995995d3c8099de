package catalog

import (
	"context"
	"errors"

	"github.com/frahmantamala/personnel-records/internal"
)

type ReferenceChecker interface {
	Exists(ctx context.Context, kind Kind, id int64) (bool, error)
}

// RequireReference fails with NotFound when id names no row of kind.
// A nil id is accepted.
func RequireReference(ctx context.Context, refs ReferenceChecker, kind Kind, id *int64) error {
	if id == nil {
		return nil
	}
	ok, err := refs.Exists(ctx, kind, *id)
	if err != nil {
		return internal.NewInternalError("failed to check "+kind.Entity, err)
	}
	if !ok {
		return internal.NewNotFoundError(kind.Entity, *id)
	}
	return nil
}

type NameResolver interface {
	LookupName(ctx context.Context, kind Kind, id int64) (string, error)
}

// ResolveName returns the display name of a catalog row, failing with
// NotFound when the row is missing.
func ResolveName(ctx context.Context, names NameResolver, kind Kind, id int64) (string, error) {
	name, err := names.LookupName(ctx, kind, id)
	if errors.Is(err, ErrEntryNotFound) {
		return "", internal.NewNotFoundError(kind.Entity, id)
	}
	if err != nil {
		return "", internal.NewInternalError("failed to load "+kind.Entity, err)
	}
	return name, nil
}
