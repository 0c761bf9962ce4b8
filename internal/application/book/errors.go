package book

import (
	"errors"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

func isNotModified(err error) bool {
	return errors.Is(err, book.ErrBookNotModified)
}

func mutationResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case isNotModified(err):
		return "not_modified"
	case apperrors.KindOf(err) == apperrors.KindValidation:
		return "invalid"
	default:
		return "error"
	}
}
