package book

import (
	"fmt"

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrBookNotModified 更新或删除没有影响任何记录
	ErrBookNotModified = apperrors.ErrNotModified

	ErrInvalidISBN            = apperrors.New(apperrors.ErrCodeInvalidISBN, fmt.Sprintf("isbn must be %d-%d characters", MinISBNLength, MaxISBNLength))
	ErrInvalidGenre           = apperrors.New(apperrors.ErrCodeInvalidGenre, "genre is not one of the supported genres")
	ErrInvalidPublicationYear = apperrors.New(apperrors.ErrCodeInvalidYear, fmt.Sprintf("publication_year must be between %d and %d", MinPublicationYear, MaxPublicationYear))
	ErrInvalidPrice           = apperrors.New(apperrors.ErrCodeInvalidPrice, "price must be a non-negative number")
	ErrEmptyField             = apperrors.New(apperrors.ErrCodeEmptyField, "field must not be empty")
)

func invalidField(field, reason string) error {
	return ErrEmptyField.WithMessage(field + " " + reason)
}

// NotFound 带图书ID的不存在错误
func NotFound(id string) error {
	return ErrBookNotFound.WithMessage(fmt.Sprintf("Book %s not found", id))
}
