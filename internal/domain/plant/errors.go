package plant

import apperrors "github.com/yanqian/ecoplot/pkg/errors"

// ErrInvalidServiceKind is returned by every accessor given a kind outside the three services.
var ErrInvalidServiceKind = &apperrors.AppError{
	Code:    apperrors.CodeInvalidServiceKind,
	Message: "invalid service kind",
}
