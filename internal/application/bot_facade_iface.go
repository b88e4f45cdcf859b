package application

import (
	"context"

	"wikiukbot/internal/domain/model"
)

// ---- small interfaces to decouple the facade from concrete usecase structs ----

type InlineUseCaseIface interface {
	Answer(ctx context.Context, rawQuery string) (*model.InlineAnswer, error)
}

// Catalog is the subset of the i18n translator the facade reads.
type Catalog interface {
	T(key string, args ...interface{}) string
	Privacy() string
}
