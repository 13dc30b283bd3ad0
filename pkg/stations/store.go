package stations

import (
	"context"
	"errors"
	"fmt"

	"github.com/travigo/countdown/pkg/ctdf"
)

var ErrNotFound = errors.New("stop not found")

type Category string

const (
	CategoryAll       Category = "all"
	CategoryBus       Category = "bus"
	CategoryRiver     Category = "river"
	CategoryStation   Category = "station"
	CategoryFavourite Category = "favourite"
)

func ParseCategory(value string) (Category, error) {
	switch category := Category(value); category {
	case CategoryAll, CategoryBus, CategoryRiver, CategoryStation, CategoryFavourite:
		return category, nil
	case "":
		return CategoryAll, nil
	default:
		return "", fmt.Errorf("unknown stop category %q", value)
	}
}

// Store is the local favourites and stations database
type Store interface {
	// HasStations reports whether station reference data has been imported
	HasStations(ctx context.Context) (bool, error)
	// ImportStations loads the station CSV at path, keeping existing favourites
	ImportStations(ctx context.Context, path string) (int, error)

	AddStop(ctx context.Context, stop ctdf.Stop) error
	SetFavourite(ctx context.Context, code string, favourite bool) error
	IsFavourite(ctx context.Context, code string) (bool, error)

	QueryStops(ctx context.Context, category Category) ([]ctdf.Stop, error)

	Close() error
}

const (
	recordCategoryStop    = "stop"
	recordCategoryStation = "station"
)
