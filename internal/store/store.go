package store

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/queueview/internal/tabular"
	"github.com/kiranshivaraju/queueview/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// Store is the data access interface. All database operations go through here.
// The job tables are read through the embedded tabular.Store.
type Store interface {
	tabular.Store

	Ping(ctx context.Context) error

	GetUser(ctx context.Context, username string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
}
