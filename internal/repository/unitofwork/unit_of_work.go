package unitofwork

import (
	"context"

	"mindease-be/internal/repository/contract"
)

// UnitOfWork groups chunk store writes into one transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocChunkRepository() contract.DocChunkRepository
}
