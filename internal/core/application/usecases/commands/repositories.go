// Package commands holds the write side: one command value and one handler per
// operation. A handler validates its command, takes the aggregate locks it
// needs, and does its work inside a single unit of work.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	VariantRepoFactory interface {
		VariantRepository() ports.VariantRepository
	}

	// OrderUoW covers order changes that never touch stock: checkout details,
	// adjustments, fulfillments.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// VariantUoW covers catalog and ledger administration.
	VariantUoW interface {
		TxManager
		VariantRepoFactory
	}

	VariantUoWFactory interface {
		Create() VariantUoW
	}

	// UoW spans both aggregates. Transitions that record SALE or CANCELLATION
	// movements use it so the order state and the ledger commit together.
	UoW interface {
		TxManager
		OrderRepoFactory
		VariantRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
