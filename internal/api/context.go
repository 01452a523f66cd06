package api

import (
	"context"

	"github.com/terra-clan/box-office/internal/catalog"
)

type contextKey string

const stateContextKey contextKey = "catalog_state"

// StateFromContext extracts the pinned catalog state from context
func StateFromContext(ctx context.Context) *catalog.State {
	state, ok := ctx.Value(stateContextKey).(*catalog.State)
	if !ok {
		return nil
	}
	return state
}

// ContextWithState adds a catalog state to context
func ContextWithState(ctx context.Context, state *catalog.State) context.Context {
	return context.WithValue(ctx, stateContextKey, state)
}
