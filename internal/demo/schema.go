package demo

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/roach88/arec/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for the demo tables.
func Schema() string {
	return schemaSQL
}

// Setup drops and recreates the demo tables on s.
func Setup(ctx context.Context, s *store.Store) error {
	if err := s.ApplySchema(ctx, schemaSQL); err != nil {
		return fmt.Errorf("setup demo schema: %w", err)
	}
	return nil
}
