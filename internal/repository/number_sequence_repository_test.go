package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberSequenceGapless(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewNumberSequenceRepository(db)
	ctx := context.Background()

	for want := 1; want <= 5; want++ {
		n, err := repo.GetNextNumber(ctx, domain.SequenceKindQuote, 2026)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	current, err := repo.GetCurrentSequence(ctx, domain.SequenceKindQuote, 2026)
	require.NoError(t, err)
	assert.Equal(t, 5, current)
}

func TestNumberSequenceIndependentPerKindAndYear(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewNumberSequenceRepository(db)
	ctx := context.Background()

	n, err := repo.GetNextNumber(ctx, domain.SequenceKindQuote, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.GetNextNumber(ctx, domain.SequenceKindQuote, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Invoices and other years start from scratch
	n, err = repo.GetNextNumber(ctx, domain.SequenceKindInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = repo.GetNextNumber(ctx, domain.SequenceKindQuote, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNextDocumentNumberFormat(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewNumberSequenceRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	num, err := repo.NextDocumentNumber(ctx, domain.SequenceKindQuote, now)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-001", num)

	num, err = repo.NextDocumentNumber(ctx, domain.SequenceKindInvoice, now)
	require.NoError(t, err)
	assert.Equal(t, "F-2026-001", num)

	num, err = repo.NextDocumentNumber(ctx, domain.SequenceKindInvoice, now)
	require.NoError(t, err)
	assert.Equal(t, "F-2026-002", num)
}

func TestSetSequenceNeverLowers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewNumberSequenceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetSequence(ctx, domain.SequenceKindInvoice, 2026, 40))

	// Lower values are ignored to protect imported numbering
	require.NoError(t, repo.SetSequence(ctx, domain.SequenceKindInvoice, 2026, 10))

	current, err := repo.GetCurrentSequence(ctx, domain.SequenceKindInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, 40, current)

	n, err := repo.GetNextNumber(ctx, domain.SequenceKindInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, 41, n)
}

func TestListSequences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewNumberSequenceRepository(db)
	ctx := context.Background()

	_, err := repo.GetNextNumber(ctx, domain.SequenceKindQuote, 2025)
	require.NoError(t, err)
	_, err = repo.GetNextNumber(ctx, domain.SequenceKindQuote, 2026)
	require.NoError(t, err)
	_, err = repo.GetNextNumber(ctx, domain.SequenceKindInvoice, 2026)
	require.NoError(t, err)

	sequences, err := repo.ListSequences(ctx)
	require.NoError(t, err)
	require.Len(t, sequences, 3)
	assert.Equal(t, domain.SequenceKindInvoice, sequences[0].Kind)
	assert.Equal(t, 2026, sequences[1].Year)
	assert.Equal(t, 2025, sequences[2].Year)
}
