package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/HoekR/emlo-analysis/lib/scrapers/emlo"
	"github.com/HoekR/emlo-analysis/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:docstore")
	defer cleanup()

	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		docs, err := store.Pull(ctx, "unknown-collection")
		require.NoError(t, err)
		require.Len(t, docs, 0)
	}

	scaliger := "Scaliger, Joseph Justus"
	first := []emlo.Doc{
		{Id: "DOC2", ResultNum: 2, Type: "Letter", Author: "Scaliger", Collection: scaliger},
		{Id: "DOC1", ResultNum: 1, Type: "Letter", Author: "Casaubon", Collection: scaliger},
	}
	require.NoError(t, store.Push(ctx, scaliger, first))

	{
		docs, err := store.Pull(ctx, scaliger)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		// ordered by result number, not insertion order
		require.Equal(t, "DOC1", docs[0].Id)
		require.Equal(t, "DOC2", docs[1].Id)
	}

	// a second push replaces the collection's docs entirely
	second := []emlo.Doc{
		{Id: "DOC9", ResultNum: 1, Type: "Letter", Collection: scaliger},
	}
	require.NoError(t, store.Push(ctx, scaliger, second))

	{
		docs, err := store.Pull(ctx, scaliger)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		require.Equal(t, "DOC9", docs[0].Id)
	}

	// other collections are untouched
	other := []emlo.Doc{
		{Id: "HEIN1", ResultNum: 1, Type: "Letter", Collection: "Heinsius, Nicolaas"},
	}
	require.NoError(t, store.Push(ctx, "Heinsius, Nicolaas", other))

	{
		docs, err := store.Pull(ctx, scaliger)
		require.NoError(t, err)
		require.Len(t, docs, 1)
	}
}
