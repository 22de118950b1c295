package providers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authhub/internal/store/core"
	"github.com/dropDatabas3/authhub/internal/store/sqlite"
)

func TestCatalog(t *testing.T) {
	st, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := NewService(st)
	ps, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "google", ps[0].Name)

	p, err := svc.Get(context.Background(), ps[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Google", p.DisplayName)

	_, err = svc.Get(context.Background(), 4242)
	assert.ErrorIs(t, err, core.ErrNotFound)
}
