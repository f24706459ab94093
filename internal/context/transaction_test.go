package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTransactionContext(t *testing.T) {
	t.Run("Round-trips the same transaction", func(t *testing.T) {
		tx := &gorm.DB{}
		ctx := WithTransaction(context.Background(), tx)

		got, ok := GetTransaction(ctx)
		require.True(t, ok)
		assert.Same(t, tx, got)
	})

	t.Run("Absent transaction reports false", func(t *testing.T) {
		got, ok := GetTransaction(context.Background())
		assert.False(t, ok)
		assert.Nil(t, got)
	})
}
