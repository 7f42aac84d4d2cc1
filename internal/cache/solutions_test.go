package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/optimizer"
)

func TestKey(t *testing.T) {
	customers := []domain.Customer{{ID: 1, Duration: 5}, {ID: 2, Duration: 3}}
	params := optimizer.DefaultParameters()

	key := Key(customers, 2, params, 42)
	require.True(t, strings.HasPrefix(key, "solution_"))
	require.Len(t, key, len("solution_")+64)
	require.Equal(t, key, Key(customers, 2, params, 42))

	t.Run("any input change gives a different key", func(t *testing.T) {
		otherParams := params
		otherParams.MutationRate = 0.2

		keys := []string{
			Key(customers, 3, params, 42),
			Key(customers, 2, params, 43),
			Key(customers, 2, otherParams, 42),
			Key([]domain.Customer{{ID: 2, Duration: 3}, {ID: 1, Duration: 5}}, 2, params, 42),
			Key([]domain.Customer{{ID: 1, Duration: 5}, {ID: 2, Duration: 4}}, 2, params, 42),
		}
		for _, k := range keys {
			require.NotEqual(t, key, k)
		}
	})
}
