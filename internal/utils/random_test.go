package utils

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/service-window/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[a-z]+[0-9]{1,3}$`)

func TestGenerateUsernameFromChineseName(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 50; i++ {
		name := GenerateRandomChineseName(rng)
		require.GreaterOrEqual(t, len([]rune(name)), 2)
		require.LessOrEqual(t, len([]rune(name)), 3)

		username := GenerateUsernameFromChineseName(name, rng)
		require.Regexp(t, usernamePattern, username)
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("password", "example.com", rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	require.Equal(t, domain.RoleOperator, user.Role)
	require.Equal(t, user.Username+"@example.com", user.Email)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password")))
}

func TestGenerateRandomCustomers(t *testing.T) {
	customers := GenerateRandomCustomers(200, 7, rand.New(rand.NewSource(3)))
	require.Len(t, customers, 200)

	for i, c := range customers {
		require.Equal(t, int64(i+1), c.ID)
		require.GreaterOrEqual(t, c.Duration, int64(1))
		require.LessOrEqual(t, c.Duration, int64(7))
	}
}

func TestGenerateRandomPassword(t *testing.T) {
	password := GenerateRandomPassword(16)
	require.Len(t, []rune(password), 16)
	require.NotEqual(t, password, GenerateRandomPassword(16))
}
