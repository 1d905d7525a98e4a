package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"kgportal/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func TestRepositories(t *testing.T) {
	repos := map[string]UserRepository{
		"memory": NewMemoryUserRepository(),
		"gorm":   NewGormUserRepository(newTestDB(t)),
	}

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, &models.User{Username: "admin", FirebaseUID: "uid-9"}))
			assert.ErrorIs(t, repo.Create(ctx, &models.User{Username: "admin"}), ErrUserExists)

			u, err := repo.FindByUsername(ctx, "admin")
			require.NoError(t, err)
			assert.NotZero(t, u.ID)

			_, err = repo.FindByUsername(ctx, "Admin")
			assert.ErrorIs(t, err, ErrUserNotFound, "lookups are exact, normalization belongs to Service")

			u, err = repo.FindByFirebaseUID(ctx, "uid-9")
			require.NoError(t, err)
			assert.Equal(t, "admin", u.Username)

			_, err = repo.FindByFirebaseUID(ctx, "uid-0")
			assert.ErrorIs(t, err, ErrUserNotFound)
		})
	}
}
