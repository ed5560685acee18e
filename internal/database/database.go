package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/spacehub/backend/internal/config"
	"github.com/spacehub/backend/internal/models"
)

func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := applyConstraints(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.Friendship{},
		&models.FriendRequest{},
		&models.Message{},
		&models.DirectMessage{},
		&models.Note{},
		&models.NoteBlock{},
		&models.Notification{},
	)
}

// applyConstraints adds the invariants AutoMigrate cannot express: a single
// PENDING friend request per unordered user pair, and no self-requests.
func applyConstraints(db *gorm.DB) error {
	pendingPair := `
CREATE UNIQUE INDEX IF NOT EXISTS idx_pending_request_pair
ON friend_requests (LEAST(from_user_id, to_user_id), GREATEST(from_user_id, to_user_id))
WHERE status = 'PENDING';`

	if err := db.Exec(pendingPair).Error; err != nil {
		return err
	}

	noSelfRequest := `
DO $$
BEGIN
  IF NOT EXISTS (
    SELECT 1
    FROM pg_constraint
    WHERE conname = 'friend_request_no_self'
  ) THEN
    ALTER TABLE friend_requests
    ADD CONSTRAINT friend_request_no_self
    CHECK (from_user_id <> to_user_id);
  END IF;
END $$;`

	return db.Exec(noSelfRequest).Error
}
