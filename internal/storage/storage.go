package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorlink/backend/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("storage: record not found")
	// ErrDuplicateEntry is returned when an insert violates a unique index.
	ErrDuplicateEntry = errors.New("storage: duplicate entry")
	// ErrStaleState is returned by conditional updates whose precondition no longer holds.
	ErrStaleState = errors.New("storage: record state changed")
)

// Storage is the persistence collaborator used by every service.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUser writes the full name and whichever detail payload is set.
	// Email and role are never changed.
	UpdateUser(ctx context.Context, user *models.User) error
	ListAlumni(ctx context.Context, filter models.AlumniFilter) ([]models.User, error)

	GetRoomByID(ctx context.Context, id uint) (*models.ChatRoom, error)
	GetRoomByPair(ctx context.Context, studentID, alumniID uint) (*models.ChatRoom, error)
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	ListRoomsForUser(ctx context.Context, userID uint, role models.Role) ([]models.ChatRoom, error)
	SetRoomActive(ctx context.Context, id uint, active bool) error

	// AppendMessage inserts msg and bumps the room's last_message_at in one
	// transaction.
	AppendMessage(ctx context.Context, room *models.ChatRoom, msg *models.Message) error
	// ListMessages returns the messages exchanged between the two users in
	// either direction, oldest first.
	ListMessages(ctx context.Context, studentID, alumniID uint, limit, offset int) ([]models.Message, error)
	MarkRead(ctx context.Context, senderID, recipientID uint) (int64, error)
	CountUnread(ctx context.Context, senderID, recipientID uint) (int64, error)
	CountUnreadTotal(ctx context.Context, recipientID uint) (int64, error)

	CreateMentorRequest(ctx context.Context, req *models.MentorRequest) error
	GetMentorRequest(ctx context.Context, id uint) (*models.MentorRequest, error)
	ListMentorRequests(ctx context.Context, filter models.RequestFilter) ([]models.MentorRequest, error)
	// TransitionMentorRequest moves a request from one status to another only
	// if it is still in the from status. ErrStaleState otherwise.
	TransitionMentorRequest(ctx context.Context, id uint, from, to models.RequestStatus) (*models.MentorRequest, error)
}

type Service struct {
	DB *gorm.DB
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB) *Service {
	if db == nil {
		panic("storage: database connection cannot be nil")
	}
	return &Service{DB: db}
}

// Open connects to PostgreSQL with error translation enabled so unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("storage: underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.StudentDetails{},
		&models.AlumniDetails{},
		&models.ChatRoom{},
		&models.Message{},
		&models.MentorRequest{},
	)
}

// translate maps driver errors onto the package sentinels and wraps the rest
// with the failing operation.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isDuplicateEntryError(err) {
		return ErrDuplicateEntry
	}
	return fmt.Errorf("storage: %s: %w", op, err)
}

func isDuplicateEntryError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
