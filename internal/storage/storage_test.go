package storage_test

import (
	"context"
	"testing"
	"time"

	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) (*storage.Service, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return storage.NewStorageService(gormDB), mock
}

func TestGetRoomByID_NotFound(t *testing.T) {
	s, mock := setupTestDB(t)
	mock.ExpectQuery(`SELECT (.+) FROM "chat_rooms"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "alumni_id"}))

	room, err := s.GetRoomByID(context.Background(), 42)

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoomByPair(t *testing.T) {
	s, mock := setupTestDB(t)
	now := time.Now()
	mock.ExpectQuery(`SELECT (.+) FROM "chat_rooms" WHERE student_id = \$1 AND alumni_id = \$2`).
		WithArgs(1, 2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "alumni_id", "created_at", "last_message_at", "is_active"}).
			AddRow(7, 1, 2, now, nil, true))

	room, err := s.GetRoomByPair(context.Background(), 1, 2)

	require.NoError(t, err)
	assert.Equal(t, uint(7), room.ID)
	assert.Nil(t, room.LastMessageAt)
	assert.True(t, room.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoom_UniqueViolation(t *testing.T) {
	s, mock := setupTestDB(t)
	mock.ExpectQuery(`INSERT INTO "chat_rooms"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := s.CreateRoom(context.Background(), &models.ChatRoom{StudentID: 1, AlumniID: 2, IsActive: true})

	assert.ErrorIs(t, err, storage.ErrDuplicateEntry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendMessage(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "insert and touch room in one transaction",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO "messages"`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
				mock.ExpectExec(`UPDATE "chat_rooms" SET "last_message_at"=\$1 WHERE id = \$2`).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "failed insert leaves room untouched",
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO "messages"`).
					WillReturnError(assert.AnError)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupTestDB(t)
			tt.mockSetup(mock)

			room := &models.ChatRoom{ID: 3, StudentID: 1, AlumniID: 2}
			msg := &models.Message{SenderID: 1, RecipientID: 2, Content: "Hello", CreatedAt: time.Now()}

			err := s.AppendMessage(context.Background(), room, msg)

			if tt.wantErr {
				assert.ErrorIs(t, err, assert.AnError)
				assert.Nil(t, room.LastMessageAt)
			} else {
				require.NoError(t, err)
				assert.Equal(t, uint(11), msg.ID)
				require.NotNil(t, room.LastMessageAt)
				assert.True(t, room.LastMessageAt.Equal(msg.CreatedAt))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMarkRead_ReturnsRowsAffected(t *testing.T) {
	s, mock := setupTestDB(t)
	mock.ExpectExec(`UPDATE "messages" SET "is_read"=\$1 WHERE sender_id = \$2 AND recipient_id = \$3 AND is_read = \$4`).
		WithArgs(true, 2, 1, false).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := s.MarkRead(context.Background(), 2, 1)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUnreadTotal(t *testing.T) {
	s, mock := setupTestDB(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "messages" WHERE recipient_id = \$1 AND is_read = \$2`).
		WithArgs(5, false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	n, err := s.CountUnreadTotal(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMessages_BothDirectionsOldestFirst(t *testing.T) {
	s, mock := setupTestDB(t)
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM "messages" WHERE \(sender_id = \$1 AND recipient_id = \$2\) OR \(sender_id = \$3 AND recipient_id = \$4\) ORDER BY created_at ASC, id ASC LIMIT \$5`).
		WithArgs(1, 2, 2, 1, 50).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sender_id", "recipient_id", "content", "is_read", "created_at"}).
			AddRow(1, 1, 2, "Hi", true, t0).
			AddRow(2, 2, 1, "Hello", false, t0.Add(time.Second)))

	msgs, err := s.ListMessages(context.Background(), 1, 2, 50, 0)

	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hi", msgs[0].Content)
	assert.Equal(t, uint(2), msgs[1].SenderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetRoomActive_Missing(t *testing.T) {
	s, mock := setupTestDB(t)
	mock.ExpectExec(`UPDATE "chat_rooms" SET "is_active"=\$1 WHERE id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetRoomActive(context.Background(), 99, false)

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlumni_SearchTermsAreLiteral(t *testing.T) {
	tests := []struct {
		name    string
		filter  models.AlumniFilter
		clause  string
		pattern string
	}{
		{"skill underscore", models.AlumniFilter{Skill: "_"}, `EXISTS \(SELECT 1 FROM unnest\(alumni_details.skills\) AS skill WHERE skill ILIKE \$3\)`, `%\_%`},
		{"skill percent", models.AlumniFilter{Skill: "100%"}, `skill ILIKE \$3`, `%100\%%`},
		{"company backslash", models.AlumniFilter{Company: `A\B`}, `alumni_details.company ILIKE \$3`, `%A\\B%`},
		{"plain company", models.AlumniFilter{Company: "Acme"}, `alumni_details.company ILIKE \$3`, `%Acme%`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupTestDB(t)
			mock.ExpectQuery(`SELECT (.+) FROM "users" JOIN alumni_details (.+)`+tt.clause).
				WithArgs("ALUMNI", true, tt.pattern).
				WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "role"}))

			users, err := s.ListAlumni(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Empty(t, users)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
