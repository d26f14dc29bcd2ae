package models_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"mentorlink/backend/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.Role
		ok   bool
	}{
		{"STUDENT", models.RoleStudent, true},
		{"alumni", models.RoleAlumni, true},
		{" Admin ", models.RoleAdmin, true},
		{"professor", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := models.ParseRole(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestNormalizeDetails verifies that only the payload matching the role survives.
func TestNormalizeDetails(t *testing.T) {
	// Arrange
	student := &models.User{
		Role:    models.RoleStudent,
		Student: &models.StudentDetails{Major: "CS"},
		Alumni:  &models.AlumniDetails{Company: "Acme"},
	}
	alumni := &models.User{Role: models.RoleAlumni}
	admin := &models.User{
		Role:    models.RoleAdmin,
		Student: &models.StudentDetails{},
	}

	// Act
	student.NormalizeDetails()
	alumni.NormalizeDetails()
	admin.NormalizeDetails()

	// Assert
	require.NotNil(t, student.Student)
	assert.Equal(t, "CS", student.Student.Major)
	assert.Nil(t, student.Alumni)

	require.NotNil(t, alumni.Alumni, "alumni payload should be created on demand")
	assert.True(t, alumni.Alumni.AvailableForMentoring, "new alumni are available by default")
	assert.Nil(t, alumni.Student)

	assert.Nil(t, admin.Student)
	assert.Nil(t, admin.Alumni)
}

func TestUserRolePredicates(t *testing.T) {
	var nilUser *models.User
	assert.False(t, nilUser.IsStudent())

	u := &models.User{Role: models.RoleAlumni}
	assert.True(t, u.IsAlumni())
	assert.False(t, u.IsStudent())
	assert.False(t, u.IsAdmin())
}

// TestUserJSONHidesPassword makes sure the hash never leaves the process.
func TestUserJSONHidesPassword(t *testing.T) {
	u := models.User{
		ID:           7,
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$secret",
		FullName:     "Ada",
		Role:         models.RoleAlumni,
		Alumni:       &models.AlumniDetails{Skills: pq.StringArray{"go", "sql"}, AvailableForMentoring: true},
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), `"skills":["go","sql"]`)
	assert.NotContains(t, string(data), `"student"`)
}

// TestUserStructTags guards the unique email index and the skills array type.
func TestUserStructTags(t *testing.T) {
	userType := reflect.TypeOf(models.User{})

	emailField, found := userType.FieldByName("Email")
	require.True(t, found)
	assert.Contains(t, emailField.Tag.Get("gorm"), "uniqueIndex")

	skillsField, found := reflect.TypeOf(models.AlumniDetails{}).FieldByName("Skills")
	require.True(t, found)
	assert.Contains(t, skillsField.Tag.Get("gorm"), "type:text[]")

	pairA, _ := reflect.TypeOf(models.ChatRoom{}).FieldByName("StudentID")
	pairB, _ := reflect.TypeOf(models.ChatRoom{}).FieldByName("AlumniID")
	assert.Contains(t, pairA.Tag.Get("gorm"), "uniqueIndex:idx_chat_rooms_pair")
	assert.Contains(t, pairB.Tag.Get("gorm"), "uniqueIndex:idx_chat_rooms_pair")
}

func TestChatRoomParticipants(t *testing.T) {
	room := &models.ChatRoom{ID: 1, StudentID: 10, AlumniID: 20}

	assert.True(t, room.IsParticipant(10))
	assert.True(t, room.IsParticipant(20))
	assert.False(t, room.IsParticipant(30))
	assert.False(t, room.IsParticipant(0))

	other, ok := room.OtherParticipant(10)
	assert.True(t, ok)
	assert.Equal(t, uint(20), other)

	other, ok = room.OtherParticipant(20)
	assert.True(t, ok)
	assert.Equal(t, uint(10), other)

	_, ok = room.OtherParticipant(30)
	assert.False(t, ok)

	assert.Equal(t, "chat_10_20", room.RoomName())
}

func TestRequestStatusTransitions(t *testing.T) {
	assert.True(t, models.StatusPending.CanTransition(models.StatusAccepted))
	assert.True(t, models.StatusPending.CanTransition(models.StatusRejected))
	assert.False(t, models.StatusPending.CanTransition(models.StatusPending))
	assert.False(t, models.StatusAccepted.CanTransition(models.StatusRejected))
	assert.False(t, models.StatusRejected.CanTransition(models.StatusAccepted))

	st, ok := models.ParseRequestStatus("accepted")
	assert.True(t, ok)
	assert.Equal(t, models.StatusAccepted, st)

	_, ok = models.ParseRequestStatus("maybe")
	assert.False(t, ok)
}

func TestEnvelopes(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := &models.Message{ID: 3, SenderID: 1, RecipientID: 2, Content: "Hello", CreatedAt: at}
	sender := &models.User{ID: 1, FullName: "Sam Student", Role: models.RoleStudent}
	recipient := &models.User{ID: 2, FullName: "Alex Alumni", Role: models.RoleAlumni}

	data, err := json.Marshal(models.NewMessageEnvelope(msg, sender, recipient))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "message", got["type"])
	assert.Equal(t, "Hello", got["content"])
	assert.Equal(t, "Sam Student", got["senderName"])
	assert.Equal(t, "STUDENT", got["senderRole"])
	assert.Equal(t, "Alex Alumni", got["recipientName"])
	assert.Equal(t, false, got["isRead"])
	assert.Equal(t, "2025-03-01T12:00:00Z", got["sentAt"])

	data, err = json.Marshal(models.NewSystemEnvelope("Sam joined the chat", at))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"system","content":"Sam joined the chat","sentAt":"2025-03-01T12:00:00Z"}`, string(data))
}

func TestAlumniPatch(t *testing.T) {
	d := &models.AlumniDetails{Company: "Acme", Skills: pq.StringArray{"go"}, AvailableForMentoring: true}
	company := "  Globex "
	off := false

	(&models.AlumniPatch{Company: &company, AvailableForMentoring: &off, Skills: []string{" sql ", "", "k8s"}}).Apply(d)

	assert.Equal(t, "Globex", d.Company)
	assert.False(t, d.AvailableForMentoring)
	assert.Equal(t, pq.StringArray{"sql", "k8s"}, d.Skills)

	(&models.AlumniPatch{}).Apply(d)
	assert.Equal(t, "Globex", d.Company, "nil fields are kept")
}
