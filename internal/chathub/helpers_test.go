package chathub_test

import (
	"context"
	"io"
	"testing"

	"mentorlink/backend/internal/models"
	"mentorlink/backend/internal/storage/storagetest"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixture struct {
	store   *storagetest.Memory
	student *models.User
	alumni  *models.User
	other   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{store: storagetest.NewMemory()}

	f.student = &models.User{Email: "sam@example.com", FullName: "Sam Student", Role: models.RoleStudent,
		Student: &models.StudentDetails{Major: "CS"}}
	f.alumni = &models.User{Email: "alex@example.com", FullName: "Alex Alumni", Role: models.RoleAlumni,
		Alumni: &models.AlumniDetails{Company: "Acme", AvailableForMentoring: true}}
	f.other = &models.User{Email: "olive@example.com", FullName: "Olive Other", Role: models.RoleStudent,
		Student: &models.StudentDetails{}}

	require.NoError(t, f.store.CreateUser(ctx, f.student))
	require.NoError(t, f.store.CreateUser(ctx, f.alumni))
	require.NoError(t, f.store.CreateUser(ctx, f.other))
	return f
}
