package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techxudo-devs/techxudo-oms-server/pkg/models"
)

func appointmentRequest(email string) models.AppointmentSendRequest {
	return models.AppointmentSendRequest{
		EmployeeEmail: email,
		EmployeeName:  "Ada Lovelace",
		LetterContent: models.LetterContent{
			Subject:     "Appointment as Software Engineer",
			Body:        "<p>We are pleased to appoint you.</p>",
			Position:    "Software Engineer",
			Department:  "Engineering",
			JoiningDate: time.Now().AddDate(0, 1, 0),
			Salary:      120000,
		},
	}
}

func TestAppointmentSendValidation(t *testing.T) {
	env := newTestEnv(t)

	req := appointmentRequest("ada@analytical.test")
	req.EmployeeEmail = "bad"
	_, _, err := env.appointments.Send(env.org.ID, req, env.admin.ID)
	assert.ErrorIs(t, err, ErrValidation)

	req = appointmentRequest("ada@analytical.test")
	req.LetterContent.Position = ""
	_, _, err = env.appointments.Send(env.org.ID, req, env.admin.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAppointmentViewIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	letter, token, err := env.appointments.Send(env.org.ID, appointmentRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentSent, letter.Status)

	first, err := env.appointments.MarkAsViewed(token)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentViewed, first.Letter.Status)
	require.NotNil(t, first.Letter.ViewedAt)
	firstViewedAt := *first.Letter.ViewedAt

	// 再看不会改写 viewed_at
	second, err := env.appointments.MarkAsViewed(token)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentViewed, second.Letter.Status)
	require.NotNil(t, second.Letter.ViewedAt)
	assert.True(t, second.Letter.ViewedAt.Equal(firstViewedAt))
}

func TestAppointmentRespondPublishesEvent(t *testing.T) {
	env := newTestEnv(t)

	var received []Event
	env.events.Subscribe(EventAppointmentAccepted, func(e Event) error {
		received = append(received, e)
		return nil
	})

	letter, token, err := env.appointments.Send(env.org.ID, appointmentRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	_, err = env.appointments.Respond(token, models.AppointmentResponseRequest{Action: "maybe"})
	assert.ErrorIs(t, err, ErrValidation)

	responded, err := env.appointments.Respond(token, models.AppointmentResponseRequest{Action: "accept"})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentAccepted, responded.Status)
	assert.NotNil(t, responded.RespondedAt)

	require.Len(t, received, 1)
	assert.Equal(t, letter.ID, received[0].EntityID)
	assert.Equal(t, env.org.ID, received[0].OrganizationID)

	// 已响应后不可再响应
	_, err = env.appointments.Respond(token, models.AppointmentResponseRequest{Action: "reject"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAppointmentRejectStoresReason(t *testing.T) {
	env := newTestEnv(t)

	var rejectedEvents []Event
	env.events.Subscribe(EventAppointmentRejected, func(e Event) error {
		rejectedEvents = append(rejectedEvents, e)
		return nil
	})

	_, token, err := env.appointments.Send(env.org.ID, appointmentRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	responded, err := env.appointments.Respond(token, models.AppointmentResponseRequest{
		Action: "reject",
		Reason: "relocating abroad",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentRejected, responded.Status)
	assert.Equal(t, "relocating abroad", responded.Response)
	assert.Len(t, rejectedEvents, 1)
}

func TestAppointmentExpiredLink(t *testing.T) {
	env := newTestEnv(t)

	letter, token, err := env.appointments.Send(env.org.ID, appointmentRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	stored, err := env.db.GetAppointmentLetterByID(letter.ID)
	require.NoError(t, err)
	stored.TokenExpiry = time.Now().Add(-time.Hour)
	require.NoError(t, env.db.UpdateAppointmentLetter(stored))

	_, err = env.appointments.MarkAsViewed(token)
	assert.ErrorIs(t, err, ErrExpired)
	_, err = env.appointments.Respond(token, models.AppointmentResponseRequest{Action: "accept"})
	assert.ErrorIs(t, err, ErrExpired)
}

func TestAppointmentScopedToOrganization(t *testing.T) {
	env := newTestEnv(t)

	letter, _, err := env.appointments.Send(env.org.ID, appointmentRequest("ada@analytical.test"), env.admin.ID)
	require.NoError(t, err)

	_, err = env.appointments.GetLetter(letter.ID, "other-org")
	assert.ErrorIs(t, err, ErrForbidden)
}
