package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sportrent/internal/models"
	"sportrent/internal/security"
)

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

	rec := env.do(t, http.MethodGet, "/user", nil, env.tokenFor(t, user))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, user.ID.Hex(), body["id"])
	assert.Equal(t, "jan@example.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/user", nil, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Authorization token missing", decodeBody(t, rec)["message"])

	rec = env.do(t, http.MethodGet, "/user", nil, "garbage.token.here")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", decodeBody(t, rec)["message"])
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

	rec := env.do(t, http.MethodPut, "/user", map[string]any{
		"fullName":    "Jan Nowak",
		"userName":    "jnowak",
		"email":       "Jan.Nowak@Example.com",
		"phoneNumber": "987654321",
	}, env.tokenFor(t, user))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, err := env.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jan Nowak", updated.FullName)
	assert.Equal(t, "jan.nowak@example.com", updated.Email)
}

func TestUpdateProfileRequiresAllFields(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

	rec := env.do(t, http.MethodPut, "/user", map[string]any{
		"fullName": "Jan Nowak",
	}, env.tokenFor(t, user))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

		rec := env.do(t, http.MethodPut, "/user/password", map[string]any{
			"oldPassword":     "Sup3rSecret!",
			"newPassword":     "N3wSecret!!",
			"confirmPassword": "N3wSecret!!",
		}, env.tokenFor(t, user))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		updated, err := env.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.True(t, security.VerifyPassword("N3wSecret!!", updated.PasswordHash))
	})

	t.Run("wrong old password", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

		rec := env.do(t, http.MethodPut, "/user/password", map[string]any{
			"oldPassword":     "WrongOld1!",
			"newPassword":     "N3wSecret!!",
			"confirmPassword": "N3wSecret!!",
		}, env.tokenFor(t, user))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

		rec := env.do(t, http.MethodPut, "/user/password", map[string]any{
			"oldPassword":     "Sup3rSecret!",
			"newPassword":     "N3wSecret!!",
			"confirmPassword": "Different1!",
		}, env.tokenFor(t, user))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestChangeAvatar(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = part.Write(pngHeader)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPut, "/user/avatar", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, user))

	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	url := decodeBody(t, rec)["profilePicture"].(string)
	assert.Contains(t, url, "/uploads/")

	updated, err := env.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, url, updated.ProfilePicture)
}

func TestDeleteAccountCascadesReservations(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)
	other := env.addUser(t, "anna@example.com", "Sup3rSecret!", models.UserRoleUser)

	equipment, err := env.equipment.Create(context.Background(), models.Equipment{Name: "Kayak", PricePerDay: 50})
	require.NoError(t, err)

	for _, owner := range []primitive.ObjectID{user.ID, user.ID, other.ID} {
		_, err := env.reservations.Create(context.Background(), models.Reservation{
			User:      owner,
			Equipment: equipment.ID,
			StartDate: time.Now(),
			EndDate:   time.Now().Add(24 * time.Hour),
			Price:     50,
		})
		require.NoError(t, err)
	}

	rec := env.do(t, http.MethodDelete, "/user", nil, env.tokenFor(t, user))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	_, err = env.users.GetByID(context.Background(), user.ID)
	assert.Error(t, err)

	mine, err := env.reservations.ListByUser(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := env.reservations.ListByUser(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestAdminListUsers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, "admin@example.com", "Sup3rSecret!", models.UserRoleAdmin)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

	rec := env.do(t, http.MethodGet, "/user/admin", nil, env.tokenFor(t, user))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/user/admin", nil, env.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 2)
}

func TestAdminDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, "admin@example.com", "Sup3rSecret!", models.UserRoleAdmin)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

	rec := env.do(t, http.MethodDelete, "/user/"+user.ID.Hex(), nil, env.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/user/"+user.ID.Hex(), nil, env.tokenFor(t, admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRouteWithDeletedAdminAccount(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, "admin@example.com", "Sup3rSecret!", models.UserRoleAdmin)
	token := env.tokenFor(t, admin)

	require.NoError(t, env.users.Delete(context.Background(), admin.ID))

	rec := env.do(t, http.MethodGet, "/user/admin", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
