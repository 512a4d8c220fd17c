package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sportrent/internal/models"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

// doForm sends a multipart request with the given text fields and image files.
func (env *testEnv) doForm(t *testing.T, method, target string, fields map[string][]string, images map[string][]byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, values := range fields {
		for _, value := range values {
			require.NoError(t, writer.WriteField(field, value))
		}
	}
	for name, data := range images {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	return rec
}

func TestCreateEquipment(t *testing.T) {
	t.Run("stores fields and images", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.addUser(t, "admin@example.com", "Sup3rSecret!", models.UserRoleAdmin)

		rec := env.doForm(t, http.MethodPost, "/equipment", map[string][]string{
			"name":        {"Mountain bike"},
			"category":    {"Bikes"},
			"description": {"A sturdy hardtail."},
			"pricePerDay": {"35.5"},
		}, map[string][]byte{"photo.png": pngHeader}, env.tokenFor(t, admin))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		assert.Equal(t, "Mountain bike", body["name"])
		assert.Equal(t, 35.5, body["pricePerDay"])

		images := body["images"].([]any)
		require.Len(t, images, 1)
		url := images[0].(string)
		assert.True(t, strings.HasPrefix(url, "http://localhost:3000/uploads/"), url)
		assert.True(t, strings.HasSuffix(url, ".png"), url)

		// The file itself landed in the upload directory.
		stored := strings.TrimPrefix(url, "http://localhost:3000/uploads/")
		_, err := os.Stat(filepath.Join(env.uploadDir, stored))
		assert.NoError(t, err)
	})

	t.Run("rejects unsupported image type", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.addUser(t, "admin@example.com", "Sup3rSecret!", models.UserRoleAdmin)

		rec := env.doForm(t, http.MethodPost, "/equipment", map[string][]string{
			"name":        {"Mountain bike"},
			"description": {"A sturdy hardtail."},
			"pricePerDay": {"35"},
		}, map[string][]byte{"anim.gif": []byte("GIF89a......")}, env.tokenFor(t, admin))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validates form fields", func(t *testing.T) {
		env := newTestEnv(t)
		admin := env.addUser(t, "admin@example.com", "Sup3rSecret!", models.UserRoleAdmin)

		rec := env.doForm(t, http.MethodPost, "/equipment", map[string][]string{
			"pricePerDay": {"-5"},
		}, nil, env.tokenFor(t, admin))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		errs := decodeBody(t, rec)["errors"].([]any)
		fields := make([]string, 0, len(errs))
		for _, e := range errs {
			fields = append(fields, e.(map[string]any)["field"].(string))
		}
		assert.ElementsMatch(t, []string{"name", "description", "pricePerDay"}, fields)
	})

	t.Run("regular users are rejected", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

		rec := env.doForm(t, http.MethodPost, "/equipment", map[string][]string{
			"name":        {"Mountain bike"},
			"description": {"A sturdy hardtail."},
			"pricePerDay": {"35"},
		}, nil, env.tokenFor(t, user))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestListEquipmentIsPublic(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.equipment.Create(context.Background(), models.Equipment{
		Name: "Kayak", PricePerDay: 50, Images: []string{"abc.png"},
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/equipment", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, []any{"http://localhost:3000/uploads/abc.png"}, listed[0]["images"])
}

func TestGetEquipmentAvailability(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

	equipment, err := env.equipment.Create(context.Background(), models.Equipment{Name: "Kayak", PricePerDay: 50})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/equipment/"+equipment.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["isAvailable"])

	_, err = env.reservations.Create(context.Background(), models.Reservation{
		User:      user.ID,
		Equipment: equipment.ID,
		StartDate: time.Now().Add(-24 * time.Hour),
		EndDate:   time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	rec = env.do(t, http.MethodGet, "/equipment/"+equipment.ID.Hex(), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["isAvailable"])
}

func TestGetEquipmentNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/equipment/not-an-id", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/equipment/65b000000000000000000000", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateEquipmentImageRemoval(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, "admin@example.com", "Sup3rSecret!", models.UserRoleAdmin)

	equipment, err := env.equipment.Create(context.Background(), models.Equipment{
		Name:        "Kayak",
		Description: "Single seat.",
		PricePerDay: 50,
		Images:      []string{"old1.png", "old2.png"},
	})
	require.NoError(t, err)

	rec := env.doForm(t, http.MethodPut, "/equipment/"+equipment.ID.Hex(), map[string][]string{
		"name":          {"Touring kayak"},
		"description":   {"Single seat, with paddle."},
		"pricePerDay":   {"55"},
		"removedImages": {"http://localhost:3000/uploads/old1.png"},
	}, map[string][]byte{"new.png": pngHeader}, env.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, err := env.equipment.GetByID(context.Background(), equipment.ID)
	require.NoError(t, err)
	assert.Equal(t, "Touring kayak", updated.Name)
	assert.Equal(t, 55.0, updated.PricePerDay)
	require.Len(t, updated.Images, 2)
	assert.Equal(t, "old2.png", updated.Images[0])
	assert.True(t, strings.HasSuffix(updated.Images[1], ".png"))
}

func TestDeleteEquipmentCascadesReservations(t *testing.T) {
	env := newTestEnv(t)
	admin := env.addUser(t, "admin@example.com", "Sup3rSecret!", models.UserRoleAdmin)
	user := env.addUser(t, "jan@example.com", "Sup3rSecret!", models.UserRoleUser)

	equipment, err := env.equipment.Create(context.Background(), models.Equipment{Name: "Kayak", PricePerDay: 50})
	require.NoError(t, err)

	_, err = env.reservations.Create(context.Background(), models.Reservation{
		User: user.ID, Equipment: equipment.ID,
		StartDate: time.Now(), EndDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	rec := env.do(t, http.MethodDelete, "/equipment/"+equipment.ID.Hex(), nil, env.tokenFor(t, admin))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Equipment and related reservations deleted", decodeBody(t, rec)["message"])

	left, err := env.reservations.ListByEquipment(context.Background(), equipment.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	rec = env.do(t, http.MethodDelete, "/equipment/"+equipment.ID.Hex(), nil, env.tokenFor(t, admin))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
