package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sportrent/internal/config"
	"sportrent/internal/models"
	"sportrent/internal/repository"
	"sportrent/internal/security"
	"sportrent/internal/service"
	"sportrent/internal/storage"
)

const testSecret = "test-secret"

type fakeUserStore struct {
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) (models.User, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.ProfilePicture == "" {
		user.ProfilePicture = models.DefaultProfilePicture
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) FindByUserName(_ context.Context, userName string) (models.User, error) {
	for _, user := range f.users {
		if user.UserName == userName {
			return user, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) FindAdmin(_ context.Context) (models.User, error) {
	for _, user := range f.users {
		if user.Role == models.UserRoleAdmin {
			return user, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) List(_ context.Context) ([]models.User, error) {
	users := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, update repository.ProfileUpdate) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	user.FullName = update.FullName
	user.UserName = update.UserName
	user.Email = update.Email
	user.PhoneNumber = update.PhoneNumber
	f.users[id] = user
	return user, nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id primitive.ObjectID, passwordHash string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = passwordHash
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) UpdateAvatar(_ context.Context, id primitive.ObjectID, url string) error {
	user, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.ProfilePicture = url
	f.users[id] = user
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeEquipmentStore struct {
	items map[primitive.ObjectID]models.Equipment
}

func newFakeEquipmentStore() *fakeEquipmentStore {
	return &fakeEquipmentStore{items: make(map[primitive.ObjectID]models.Equipment)}
}

func (f *fakeEquipmentStore) Create(_ context.Context, equipment models.Equipment) (models.Equipment, error) {
	if equipment.ID.IsZero() {
		equipment.ID = primitive.NewObjectID()
	}
	f.items[equipment.ID] = equipment
	return equipment, nil
}

func (f *fakeEquipmentStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Equipment, error) {
	item, ok := f.items[id]
	if !ok {
		return models.Equipment{}, repository.ErrNotFound
	}
	return item, nil
}

func (f *fakeEquipmentStore) List(_ context.Context) ([]models.Equipment, error) {
	items := make([]models.Equipment, 0, len(f.items))
	for _, item := range f.items {
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeEquipmentStore) Replace(_ context.Context, equipment models.Equipment) (models.Equipment, error) {
	if _, ok := f.items[equipment.ID]; !ok {
		return models.Equipment{}, repository.ErrNotFound
	}
	f.items[equipment.ID] = equipment
	return equipment, nil
}

func (f *fakeEquipmentStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeReservationStore struct {
	reservations map[primitive.ObjectID]models.Reservation
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{reservations: make(map[primitive.ObjectID]models.Reservation)}
}

func (f *fakeReservationStore) Create(_ context.Context, reservation models.Reservation) (models.Reservation, error) {
	if reservation.ID.IsZero() {
		reservation.ID = primitive.NewObjectID()
	}
	if reservation.CreatedAt.IsZero() {
		reservation.CreatedAt = time.Now().UTC()
	}
	f.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (f *fakeReservationStore) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.User == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) ListByEquipment(_ context.Context, equipmentID primitive.ObjectID) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.Equipment == equipmentID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReservationStore) List(_ context.Context) ([]models.Reservation, error) {
	out := make([]models.Reservation, 0, len(f.reservations))
	for _, r := range f.reservations {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReservationStore) ExistsCovering(_ context.Context, equipmentID primitive.ObjectID, at time.Time) (bool, error) {
	for _, r := range f.reservations {
		if r.Equipment == equipmentID && r.CoversInstant(at) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReservationStore) UpdateOwned(_ context.Context, id, userID primitive.ObjectID, update repository.ReservationUpdate) (models.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok || r.User != userID {
		return models.Reservation{}, repository.ErrNotFound
	}
	if update.StartDate != nil {
		r.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		r.EndDate = *update.EndDate
	}
	if update.StartTime != nil {
		r.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		r.EndTime = *update.EndTime
	}
	if update.PickupPlace != nil {
		r.PickupPlace = *update.PickupPlace
	}
	if update.DeliveryAddressPickup != nil {
		r.DeliveryAddressPickup = update.DeliveryAddressPickup
	}
	if update.DeliveryAddressReturn != nil {
		r.DeliveryAddressReturn = update.DeliveryAddressReturn
	}
	if update.Price != nil {
		r.Price = *update.Price
	}
	f.reservations[id] = r
	return r, nil
}

func (f *fakeReservationStore) DeleteOwned(_ context.Context, id, userID primitive.ObjectID) error {
	r, ok := f.reservations[id]
	if !ok || r.User != userID {
		return repository.ErrNotFound
	}
	delete(f.reservations, id)
	return nil
}

func (f *fakeReservationStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.reservations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reservations, id)
	return nil
}

func (f *fakeReservationStore) DeleteByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	var removed int64
	for id, r := range f.reservations {
		if r.User == userID {
			delete(f.reservations, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeReservationStore) DeleteByEquipment(_ context.Context, equipmentID primitive.ObjectID) (int64, error) {
	var removed int64
	for id, r := range f.reservations {
		if r.Equipment == equipmentID {
			delete(f.reservations, id)
			removed++
		}
	}
	return removed, nil
}

type fakeReviewStore struct {
	reviews map[primitive.ObjectID]models.Review
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[primitive.ObjectID]models.Review)}
}

func (f *fakeReviewStore) Create(_ context.Context, review models.Review) (models.Review, error) {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now().UTC()
	}
	f.reviews[review.ID] = review
	return review, nil
}

func (f *fakeReviewStore) List(_ context.Context) ([]models.Review, error) {
	out := make([]models.Review, 0, len(f.reviews))
	for _, review := range f.reviews {
		out = append(out, review)
	}
	return out, nil
}

func (f *fakeReviewStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.reviews, id)
	return nil
}

type fakeMessageStore struct {
	messages map[primitive.ObjectID]models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{messages: make(map[primitive.ObjectID]models.Message)}
}

func (f *fakeMessageStore) Create(_ context.Context, message models.Message) (models.Message, error) {
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	if message.SentAt.IsZero() {
		message.SentAt = time.Now().UTC()
	}
	f.messages[message.ID] = message
	return message, nil
}

func (f *fakeMessageStore) List(_ context.Context) ([]models.Message, error) {
	out := make([]models.Message, 0, len(f.messages))
	for _, message := range f.messages {
		out = append(out, message)
	}
	return out, nil
}

func (f *fakeMessageStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := f.messages[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.messages, id)
	return nil
}

type testEnv struct {
	engine       *gin.Engine
	cfg          *config.AppConfig
	users        *fakeUserStore
	equipment    *fakeEquipmentStore
	reservations *fakeReservationStore
	reviews      *fakeReviewStore
	messages     *fakeMessageStore
	uploadDir    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uploadDir := t.TempDir()
	cfg := &config.AppConfig{
		Environment: "test",
		Storage: config.StorageConfig{
			UploadDir:     uploadDir,
			PublicBaseURL: "http://localhost:3000",
			MaxUploadSize: 5 << 20,
		},
		Security: config.SecurityConfig{
			JWTSecret:        testSecret,
			TokenTTL:         time.Hour,
			AdminCreationKey: "let-me-in",
			BcryptCost:       4,
		},
	}

	env := &testEnv{
		cfg:          cfg,
		users:        newFakeUserStore(),
		equipment:    newFakeEquipmentStore(),
		reservations: newFakeReservationStore(),
		reviews:      newFakeReviewStore(),
		messages:     newFakeMessageStore(),
		uploadDir:    uploadDir,
	}

	local, err := storage.NewLocalStore(uploadDir)
	require.NoError(t, err)

	stores := Stores{
		Users:        env.users,
		Equipment:    env.equipment,
		Reservations: env.reservations,
		Reviews:      env.reviews,
		Messages:     env.messages,
	}
	h := NewHandlerSetWithStores(zerolog.Nop(), cfg, stores, service.NewUploadService(local, nil, cfg, zerolog.Nop()))

	env.engine = gin.New()
	h.Register(env.engine)
	return env
}

func (env *testEnv) addUser(t *testing.T, email, password string, role models.UserRole) models.User {
	t.Helper()
	hash, err := security.HashPassword(password, env.cfg.Security.BcryptCost)
	require.NoError(t, err)

	user, err := env.users.Create(context.Background(), models.User{
		FullName:     "Test Person",
		UserName:     "tester" + primitive.NewObjectID().Hex()[:6],
		Email:        email,
		PhoneNumber:  "123456789",
		PasswordHash: hash,
		Role:         role,
	})
	require.NoError(t, err)
	return user
}

func (env *testEnv) tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := security.GenerateToken(testSecret, user.ID.Hex(), user.Email, string(user.Role), time.Hour)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), "body: %s", rec.Body.String())
	return out
}
