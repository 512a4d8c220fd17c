package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"sportrent/internal/config"
	"sportrent/internal/middleware"
	"sportrent/internal/repository"
	"sportrent/internal/service"
	"sportrent/internal/storage"
	"sportrent/internal/validation"
)

// Stores bundles the persistence interfaces the handlers depend on. Tests
// swap in in-memory fakes.
type Stores struct {
	Users        repository.UserStore
	Equipment    repository.EquipmentStore
	Reservations repository.ReservationStore
	Reviews      repository.ReviewStore
	Messages     repository.MessageStore
}

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	authService   *service.AuthService
	uploadService *service.UploadService
	stores        Stores
	db            *mongo.Database
	cache         *redis.Client
}

// NewHandlerSet wires the real Mongo-backed stores.
func NewHandlerSet(log zerolog.Logger, db *mongo.Database, cache *redis.Client, local *storage.LocalStore, archive *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	stores := Stores{
		Users:        repository.NewUserRepository(db),
		Equipment:    repository.NewEquipmentRepository(db),
		Reservations: repository.NewReservationRepository(db),
		Reviews:      repository.NewReviewRepository(db),
		Messages:     repository.NewMessageRepository(db),
	}

	h := NewHandlerSetWithStores(log, cfg, stores, service.NewUploadService(local, archive, cfg, log))
	h.db = db
	h.cache = cache
	return h
}

// NewHandlerSetWithStores builds a handler set over arbitrary store
// implementations; used directly by tests.
func NewHandlerSetWithStores(log zerolog.Logger, cfg *config.AppConfig, stores Stores, uploads *service.UploadService) HandlerSet {
	return HandlerSet{
		log:           log,
		cfg:           cfg,
		authService:   service.NewAuthService(stores.Users, cfg, log),
		uploadService: uploads,
		stores:        stores,
	}
}

func (h HandlerSet) Register(engine *gin.Engine) {
	engine.GET("/healthz", h.Health)
	engine.Static("/uploads", h.cfg.Storage.UploadDir)

	auth := engine.Group("/authorization")
	auth.POST("/signup", h.Signup)
	auth.POST("/login", h.Login)

	user := engine.Group("/user")
	user.Use(middleware.Auth(h.cfg))
	user.GET("", h.Me)
	user.PUT("", h.UpdateProfile)
	user.PUT("/password", h.ChangePassword)
	user.PUT("/avatar", h.ChangeAvatar)
	user.DELETE("", h.DeleteAccount)

	userAdmin := engine.Group("/user")
	userAdmin.Use(middleware.Auth(h.cfg), middleware.RequireAdmin(h.stores.Users))
	userAdmin.GET("/admin", h.AdminListUsers)
	userAdmin.DELETE("/:id", h.AdminDeleteUser)

	equipment := engine.Group("/equipment")
	equipment.GET("", h.ListEquipment)
	equipment.GET("/:id", h.GetEquipment)

	equipmentAdmin := engine.Group("/equipment")
	equipmentAdmin.Use(middleware.Auth(h.cfg), middleware.RequireAdmin(h.stores.Users))
	equipmentAdmin.POST("", h.CreateEquipment)
	equipmentAdmin.PUT("/:id", h.UpdateEquipment)
	equipmentAdmin.DELETE("/:id", h.DeleteEquipment)

	reservation := engine.Group("/reservation")
	reservation.Use(middleware.Auth(h.cfg))
	reservation.POST("", h.CreateReservation)
	reservation.GET("", h.ListOwnReservations)
	reservation.GET("/equipment/:id", h.ListEquipmentReservations)
	reservation.PUT("/:id", h.UpdateReservation)
	reservation.DELETE("/:id", h.DeleteOwnReservation)

	reservationAdmin := engine.Group("/reservation")
	reservationAdmin.Use(middleware.Auth(h.cfg), middleware.RequireAdmin(h.stores.Users))
	reservationAdmin.GET("/admin", h.AdminListReservations)
	reservationAdmin.DELETE("/:id/admin", h.AdminDeleteReservation)

	review := engine.Group("/review")
	review.POST("", h.CreateReview)
	review.GET("", h.ListReviews)

	reviewAdmin := engine.Group("/review")
	reviewAdmin.Use(middleware.Auth(h.cfg), middleware.RequireAdmin(h.stores.Users))
	reviewAdmin.GET("/admin", h.AdminListReviews)
	reviewAdmin.DELETE("/:id", h.DeleteReview)

	message := engine.Group("/message")
	message.POST("", h.CreateMessage)

	messageAdmin := engine.Group("/message")
	messageAdmin.Use(middleware.Auth(h.cfg), middleware.RequireAdmin(h.stores.Users))
	messageAdmin.GET("", h.ListMessages)
	messageAdmin.DELETE("/:id", h.DeleteMessage)
}

// absoluteImageURL turns a stored bare filename into the URL clients fetch.
func (h HandlerSet) absoluteImageURL(name string) string {
	base := strings.TrimSuffix(h.cfg.Storage.PublicBaseURL, "/")
	return base + "/uploads/" + path.Base(name)
}

func (h HandlerSet) absoluteImageURLs(names []string) []string {
	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, h.absoluteImageURL(name))
	}
	return urls
}

func validationFailed(c *gin.Context, errs []validation.FieldError) bool {
	if len(errs) == 0 {
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
	return true
}
