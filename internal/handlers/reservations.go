package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sportrent/internal/middleware"
	"sportrent/internal/models"
	"sportrent/internal/repository"
	"sportrent/internal/validation"
)

const (
	deletedEquipmentLabel = "Deleted equipment"
	unknownUserLabel      = "Unknown user"
)

type reservationRequest struct {
	Equipment             string                  `json:"equipment"`
	StartDate             *time.Time              `json:"startDate"`
	EndDate               *time.Time              `json:"endDate"`
	StartTime             string                  `json:"startTime"`
	EndTime               string                  `json:"endTime"`
	PickupPlace           string                  `json:"pickupPlace"`
	DeliveryAddressPickup *models.DeliveryAddress `json:"deliveryAddressPickup"`
	DeliveryAddressReturn *models.DeliveryAddress `json:"deliveryAddressReturn"`
	Price                 *float64                `json:"price"`
}

func validateAddress(field string, addr *models.DeliveryAddress, errs []validation.FieldError) []validation.FieldError {
	if addr == nil {
		return append(errs, validation.FieldError{Field: field, Message: "Delivery address is required"})
	}
	if addr.City == "" {
		errs = append(errs, validation.FieldError{Field: field + ".city", Message: "City is required"})
	}
	if addr.Street == "" {
		errs = append(errs, validation.FieldError{Field: field + ".street", Message: "Street is required"})
	}
	if addr.HouseNumber == "" {
		errs = append(errs, validation.FieldError{Field: field + ".houseNumber", Message: "House number is required"})
	}
	return errs
}

func (req reservationRequest) validate() []validation.FieldError {
	var errs []validation.FieldError

	if req.Equipment == "" {
		errs = append(errs, validation.FieldError{Field: "equipment", Message: "Equipment is required"})
	}
	if req.StartDate == nil {
		errs = append(errs, validation.FieldError{Field: "startDate", Message: "Start date is required"})
	}
	if req.EndDate == nil {
		errs = append(errs, validation.FieldError{Field: "endDate", Message: "End date is required"})
	}
	if req.StartTime == "" {
		errs = append(errs, validation.FieldError{Field: "startTime", Message: "Pickup time is required"})
	}
	if req.EndTime == "" {
		errs = append(errs, validation.FieldError{Field: "endTime", Message: "Return time is required"})
	}

	switch models.PickupPlace(req.PickupPlace) {
	case models.PickupPlaceStore:
	case models.PickupPlaceDelivery:
		// Addresses are only demanded for delivery pickup/return.
		errs = validateAddress("deliveryAddressPickup", req.DeliveryAddressPickup, errs)
		errs = validateAddress("deliveryAddressReturn", req.DeliveryAddressReturn, errs)
	default:
		errs = append(errs, validation.FieldError{Field: "pickupPlace", Message: "Pickup place must be store or delivery"})
	}

	if req.Price == nil {
		errs = append(errs, validation.FieldError{Field: "price", Message: "Price is required"})
	}

	return errs
}

func (h HandlerSet) CreateReservation(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}
	if validationFailed(c, req.validate()) {
		return
	}

	equipmentID, err := primitive.ObjectIDFromHex(req.Equipment)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Equipment does not exist"})
		return
	}
	if _, err := h.stores.Equipment.GetByID(c.Request.Context(), equipmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Equipment does not exist"})
			return
		}
		h.log.Error().Err(err).Msg("load equipment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	// The owner is always the authenticated caller; overlapping reservations
	// are allowed, availability is advisory on the read side only.
	reservation, err := h.stores.Reservations.Create(c.Request.Context(), models.Reservation{
		User:                  callerID,
		Equipment:             equipmentID,
		StartDate:             *req.StartDate,
		EndDate:               *req.EndDate,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		PickupPlace:           models.PickupPlace(req.PickupPlace),
		DeliveryAddressPickup: req.DeliveryAddressPickup,
		DeliveryAddressReturn: req.DeliveryAddressReturn,
		Price:                 *req.Price,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("create reservation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, reservation)
}

type ownReservationRow struct {
	ID                    string                  `json:"id"`
	EquipmentID           string                  `json:"equipmentId"`
	EquipmentName         string                  `json:"equipmentName"`
	EquipmentCategory     string                  `json:"equipmentCategory"`
	StartDate             time.Time               `json:"startDate"`
	EndDate               time.Time               `json:"endDate"`
	StartTime             string                  `json:"startTime"`
	EndTime               string                  `json:"endTime"`
	PickupPlace           models.PickupPlace      `json:"pickupPlace"`
	DeliveryAddressPickup *models.DeliveryAddress `json:"deliveryAddressPickup,omitempty"`
	DeliveryAddressReturn *models.DeliveryAddress `json:"deliveryAddressReturn,omitempty"`
	Price                 float64                 `json:"price"`
	IsAvailable           bool                    `json:"isAvailable"`
	CreatedAt             time.Time               `json:"createdAt"`
}

func (h HandlerSet) ListOwnReservations(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	reservations, err := h.stores.Reservations.ListByUser(c.Request.Context(), callerID)
	if err != nil {
		h.log.Error().Err(err).Msg("list reservations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	now := time.Now()
	equipmentCache := make(map[primitive.ObjectID]*models.Equipment)

	rows := make([]ownReservationRow, 0, len(reservations))
	for _, r := range reservations {
		equipment, cached := equipmentCache[r.Equipment]
		if !cached {
			if eq, err := h.stores.Equipment.GetByID(c.Request.Context(), r.Equipment); err == nil {
				equipment = &eq
			} else if !errors.Is(err, repository.ErrNotFound) {
				h.log.Error().Err(err).Msg("load equipment failed")
				c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
				return
			}
			equipmentCache[r.Equipment] = equipment
		}

		row := ownReservationRow{
			ID:                    r.ID.Hex(),
			EquipmentID:           r.Equipment.Hex(),
			EquipmentName:         deletedEquipmentLabel,
			StartDate:             r.StartDate,
			EndDate:               r.EndDate,
			StartTime:             r.StartTime,
			EndTime:               r.EndTime,
			PickupPlace:           r.PickupPlace,
			DeliveryAddressPickup: r.DeliveryAddressPickup,
			DeliveryAddressReturn: r.DeliveryAddressReturn,
			Price:                 r.Price,
			CreatedAt:             r.CreatedAt,
		}
		if equipment != nil {
			row.EquipmentName = equipment.Name
			row.EquipmentCategory = equipment.Category
		}

		reservedNow, err := h.stores.Reservations.ExistsCovering(c.Request.Context(), r.Equipment, now)
		if err != nil {
			h.log.Error().Err(err).Msg("availability check failed")
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			return
		}
		row.IsAvailable = !reservedNow

		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, rows)
}

func (h HandlerSet) ListEquipmentReservations(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
		return
	}

	reservations, err := h.stores.Reservations.ListByEquipment(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Msg("list equipment reservations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, reservations)
}

type adminReservationRow struct {
	ID                    string                  `json:"id"`
	EquipmentName         string                  `json:"equipmentName"`
	EquipmentCategory     string                  `json:"equipmentCategory"`
	UserName              string                  `json:"userName"`
	UserEmail             string                  `json:"userEmail"`
	StartDate             time.Time               `json:"startDate"`
	EndDate               time.Time               `json:"endDate"`
	StartTime             string                  `json:"startTime"`
	EndTime               string                  `json:"endTime"`
	PickupPlace           models.PickupPlace      `json:"pickupPlace"`
	DeliveryAddressPickup *models.DeliveryAddress `json:"deliveryAddressPickup,omitempty"`
	DeliveryAddressReturn *models.DeliveryAddress `json:"deliveryAddressReturn,omitempty"`
	Price                 float64                 `json:"price"`
	CreatedAt             time.Time               `json:"createdAt"`
}

func (h HandlerSet) AdminListReservations(c *gin.Context) {
	reservations, err := h.stores.Reservations.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list reservations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	equipmentCache := make(map[primitive.ObjectID]*models.Equipment)
	userCache := make(map[primitive.ObjectID]*models.User)

	rows := make([]adminReservationRow, 0, len(reservations))
	for _, r := range reservations {
		row := adminReservationRow{
			ID:                    r.ID.Hex(),
			EquipmentName:         deletedEquipmentLabel,
			UserName:              unknownUserLabel,
			StartDate:             r.StartDate,
			EndDate:               r.EndDate,
			StartTime:             r.StartTime,
			EndTime:               r.EndTime,
			PickupPlace:           r.PickupPlace,
			DeliveryAddressPickup: r.DeliveryAddressPickup,
			DeliveryAddressReturn: r.DeliveryAddressReturn,
			Price:                 r.Price,
			CreatedAt:             r.CreatedAt,
		}

		equipment, cached := equipmentCache[r.Equipment]
		if !cached {
			if eq, err := h.stores.Equipment.GetByID(c.Request.Context(), r.Equipment); err == nil {
				equipment = &eq
			}
			equipmentCache[r.Equipment] = equipment
		}
		if equipment != nil {
			row.EquipmentName = equipment.Name
			row.EquipmentCategory = equipment.Category
		}

		user, cached := userCache[r.User]
		if !cached {
			if u, err := h.stores.Users.GetByID(c.Request.Context(), r.User); err == nil {
				user = &u
			}
			userCache[r.User] = user
		}
		if user != nil {
			row.UserName = user.UserName
			row.UserEmail = user.Email
		}

		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, rows)
}

type reservationUpdateRequest struct {
	StartDate             *time.Time              `json:"startDate"`
	EndDate               *time.Time              `json:"endDate"`
	StartTime             *string                 `json:"startTime"`
	EndTime               *string                 `json:"endTime"`
	PickupPlace           *string                 `json:"pickupPlace"`
	DeliveryAddressPickup *models.DeliveryAddress `json:"deliveryAddressPickup"`
	DeliveryAddressReturn *models.DeliveryAddress `json:"deliveryAddressReturn"`
	Price                 *float64                `json:"price"`
}

func (h HandlerSet) UpdateReservation(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
		return
	}

	var req reservationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	update := repository.ReservationUpdate{
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		StartTime:             req.StartTime,
		EndTime:               req.EndTime,
		DeliveryAddressPickup: req.DeliveryAddressPickup,
		DeliveryAddressReturn: req.DeliveryAddressReturn,
		Price:                 req.Price,
	}
	if req.PickupPlace != nil {
		place := models.PickupPlace(*req.PickupPlace)
		if place != models.PickupPlaceStore && place != models.PickupPlaceDelivery {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []validation.FieldError{
				{Field: "pickupPlace", Message: "Pickup place must be store or delivery"},
			}})
			return
		}
		update.PickupPlace = &place
	}

	reservation, err := h.stores.Reservations.UpdateOwned(c.Request.Context(), id, callerID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
			return
		}
		h.log.Error().Err(err).Msg("update reservation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, reservation)
}

func (h HandlerSet) DeleteOwnReservation(c *gin.Context) {
	callerID, ok := middleware.CallerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
		return
	}

	if err := h.stores.Reservations.DeleteOwned(c.Request.Context(), id, callerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
			return
		}
		h.log.Error().Err(err).Msg("delete reservation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted"})
}

func (h HandlerSet) AdminDeleteReservation(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
		return
	}

	if err := h.stores.Reservations.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
			return
		}
		h.log.Error().Err(err).Msg("delete reservation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation deleted"})
}
