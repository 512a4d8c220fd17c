package handlers

import (
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"sportrent/internal/media/sniffer"
	"sportrent/internal/models"
	"sportrent/internal/repository"
	"sportrent/internal/service"
	"sportrent/internal/validation"
)

type equipmentResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	PricePerDay float64  `json:"pricePerDay"`
	Images      []string `json:"images"`
}

func (h HandlerSet) toEquipmentResponse(equipment models.Equipment) equipmentResponse {
	return equipmentResponse{
		ID:          equipment.ID.Hex(),
		Name:        equipment.Name,
		Category:    equipment.Category,
		Description: equipment.Description,
		PricePerDay: equipment.PricePerDay,
		Images:      h.absoluteImageURLs(equipment.Images),
	}
}

// validateEquipmentForm checks the multipart form fields shared by create and
// update. It returns the parsed price on success.
func validateEquipmentForm(c *gin.Context) (float64, []validation.FieldError) {
	var errs []validation.FieldError

	if strings.TrimSpace(c.PostForm("name")) == "" {
		errs = append(errs, validation.FieldError{Field: "name", Message: "Name is required"})
	}
	if strings.TrimSpace(c.PostForm("description")) == "" {
		errs = append(errs, validation.FieldError{Field: "description", Message: "Description is required"})
	}

	price, err := strconv.ParseFloat(c.PostForm("pricePerDay"), 64)
	if err != nil {
		errs = append(errs, validation.FieldError{Field: "pricePerDay", Message: "Price must be a number"})
	} else if price <= 0 {
		errs = append(errs, validation.FieldError{Field: "pricePerDay", Message: "Price must be greater than zero"})
	}

	return price, errs
}

func (h HandlerSet) saveUploadedImages(c *gin.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, nil
	}

	var names []string
	for _, header := range form.File["images"] {
		name, err := h.uploadService.Save(c.Request.Context(), header)
		if err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (h HandlerSet) CreateEquipment(c *gin.Context) {
	price, errs := validateEquipmentForm(c)
	if validationFailed(c, errs) {
		return
	}

	images, err := h.saveUploadedImages(c)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnsupportedType) || errors.Is(err, service.ErrFileTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("store equipment images failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	equipment, err := h.stores.Equipment.Create(c.Request.Context(), models.Equipment{
		Name:        c.PostForm("name"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		PricePerDay: price,
		Images:      images,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("create equipment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, h.toEquipmentResponse(equipment))
}

func (h HandlerSet) ListEquipment(c *gin.Context) {
	items, err := h.stores.Equipment.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list equipment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	resp := make([]equipmentResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, h.toEquipmentResponse(item))
	}
	c.JSON(http.StatusOK, resp)
}

type equipmentDetailResponse struct {
	equipmentResponse
	IsAvailable bool `json:"isAvailable"`
}

func (h HandlerSet) GetEquipment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
		return
	}

	equipment, err := h.stores.Equipment.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
			return
		}
		h.log.Error().Err(err).Msg("load equipment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	reservedNow, err := h.stores.Reservations.ExistsCovering(c.Request.Context(), id, time.Now())
	if err != nil {
		h.log.Error().Err(err).Msg("availability check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, equipmentDetailResponse{
		equipmentResponse: h.toEquipmentResponse(equipment),
		IsAvailable:       !reservedNow,
	})
}

func (h HandlerSet) UpdateEquipment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
		return
	}

	price, errs := validateEquipmentForm(c)
	if validationFailed(c, errs) {
		return
	}

	equipment, err := h.stores.Equipment.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
			return
		}
		h.log.Error().Err(err).Msg("load equipment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	// Filter out images the client flagged for removal. Only the list entry
	// goes away here; orphaned files are swept by the cleanup job.
	removed := make(map[string]struct{})
	for _, name := range c.PostFormArray("removedImages") {
		removed[path.Base(name)] = struct{}{}
	}
	kept := equipment.Images[:0]
	for _, name := range equipment.Images {
		if _, gone := removed[path.Base(name)]; !gone {
			kept = append(kept, name)
		}
	}
	equipment.Images = kept

	newImages, err := h.saveUploadedImages(c)
	if err != nil {
		if errors.Is(err, sniffer.ErrUnsupportedType) || errors.Is(err, service.ErrFileTooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		h.log.Error().Err(err).Msg("store equipment images failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}
	equipment.Images = append(equipment.Images, newImages...)

	equipment.Name = c.PostForm("name")
	equipment.Category = c.PostForm("category")
	equipment.Description = c.PostForm("description")
	equipment.PricePerDay = price

	updated, err := h.stores.Equipment.Replace(c.Request.Context(), equipment)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
			return
		}
		h.log.Error().Err(err).Msg("update equipment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, h.toEquipmentResponse(updated))
}

func (h HandlerSet) DeleteEquipment(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
		return
	}

	// Cascade: dependent reservations first, then the equipment itself.
	removed, err := h.stores.Reservations.DeleteByEquipment(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Msg("delete equipment reservations failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	if err := h.stores.Equipment.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Equipment not found"})
			return
		}
		h.log.Error().Err(err).Msg("delete equipment failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
		return
	}

	h.log.Info().Str("equipment_id", id.Hex()).Int64("reservations_removed", removed).Msg("equipment deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Equipment and related reservations deleted"})
}
