package controllers

import (
	"time"

	"doulaops-backend/database"
	"doulaops-backend/middlewares"
	"doulaops-backend/models"
	"doulaops-backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ClientInput struct {
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	Email            string `json:"email" validate:"required,email" normalize:"email"`
	PhoneNumber      string `json:"phone_number"`
	Address          string `json:"address"`
	City             string `json:"city"`
	Zip              string `json:"zip"`
	PartnerName      string `json:"partner_name"`
	DueDate          string `json:"due_date" validate:"omitempty,ymd" normalize:"date"`
	Hospital         string `json:"hospital"`
	ReferralSource   string `json:"referral_source"`
	BirthPreferences string `json:"birth_preferences"`
}

func CreateClient(c *fiber.Ctx) error {
	var input ClientInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	client := models.Client{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Email:            input.Email,
		PhoneNumber:      input.PhoneNumber,
		Address:          input.Address,
		City:             input.City,
		Zip:              input.Zip,
		PartnerName:      input.PartnerName,
		Hospital:         input.Hospital,
		ReferralSource:   input.ReferralSource,
		BirthPreferences: input.BirthPreferences,
		Active:           true,
	}
	if input.DueDate != "" {
		due, _ := time.Parse("2006-01-02", input.DueDate)
		client.DueDate = &due
	}

	tx := database.DB.Begin()
	if err := tx.Create(&client).Error; err != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create client",
			"error":   err.Error(),
		})
	}
	tx.Commit()

	return c.JSON(client)
}

func GetClients(c *fiber.Ctx) error {
	limit := utils.ParseIntDefault(c.Query("limit"), 100)
	offset := utils.ParseIntDefault(c.Query("offset"), 0)

	var clients []models.Client
	q := database.DB.Where("active = ?", true)
	if search := c.Query("q"); search != "" {
		like := "%" + search + "%"
		q = q.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", like, like, like)
	}
	q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&clients)

	return c.JSON(fiber.Map{
		"clients": clients,
		"message": "success",
	})
}

func GetClient(c *fiber.Ctx) error {
	id := c.Params("id")

	var client models.Client
	if err := database.DB.First(&client, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Client not found"})
	}
	return c.JSON(client)
}

// ClientPatch uses pointer fields so omitted keys leave columns untouched.
type ClientPatch struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Email            *string `json:"email" validate:"omitempty,email" normalize:"email"`
	PhoneNumber      *string `json:"phone_number"`
	Address          *string `json:"address"`
	City             *string `json:"city"`
	Zip              *string `json:"zip"`
	PartnerName      *string `json:"partner_name"`
	Hospital         *string `json:"hospital"`
	ReferralSource   *string `json:"referral_source"`
	BirthPreferences *string `json:"birth_preferences"`
}

func UpdateClient(c *fiber.Ctx) error {
	id := c.Params("id")

	var patch ClientPatch
	if err := middlewares.BindAndValidate(c, &patch); err != nil {
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&patch)
	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"message": "No fields to update"})
	}

	tx := database.DB.Begin()
	res := tx.Model(&models.Client{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not update client",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return c.Status(404).JSON(fiber.Map{"message": "Client not found"})
	}
	tx.Commit()

	var client models.Client
	database.DB.First(&client, "id = ?", id)
	return c.JSON(client)
}

// ArchiveClient soft-deletes: intake records are never removed, just hidden.
func ArchiveClient(c *fiber.Ctx) error {
	id := c.Params("id")

	tx := database.DB.Begin()
	res := tx.Model(&models.Client{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		tx.Rollback()
		return c.Status(500).JSON(fiber.Map{
			"message": "Could not archive client",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return c.Status(404).JSON(fiber.Map{"message": "Client not found"})
	}
	tx.Commit()

	return c.JSON(fiber.Map{"message": "success"})
}
