package controllers

import (
	"strconv"
	"strings"

	"doulaops-backend/database"
	"doulaops-backend/middlewares"
	"doulaops-backend/models"
	"doulaops-backend/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateStaffMember(c *fiber.Ctx) error {
	var data map[string]string
	if err := c.BodyParser(&data); err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Invalid input"})
	}

	rate := 0.0
	if v := strings.TrimSpace(data["hourly_rate"]); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"message": "Invalid hourly rate"})
		}
		rate = utils.Round2(parsed)
	}

	onCall, _ := strconv.ParseBool(data["on_call"]) // optional

	staff := models.StaffMember{
		FirstName:      data["first_name"],
		LastName:       data["last_name"],
		Email:          data["email"],
		PhoneNumber:    data["phone_number"],
		Certifications: data["certifications"],
		HourlyRate:     rate,
		OnCall:         onCall,
		Active:         true,
	}

	tx := database.DB.Begin()
	if err := tx.Create(&staff).Error; err != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create staff member",
			"error":   err.Error(),
		})
	}
	tx.Commit()

	return c.JSON(staff)
}

func GetStaffMembers(c *fiber.Ctx) error {
	var staff []models.StaffMember
	q := database.DB.Where("active = ?", true)
	if c.Query("on_call") == "true" {
		q = q.Where("on_call = ?", true)
	}
	q.Order("last_name").Find(&staff)

	return c.JSON(fiber.Map{
		"staff":   staff,
		"message": "success",
	})
}

type StaffPatch struct {
	FirstName      *string  `json:"first_name"`
	LastName       *string  `json:"last_name"`
	Email          *string  `json:"email" validate:"omitempty,email" normalize:"email"`
	PhoneNumber    *string  `json:"phone_number"`
	Certifications *string  `json:"certifications"`
	HourlyRate     *float64 `json:"hourly_rate"`
	OnCall         *bool    `json:"on_call"`
	Active         *bool    `json:"active"`
}

func UpdateStaffMember(c *fiber.Ctx) error {
	id := c.Params("id")

	var patch StaffPatch
	if err := middlewares.BindAndValidate(c, &patch); err != nil {
		return err
	}

	updates := utils.UpdatesFromPtrDTO(&patch)
	if len(updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"message": "No fields to update"})
	}

	tx := database.DB.Begin()
	res := tx.Model(&models.StaffMember{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not update staff member",
			"error":   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return c.Status(404).JSON(fiber.Map{"message": "Staff member not found"})
	}
	tx.Commit()

	var staff models.StaffMember
	database.DB.First(&staff, "id = ?", id)
	return c.JSON(staff)
}
