package controllers

import (
	"encoding/json"
	"time"

	"doulaops-backend/config"
	"doulaops-backend/database"
	"doulaops-backend/middlewares"
	"doulaops-backend/models"
	"doulaops-backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type ContractInput struct {
	ClientID       uint    `json:"client_id" validate:"required"`
	ServicePackage string  `json:"service_package" validate:"required"`
	TotalFee       float64 `json:"total_fee" validate:"gt=0"`
	Terms          string  `json:"terms"`
}

func CreateContract(c *fiber.Ctx) error {
	var input ContractInput
	if err := middlewares.BindAndValidate(c, &input); err != nil {
		return err
	}

	var client models.Client
	if err := database.DB.First(&client, "id = ?", input.ClientID).Error; err != nil {
		return c.Status(400).JSON(fiber.Map{"message": "Unknown client"})
	}

	// Freeze the terms as offered; later edits mean a new contract.
	snapshot, _ := json.Marshal(fiber.Map{
		"client_name":     client.FullName(),
		"service_package": input.ServicePackage,
		"total_fee":       input.TotalFee,
		"terms":           input.Terms,
	})

	contract := models.Contract{
		ClientID:       input.ClientID,
		ServicePackage: input.ServicePackage,
		TotalFee:       input.TotalFee,
		Status:         models.ContractDraft,
		Snapshot:       datatypes.JSON(snapshot),
	}

	tx := database.DB.Begin()
	if err := tx.Create(&contract).Error; err != nil {
		tx.Rollback()
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create contract",
			"error":   err.Error(),
		})
	}
	tx.Commit()

	database.DB.Preload("Client").First(&contract, contract.ID)
	return c.JSON(contract)
}

// SendContract pushes a draft contract to the e-signature provider.
func SendContract(esign services.ESignClient) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var contract models.Contract
		if err := database.DB.Preload("Client").First(&contract, "id = ?", id).Error; err != nil {
			return c.Status(404).JSON(fiber.Map{"message": "Contract not found"})
		}
		if contract.Status != models.ContractDraft {
			return c.Status(409).JSON(fiber.Map{"message": "Contract already sent"})
		}

		envelope, err := esign.SendEnvelope(c.Context(), services.EnvelopeRequest{
			ContractID:     contract.ID,
			ClientName:     contract.Client.FullName(),
			ClientEmail:    contract.Client.Email,
			ServicePackage: contract.ServicePackage,
			TotalFee:       contract.TotalFee,
		})
		if err != nil {
			config.LogError(config.GetLogger(), "contracts", "SendContract", "provider send failed", contract.ID, err)
			return c.Status(502).JSON(fiber.Map{
				"message": "Signature provider error",
				"error":   err.Error(),
			})
		}

		now := time.Now().UTC()
		tx := database.DB.Begin()
		err = tx.Model(&contract).Updates(map[string]any{
			"status":      models.ContractSent,
			"provider":    esign.Provider(),
			"envelope_id": envelope.ID,
			"sent_at":     &now,
		}).Error
		if err != nil {
			tx.Rollback()
			return c.Status(500).JSON(fiber.Map{
				"message": "Could not update contract",
				"error":   err.Error(),
			})
		}
		tx.Commit()

		database.DB.Preload("Client").First(&contract, contract.ID)
		return c.JSON(contract)
	}
}

func GetContracts(c *fiber.Ctx) error {
	var contracts []models.Contract
	q := database.DB.Preload("Client")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	q.Order("created_at DESC").Find(&contracts)

	return c.JSON(fiber.Map{
		"contracts": contracts,
		"message":   "success",
	})
}

func GetContract(c *fiber.Ctx) error {
	id := c.Params("id")

	var contract models.Contract
	if err := database.DB.Preload("Client").First(&contract, "id = ?", id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"message": "Contract not found"})
	}
	return c.JSON(contract)
}

// ESignWebhook receives provider callbacks. Both SignNow and DocuSign are
// normalized to {envelope_id, status} by the configured webhook mapping.
func ESignWebhook() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var payload struct {
			EnvelopeID string `json:"envelope_id"`
			Status     string `json:"status"`
		}
		if err := c.BodyParser(&payload); err != nil || payload.EnvelopeID == "" {
			return c.Status(400).JSON(fiber.Map{"message": "Invalid webhook payload"})
		}

		var contract models.Contract
		if err := database.DB.First(&contract, "envelope_id = ?", payload.EnvelopeID).Error; err != nil {
			return c.Status(404).JSON(fiber.Map{"message": "Unknown envelope"})
		}

		updates := map[string]any{}
		switch payload.Status {
		case "signed", "completed", "fulfilled":
			now := time.Now().UTC()
			updates["status"] = models.ContractSigned
			updates["signed_at"] = &now
		case "declined", "voided":
			updates["status"] = models.ContractDeclined
		default:
			// Intermediate states (viewed, delivered) are not tracked.
			return c.JSON(fiber.Map{"message": "ignored"})
		}

		tx := database.DB.Begin()
		if err := tx.Model(&contract).Updates(updates).Error; err != nil {
			tx.Rollback()
			return c.Status(500).JSON(fiber.Map{
				"message": "Could not update contract",
				"error":   err.Error(),
			})
		}
		tx.Commit()

		return c.JSON(fiber.Map{"message": "success"})
	}
}
