package controllers

import (
	"time"

	"doulaops-backend/database"
	"doulaops-backend/models"
	"doulaops-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard returns the at-a-glance numbers the office screen shows.
func GetDashboard(c *fiber.Ctx) error {
	var activeClients int64
	database.DB.Model(&models.Client{}).Where("active = ?", true).Count(&activeClients)

	var signedContracts int64
	database.DB.Model(&models.Contract{}).Where("status = ?", models.ContractSigned).Count(&signedContracts)

	var pendingContracts int64
	database.DB.Model(&models.Contract{}).Where("status = ?", models.ContractSent).Count(&pendingContracts)

	var outstanding struct {
		Total float64
	}
	database.DB.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total - paid_total), 0) AS total").
		Where("status <> ?", "PAID").
		Scan(&outstanding)

	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	var monthPayments struct {
		Total float64
		Count int64
	}
	database.DB.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("status = ? AND paid_at >= ?", "COMPLETED", monthStart).
		Scan(&monthPayments)

	var onCall int64
	database.DB.Model(&models.StaffMember{}).Where("active = ? AND on_call = ?", true, true).Count(&onCall)

	return c.JSON(fiber.Map{
		"active_clients":      activeClients,
		"signed_contracts":    signedContracts,
		"pending_contracts":   pendingContracts,
		"outstanding_total":   utils.Round2(outstanding.Total),
		"payments_this_month": utils.Round2(monthPayments.Total),
		"payment_count_month": monthPayments.Count,
		"staff_on_call":       onCall,
	})
}
