package cmd

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/urocare/clinic/internal/config"
	"github.com/urocare/clinic/internal/db"
	"github.com/urocare/clinic/internal/logger"
	"github.com/urocare/clinic/internal/model"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the MySQL record store with demo bookings and messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1) load config
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger.Init(cfg.Log.Level)
		defer logger.Sync()

		// 2) connect MySQL
		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOptsFrom(cfg.MySQL))
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		now := time.Now().UTC()
		if err := seedBookings(sqlDB, demoBookings(now)); err != nil {
			return err
		}
		if err := seedMessages(sqlDB, demoMessages(now)); err != nil {
			return err
		}

		logger.Log.Info("seed completed")
		return nil
	},
}

func strptr(s string) *string { return &s }

// demoBookings covers every status so each dashboard action has a target.
func demoBookings(now time.Time) []model.BookingRequest {
	return []model.BookingRequest{
		{ID: "11111111-1111-4111-8111-111111111101", FullName: "Sara Al-Harbi", Mobile: "0501234567", Address: "Riyadh, Al Olaya", Message: strptr("Follow-up for kidney stones"), Status: model.BookingPending, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: "11111111-1111-4111-8111-111111111102", FullName: "Omar Haddad", Mobile: "0507654321", Address: "Jeddah, Al Rawdah", Status: model.BookingPending, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "11111111-1111-4111-8111-111111111103", FullName: "محمد العتيبي", Mobile: "0551112222", Address: "الدمام", Message: strptr("استشارة"), Status: model.BookingConfirmed, CreatedAt: now.Add(-26 * time.Hour)},
		{ID: "11111111-1111-4111-8111-111111111104", FullName: "Lina Saleh", Mobile: "0569998888", Address: "Khobar", Status: model.BookingCompleted, CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "11111111-1111-4111-8111-111111111105", FullName: "Hadi Nasser", Mobile: "0543332211", Address: "Mecca", Status: model.BookingCancelled, CreatedAt: now.Add(-96 * time.Hour)},
	}
}

func demoMessages(now time.Time) []model.ContactMessage {
	return []model.ContactMessage{
		{ID: "22222222-2222-4222-8222-222222222201", FullName: "Noura Fahad", Mobile: "0531234000", Address: "Riyadh", Message: strptr("Do you accept insurance?"), IsRead: false, CreatedAt: now.Add(-30 * time.Minute)},
		{ID: "22222222-2222-4222-8222-222222222202", FullName: "Khalid Omar", Mobile: "0529876000", Address: "Medina", IsRead: true, CreatedAt: now.Add(-48 * time.Hour)},
	}
}

// seedBookings upserts by primary key, so re-running resets the demo rows.
func seedBookings(dbx *sqlx.DB, rows []model.BookingRequest) error {
	const q = `
INSERT INTO booking_requests
    (id, full_name, mobile, address, message, status, created_at)
VALUES
    (:id, :full_name, :mobile, :address, :message, :status, :created_at)
ON DUPLICATE KEY UPDATE
    full_name  = VALUES(full_name),
    mobile     = VALUES(mobile),
    address    = VALUES(address),
    message    = VALUES(message),
    status     = VALUES(status),
    created_at = VALUES(created_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, b := range rows {
		if _, err := tx.NamedExec(q, b); err != nil {
			return fmt.Errorf("insert booking %q: %w", b.FullName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bookings: %w", err)
	}
	logger.Log.Info("seeded bookings", zap.Int("count", len(rows)))
	return nil
}

func seedMessages(dbx *sqlx.DB, rows []model.ContactMessage) error {
	const q = `
INSERT INTO contact_messages
    (id, full_name, mobile, address, message, is_read, created_at)
VALUES
    (:id, :full_name, :mobile, :address, :message, :is_read, :created_at)
ON DUPLICATE KEY UPDATE
    full_name  = VALUES(full_name),
    mobile     = VALUES(mobile),
    address    = VALUES(address),
    message    = VALUES(message),
    is_read    = VALUES(is_read),
    created_at = VALUES(created_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range rows {
		if _, err := tx.NamedExec(q, m); err != nil {
			return fmt.Errorf("insert message %q: %w", m.FullName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit messages: %w", err)
	}
	logger.Log.Info("seeded messages", zap.Int("count", len(rows)))
	return nil
}
