package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"scolaris_backend/internals/configs"
	model "scolaris_backend/internals/features/audit/model"
)

// StartAuditRetentionScheduler purges audit entries older than the configured
// retention window, nightly. The trail is append-only otherwise; this is the
// single sanctioned deletion path.
func StartAuditRetentionScheduler(db *gorm.DB) *cron.Cron {
	c := cron.New()

	_, err := c.AddFunc("0 3 * * *", func() {
		cutoff := time.Now().AddDate(0, 0, -configs.AuditRetentionDays)
		res := db.
			Where("audit_created_at < ?", cutoff).
			Delete(&model.AuditEntryModel{})
		if res.Error != nil {
			logrus.Warnf("audit retention purge failed: %v", res.Error)
			return
		}
		if res.RowsAffected > 0 {
			logrus.Infof("audit retention purge removed %d entries older than %s", res.RowsAffected, cutoff.Format("2006-01-02"))
		}
	})
	if err != nil {
		logrus.Warnf("audit retention scheduler not started: %v", err)
		return c
	}

	c.Start()
	return c
}
