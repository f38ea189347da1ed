package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/readrally/readrally/models"
)

// ActivityRecorder counts successful API requests per day and path. The stats
// endpoint sums today's rows into a daily-active figure.
func ActivityRecorder(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 400 {
			return
		}

		// Skip infrastructure endpoints and static assets so they do not skew the numbers
		path := c.Request.URL.Path
		if path == "/health" || strings.Contains(path, "/stats") || strings.HasPrefix(path, "/static/") {
			return
		}
		// Collapse numeric path segments so /groups/17 and /groups/42 count as one path
		if c.FullPath() != "" {
			path = c.FullPath()
		}

		// Use local midnight to align with DATE column
		now := time.Now().In(time.Local)
		localMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		// Atomic upsert to avoid duplicate key errors under concurrency
		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1"), "updated_at": time.Now()}),
		}).Create(&models.DailyActivity{Date: localMidnight, Path: path, Count: 1}).Error
	}
}
