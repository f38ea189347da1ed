package utils

import (
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/readrally/readrally/config"
	"github.com/readrally/readrally/models"
)

// StartOrphanUploadCleaner launches a background goroutine that periodically
// deletes uploaded check-in images whose check-in never committed. A
// successful check-in removes its uploaded_files row, so anything still
// expired here is an orphan. Best-effort, failures are logged.
func StartOrphanUploadCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			var items []models.UploadedFile
			if err := db.Where("expire_at <= ?", time.Now()).Limit(100).Find(&items).Error; err != nil {
				log.Printf("orphan upload cleaner query failed: %v", err)
				continue
			}
			for _, it := range items {
				if it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// Remove row regardless of file deletion outcome
				if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil {
					log.Printf("orphan upload cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}

// ReleaseUpload marks an uploaded file as permanently owned by deleting its
// cleanup record. Called after the owning check-in commits.
func ReleaseUpload(db *gorm.DB, url string) {
	if url == "" {
		return
	}
	if err := db.Where("url = ?", url).Delete(&models.UploadedFile{}).Error; err != nil {
		log.Printf("failed to release upload %s: %v", url, err)
	}
}
