package models

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
)

// SystemConfig keys.
const (
	ConfigKeyFlagSchemaVersion = "feature_flag_schema_version"
)

// SystemConfig represents key-value configuration settings such as the
// feature-flag defaults schema version.
type SystemConfig struct {
	Key   string `gorm:"primaryKey;column:key;size:64" json:"key"`
	Value string `gorm:"column:value" json:"value"`
}

// TableName specifies the table name for GORM
func (SystemConfig) TableName() string {
	return "system_config"
}

// GetConfigInt reads an integer config value; missing keys return 0.
func GetConfigInt(db *gorm.DB, key string) (int, error) {
	var cfg SystemConfig
	if err := db.Where("`key` = ?", key).First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return strconv.Atoi(cfg.Value)
}

// SetConfigInt writes an integer config value, inserting the key if absent.
func SetConfigInt(db *gorm.DB, key string, value int) error {
	cfg := SystemConfig{Key: key, Value: strconv.Itoa(value)}
	return db.Save(&cfg).Error
}
