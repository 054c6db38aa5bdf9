package model

import (
	"strconv"
	"strings"
	"time"
)

const idSeparator = ";"

// StorefrontSetting is the single row configuring what the home page
// features. It replaces an untyped on-disk JSON blob from an earlier
// iteration of the admin panel.
type StorefrontSetting struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	SelectedCategoryIDs string    `json:"-"`
	SelectedProductIDs  string    `json:"-"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (StorefrontSetting) TableName() string {
	return "storefront_settings"
}

func (s *StorefrontSetting) CategoryIDs() []uint {
	return splitIDs(s.SelectedCategoryIDs)
}

func (s *StorefrontSetting) ProductIDs() []uint {
	return splitIDs(s.SelectedProductIDs)
}

func (s *StorefrontSetting) SetCategoryIDs(ids []uint) {
	s.SelectedCategoryIDs = joinIDs(ids)
}

func (s *StorefrontSetting) SetProductIDs(ids []uint) {
	s.SelectedProductIDs = joinIDs(ids)
}

func splitIDs(serialized string) []uint {
	if serialized == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(serialized, idSeparator) {
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

func joinIDs(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, idSeparator)
}
