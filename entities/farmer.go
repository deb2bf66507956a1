package entities

import "time"

type Farmer struct {
	FarmerID      uint64 `gorm:"primaryKey;autoIncrement:false" json:"farmerId"`
	Address       string `gorm:"index" json:"address"`
	Active        bool   `json:"active"`
	TotalLand     uint64 `json:"totalLand"` // acres
	CropType      string `json:"cropType"`
	YieldEstimate uint64 `json:"yieldEstimate"` // bushels
	RegisteredAt  uint64 `json:"registeredAt"`  // block height

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
