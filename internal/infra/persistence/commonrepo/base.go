package commonrepo

import "time"

type Mode struct {
	ID        uint64    `gorm:"primarykey;autoIncrement:false"`
	CreatedAt time.Time `gorm:"index;autoCreateTime"`
	UpdatedAt time.Time `gorm:"index;autoUpdateTime"`
}

// VersionedMode 带乐观锁版本号的基础字段
type VersionedMode struct {
	Mode
	Version int64 `gorm:"column:version;not null;default:0"`
}
