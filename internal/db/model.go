package db

import "time"

// 房间快照表,调度器写穿,仅用于重启恢复与查询展示
type RoomRecord struct {
	RoomID      string `gorm:"primaryKey;type:varchar(32)"`
	Occupied    bool
	GuestID     string    `gorm:"type:varchar(64)"`
	CheckinTime time.Time `gorm:"type:datetime"`
	DailyRate   float64

	IsOn       bool
	Mode       string `gorm:"type:varchar(8)"`
	FanSpeed   string `gorm:"type:varchar(8)"`
	TargetTemp float64

	CurrentTemp float64
	InitialTemp float64

	Status         string `gorm:"type:varchar(16)"` // IDLE / WAITING / SERVING
	ServiceTime    float64
	WaitIndefinite bool
	WaitRemaining  float64

	Fee      float64
	TotalFee float64

	UpdatedAt time.Time
}

// 详单表,每段服务一条
type Detail struct {
	ID        uint   `gorm:"primaryKey"`
	RoomID    string `gorm:"index;type:varchar(32)"`
	StartTime time.Time `gorm:"type:datetime"`
	EndTime   time.Time `gorm:"type:datetime"`
	Speed     string    `gorm:"type:varchar(8)"`
	Rate      float64   // 元/分钟
	Seconds   float64
	Cost      float64
	Reason    string `gorm:"type:varchar(16)"`
}

// 账单表,退房时生成
type Bill struct {
	BillNo       string `gorm:"primaryKey;type:varchar(64)"`
	RoomID       string `gorm:"index;type:varchar(32)"`
	GuestID      string `gorm:"type:varchar(64)"`
	CheckinTime  time.Time `gorm:"type:datetime"`
	CheckoutTime time.Time `gorm:"type:datetime"`
	Nights       int
	RoomFee      float64
	ACFee        float64
	TotalFee     float64
}

// 用户表,前台与管理员账号
type User struct {
	Username string `gorm:"primaryKey;type:varchar(64)"`
	Password string `gorm:"type:varchar(128)"`
	Identity string `gorm:"type:varchar(32)"` // administrator / manager / reception
}
