package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrBillNotFound = errors.New("bill not found")

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(gdb *gorm.DB) *BillRepository {
	return &BillRepository{db: gdb}
}

// Create 保存账单
func (r *BillRepository) Create(b *Bill) error {
	if err := r.db.Create(b).Error; err != nil {
		return fmt.Errorf("create bill %s: %w", b.BillNo, err)
	}
	return nil
}

// GetByNo 按账单号查询
func (r *BillRepository) GetByNo(billNo string) (*Bill, error) {
	var bill Bill
	err := r.db.Where("bill_no = ?", billNo).First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillNotFound
		}
		return nil, err
	}
	return &bill, nil
}

// ListByRoom 查询房间的历史账单
func (r *BillRepository) ListByRoom(roomID string) ([]Bill, error) {
	var bills []Bill
	err := r.db.Where("room_id = ?", roomID).Order("checkout_time desc").Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("list bills for room %s: %w", roomID, err)
	}
	return bills, nil
}
