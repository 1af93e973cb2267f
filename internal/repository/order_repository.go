package repository

import (
	"errors"
	"strings"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByChannelAndExternalID(channelID uint, externalID string) (*models.Order, error)
	List(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	Update(order *models.Order) error
	GetItemByID(itemID uint) (*models.OrderItem, error)
	UpdateItem(item *models.OrderItem) error
	UpdateItemStatus(itemID uint, status string) error
	ListItemsByOrder(orderID uint) ([]models.OrderItem, error)
	WithTx(tx *gorm.DB) OrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单行
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if order == nil {
		return errors.New("order is nil")
	}
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
	}
	return nil
}

// GetByID 根据 ID 获取订单（含订单行与渠道）
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	if id == 0 {
		return nil, errors.New("invalid order id")
	}
	var order models.Order
	err := r.db.Preload("Items").Preload("Channel").Preload("AssignedWarehouse").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo 根据订单编号获取订单
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	no := strings.TrimSpace(orderNo)
	if no == "" {
		return nil, errors.New("invalid order no")
	}
	var order models.Order
	err := r.db.Preload("Items").Preload("Channel").Where("order_no = ?", no).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByChannelAndExternalID 按渠道与渠道侧订单 ID 查找订单（导入幂等键）
func (r *GormOrderRepository) GetByChannelAndExternalID(channelID uint, externalID string) (*models.Order, error) {
	external := strings.TrimSpace(externalID)
	if channelID == 0 || external == "" {
		return nil, errors.New("invalid external lookup params")
	}
	var order models.Order
	err := r.db.Preload("Items").Where("channel_id = ? AND external_id = ?", channelID, external).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// List 分页查询订单列表
func (r *GormOrderRepository) List(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})
	if filter.TenantID > 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.ChannelID > 0 {
		query = query.Where("channel_id = ?", filter.ChannelID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Where("order_no = ?", orderNo)
	}
	if email := strings.TrimSpace(filter.CustomerEmail); email != "" {
		query = query.Where("customer_email = ?", email)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = query.Preload("Items").Preload("Channel").Order("priority DESC, id DESC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus 更新订单状态及附加字段
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if id == 0 || status == "" {
		return errors.New("invalid status update params")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// Update 保存订单
func (r *GormOrderRepository) Update(order *models.Order) error {
	if order == nil || order.ID == 0 {
		return errors.New("invalid order")
	}
	return r.db.Save(order).Error
}

// GetItemByID 根据 ID 获取订单行
func (r *GormOrderRepository) GetItemByID(itemID uint) (*models.OrderItem, error) {
	if itemID == 0 {
		return nil, errors.New("invalid order item id")
	}
	var item models.OrderItem
	if err := r.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// UpdateItem 保存订单行
func (r *GormOrderRepository) UpdateItem(item *models.OrderItem) error {
	if item == nil || item.ID == 0 {
		return errors.New("invalid order item")
	}
	return r.db.Save(item).Error
}

// UpdateItemStatus 更新订单行状态
func (r *GormOrderRepository) UpdateItemStatus(itemID uint, status string) error {
	if itemID == 0 || status == "" {
		return errors.New("invalid item status params")
	}
	return r.db.Model(&models.OrderItem{}).Where("id = ?", itemID).Update("status", status).Error
}

// ListItemsByOrder 获取订单下全部订单行
func (r *GormOrderRepository) ListItemsByOrder(orderID uint) ([]models.OrderItem, error) {
	if orderID == 0 {
		return nil, errors.New("invalid order id")
	}
	var items []models.OrderItem
	if err := r.db.Where("order_id = ?", orderID).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
