package repository

import (
	"errors"
	"time"

	"github.com/omniorder/internal/models"

	"gorm.io/gorm"
)

// AutomationRuleRepository 自动化规则数据访问接口
type AutomationRuleRepository interface {
	Create(rule *models.AutomationRule) error
	Update(rule *models.AutomationRule) error
	Delete(id uint) error
	GetByID(id uint) (*models.AutomationRule, error)
	ListActiveByTrigger(tenantID uint, triggerEvent string) ([]models.AutomationRule, error)
	List(filter RuleListFilter) ([]models.AutomationRule, int64, error)
	RecordTrigger(id uint, at time.Time) error
	WithTx(tx *gorm.DB) AutomationRuleRepository
}

// GormAutomationRuleRepository GORM 实现
type GormAutomationRuleRepository struct {
	db *gorm.DB
}

// NewAutomationRuleRepository 创建规则仓库
func NewAutomationRuleRepository(db *gorm.DB) *GormAutomationRuleRepository {
	return &GormAutomationRuleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAutomationRuleRepository) WithTx(tx *gorm.DB) AutomationRuleRepository {
	if tx == nil {
		return r
	}
	return &GormAutomationRuleRepository{db: tx}
}

// Create 创建规则
func (r *GormAutomationRuleRepository) Create(rule *models.AutomationRule) error {
	if rule == nil {
		return errors.New("rule is nil")
	}
	return r.db.Create(rule).Error
}

// Update 更新规则
func (r *GormAutomationRuleRepository) Update(rule *models.AutomationRule) error {
	if rule == nil || rule.ID == 0 {
		return errors.New("invalid rule")
	}
	return r.db.Save(rule).Error
}

// Delete 删除规则
func (r *GormAutomationRuleRepository) Delete(id uint) error {
	if id == 0 {
		return errors.New("invalid rule id")
	}
	return r.db.Delete(&models.AutomationRule{}, id).Error
}

// GetByID 根据 ID 获取规则
func (r *GormAutomationRuleRepository) GetByID(id uint) (*models.AutomationRule, error) {
	if id == 0 {
		return nil, errors.New("invalid rule id")
	}
	var rule models.AutomationRule
	if err := r.db.First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListActiveByTrigger 获取触发事件下的启用规则，按优先级降序
func (r *GormAutomationRuleRepository) ListActiveByTrigger(tenantID uint, triggerEvent string) ([]models.AutomationRule, error) {
	if tenantID == 0 || triggerEvent == "" {
		return nil, errors.New("invalid trigger lookup params")
	}
	var rules []models.AutomationRule
	err := r.db.
		Where("tenant_id = ? AND trigger_event = ? AND is_active = ?", tenantID, triggerEvent, true).
		Order("priority DESC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// List 分页查询规则列表
func (r *GormAutomationRuleRepository) List(filter RuleListFilter) ([]models.AutomationRule, int64, error) {
	query := r.db.Model(&models.AutomationRule{})
	if filter.TenantID > 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.TriggerEvent != "" {
		query = query.Where("trigger_event = ?", filter.TriggerEvent)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rules []models.AutomationRule
	query = query.Order("priority DESC, id ASC")
	if err := applyPagination(query, filter.Page, filter.PageSize).Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// RecordTrigger 记录规则触发时间与次数
func (r *GormAutomationRuleRepository) RecordTrigger(id uint, at time.Time) error {
	if id == 0 {
		return errors.New("invalid rule id")
	}
	return r.db.Model(&models.AutomationRule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_triggered": at,
			"trigger_count":  gorm.Expr("trigger_count + 1"),
		}).Error
}
