package service

import (
	"strings"
	"time"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/queue"
	"github.com/omniorder/internal/repository"

	"github.com/shopspring/decimal"
)

// AutomationService 自动化规则引擎。只写订单元数据与派发通知，从不碰库存。
type AutomationService struct {
	ruleRepo      repository.AutomationRuleRepository
	orderRepo     repository.OrderRepository
	warehouseRepo repository.WarehouseRepository
	queueClient   *queue.Client
}

// NewAutomationService 创建规则引擎
func NewAutomationService(ruleRepo repository.AutomationRuleRepository, orderRepo repository.OrderRepository, warehouseRepo repository.WarehouseRepository, queueClient *queue.Client) *AutomationService {
	return &AutomationService{
		ruleRepo:      ruleRepo,
		orderRepo:     orderRepo,
		warehouseRepo: warehouseRepo,
		queueClient:   queueClient,
	}
}

// ApplyOrderPlaced 对新导入订单执行 order_placed 规则。
// 规则按优先级降序执行，条件全部满足才触发，动作按声明顺序执行。
// 返回已应用的规则 ID 列表。
func (s *AutomationService) ApplyOrderPlaced(order *models.Order) ([]uint, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	rules, err := s.ruleRepo.ListActiveByTrigger(order.TenantID, constants.RuleTriggerOrderPlaced)
	if err != nil {
		return nil, err
	}

	var applied []uint
	for i := range rules {
		rule := &rules[i]
		if !s.matches(rule, order) {
			continue
		}
		if err := s.execute(rule, order); err != nil {
			logger.Errorw("automation_rule_execute_failed",
				"rule_id", rule.ID,
				"order_no", order.OrderNo,
				"error", err,
			)
			continue
		}
		applied = append(applied, rule.ID)
		if err := s.ruleRepo.RecordTrigger(rule.ID, time.Now()); err != nil {
			logger.Warnw("automation_rule_record_trigger_failed", "rule_id", rule.ID, "error", err)
		}
	}

	if len(applied) > 0 {
		order.AppliedRuleIDs = models.UintArray(applied)
		if err := s.orderRepo.Update(order); err != nil {
			return applied, err
		}
	}
	return applied, nil
}

// matches 条件求值，所有条件同时满足才算命中
func (s *AutomationService) matches(rule *models.AutomationRule, order *models.Order) bool {
	conditions := rule.ConditionsJSON
	if len(conditions) == 0 {
		return true
	}

	if raw, ok := conditions["min_order_value"]; ok {
		min, ok := toDecimal(raw)
		if !ok || order.TotalAmount.Decimal.LessThan(min) {
			return false
		}
	}
	if raw, ok := conditions["channel_types"]; ok {
		types, ok := toStringSlice(raw)
		if !ok || order.Channel == nil || !containsString(types, order.Channel.ChannelType) {
			return false
		}
	}
	if raw, ok := conditions["customer_email_contains"]; ok {
		fragment, ok := raw.(string)
		if !ok || fragment == "" {
			return false
		}
		if !strings.Contains(strings.ToLower(order.CustomerEmail), strings.ToLower(fragment)) {
			return false
		}
	}
	if raw, ok := conditions["currency"]; ok {
		currency, ok := raw.(string)
		if !ok || !strings.EqualFold(currency, order.Currency) {
			return false
		}
	}
	return true
}

// execute 按声明顺序执行动作
func (s *AutomationService) execute(rule *models.AutomationRule, order *models.Order) error {
	actions := rule.ActionsJSON
	if len(actions) == 0 {
		return nil
	}

	if raw, ok := actions["assign_warehouse"]; ok {
		if id, ok := toUint(raw); ok && id > 0 {
			warehouse, err := s.warehouseRepo.GetByID(id)
			if err != nil {
				return err
			}
			if warehouse != nil && warehouse.IsActive {
				order.AssignedWarehouseID = &warehouse.ID
			} else {
				logger.Warnw("automation_assign_warehouse_skipped", "rule_id", rule.ID, "warehouse_id", id)
			}
		}
	}
	if raw, ok := actions["set_priority"]; ok {
		if priority, ok := toInt(raw); ok {
			order.Priority = priority
		}
	}
	if raw, ok := actions["add_tags"]; ok {
		if tags, ok := toStringSlice(raw); ok {
			order.Tags = mergeTags(order.Tags, tags)
		}
	}
	if raw, ok := actions["send_notification"]; ok && s.queueClient != nil {
		message, _ := raw.(string)
		err := s.queueClient.EnqueueNotificationDispatch(queue.NotificationDispatchPayload{
			OrderID: order.ID,
			RuleID:  rule.ID,
			Message: message,
		})
		if err != nil {
			// 通知失败不阻断其余动作
			logger.Warnw("automation_notification_enqueue_failed", "rule_id", rule.ID, "order_no", order.OrderNo, "error", err)
		}
	}
	return s.orderRepo.Update(order)
}

// RuleInput 规则创建/更新输入
type RuleInput struct {
	TenantID     uint        `json:"tenant_id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	TriggerEvent string      `json:"trigger_event"`
	Conditions   models.JSON `json:"conditions"`
	Actions      models.JSON `json:"actions"`
	Priority     *int        `json:"priority"`
	IsActive     *bool       `json:"is_active"`
}

// CreateRule 创建规则，触发事件默认 order_placed
func (s *AutomationService) CreateRule(input RuleInput) (*models.AutomationRule, error) {
	trigger := input.TriggerEvent
	if trigger == "" {
		trigger = constants.RuleTriggerOrderPlaced
	}
	rule := &models.AutomationRule{
		TenantID:       input.TenantID,
		Name:           strings.TrimSpace(input.Name),
		Description:    input.Description,
		TriggerEvent:   trigger,
		ConditionsJSON: input.Conditions,
		ActionsJSON:    input.Actions,
		IsActive:       true,
	}
	if input.Priority != nil {
		rule.Priority = *input.Priority
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if err := s.ruleRepo.Create(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// UpdateRule 更新规则
func (s *AutomationService) UpdateRule(id uint, input RuleInput) (*models.AutomationRule, error) {
	rule, err := s.GetRule(id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		rule.Name = name
	}
	if input.Description != "" {
		rule.Description = input.Description
	}
	if input.TriggerEvent != "" {
		rule.TriggerEvent = input.TriggerEvent
	}
	if input.Conditions != nil {
		rule.ConditionsJSON = input.Conditions
	}
	if input.Actions != nil {
		rule.ActionsJSON = input.Actions
	}
	if input.Priority != nil {
		rule.Priority = *input.Priority
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if err := s.ruleRepo.Update(rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// DeleteRule 删除规则
func (s *AutomationService) DeleteRule(id uint) error {
	if _, err := s.GetRule(id); err != nil {
		return err
	}
	return s.ruleRepo.Delete(id)
}

// GetRule 查询规则
func (s *AutomationService) GetRule(id uint) (*models.AutomationRule, error) {
	rule, err := s.ruleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}
	return rule, nil
}

// ListRules 规则列表
func (s *AutomationService) ListRules(filter repository.RuleListFilter) ([]models.AutomationRule, int64, error) {
	return s.ruleRepo.List(filter)
}

// mergeTags 合并标签并去重，保持原有顺序
func mergeTags(existing models.StringArray, incoming []string) models.StringArray {
	seen := make(map[string]bool, len(existing))
	merged := make(models.StringArray, 0, len(existing)+len(incoming))
	for _, tag := range existing {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		merged = append(merged, tag)
	}
	for _, tag := range incoming {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		merged = append(merged, tag)
	}
	return merged
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}

func toDecimal(raw interface{}) (decimal.Decimal, bool) {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func toUint(raw interface{}) (uint, bool) {
	n, ok := toInt(raw)
	if !ok || n < 0 {
		return 0, false
	}
	return uint(n), true
}

func toStringSlice(raw interface{}) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
