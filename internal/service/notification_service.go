package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/repository"
)

// NotificationService 自动化规则通知投递。
// 配置了 webhook 地址时 POST 出站，否则只落结构化日志。
type NotificationService struct {
	orderRepo  repository.OrderRepository
	webhookURL string
	client     *http.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(orderRepo repository.OrderRepository, webhookURL string, timeout time.Duration) *NotificationService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationService{
		orderRepo:  orderRepo,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
	}
}

// Dispatch 投递单条通知
func (s *NotificationService) Dispatch(ctx context.Context, orderID, ruleID uint, message string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	logger.Infow("automation_notification",
		"order_no", order.OrderNo,
		"rule_id", ruleID,
		"message", message,
	)
	if s.webhookURL == "" {
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"order_no":     order.OrderNo,
		"channel_id":   order.ChannelID,
		"rule_id":      ruleID,
		"message":      message,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
