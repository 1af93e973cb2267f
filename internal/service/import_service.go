package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/omniorder/internal/channel"
	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/queue"
	"github.com/omniorder/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ImportService 订单导入服务：标准化订单落库并逐行预留库存
type ImportService struct {
	orderRepo    repository.OrderRepository
	channelRepo  repository.ChannelRepository
	syncLogRepo  repository.SyncLogRepository
	resolver     *SKUResolver
	reservations *ReservationService
	bundles      *BundleService
	automation   *AutomationService
	registry     *channel.Registry
	queueClient  *queue.Client
}

// NewImportService 创建订单导入服务
func NewImportService(
	orderRepo repository.OrderRepository,
	channelRepo repository.ChannelRepository,
	syncLogRepo repository.SyncLogRepository,
	resolver *SKUResolver,
	reservations *ReservationService,
	bundles *BundleService,
	automation *AutomationService,
	registry *channel.Registry,
	queueClient *queue.Client,
) *ImportService {
	return &ImportService{
		orderRepo:    orderRepo,
		channelRepo:  channelRepo,
		syncLogRepo:  syncLogRepo,
		resolver:     resolver,
		reservations: reservations,
		bundles:      bundles,
		automation:   automation,
		registry:     registry,
		queueClient:  queueClient,
	}
}

// ImportResult 单笔订单导入结果
type ImportResult struct {
	Order     *models.Order `json:"order"`
	Created   bool          `json:"created"`
	Reserved  int           `json:"reserved"`
	Backorder int           `json:"backorder"`
	Unmapped  int           `json:"unmapped"`
}

// BatchImportReport 批量导入汇总
type BatchImportReport struct {
	Total      int      `json:"total"`
	Created    int      `json:"created"`
	Duplicates int      `json:"duplicates"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// ImportRaw 导入渠道原始载荷：按渠道类型标准化后走统一导入
func (s *ImportService) ImportRaw(channelID uint, raw []byte) (*ImportResult, error) {
	ch, err := s.channelRepo.GetByID(channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	adapter, err := s.registry.Get(ch.ChannelType)
	if err != nil {
		return nil, ErrUnsupportedChannel
	}
	canonical, err := adapter.NormalizeOrder(raw)
	if err != nil {
		s.writeImportLog(ch, nil, constants.SyncLogStatusFailed, err.Error(), 0, 0, 0, nil)
		return nil, err
	}
	return s.importForChannel(ch, canonical)
}

// ImportCanonical 导入标准化订单。以 (channel_id, external_id) 幂等：
// 重复导入返回已有订单且不做任何库存变动。
func (s *ImportService) ImportCanonical(channelID uint, canonical *channel.CanonicalOrder) (*ImportResult, error) {
	ch, err := s.channelRepo.GetByID(channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}
	return s.importForChannel(ch, canonical)
}

func (s *ImportService) importForChannel(ch *models.Channel, canonical *channel.CanonicalOrder) (*ImportResult, error) {
	if canonical == nil {
		return nil, ErrEmptyOrder
	}
	if !ch.IsActive {
		return nil, ErrChannelDisabled
	}

	if canonical.ExternalID != "" {
		existing, err := s.orderRepo.GetByChannelAndExternalID(ch.ID, canonical.ExternalID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			logger.Infow("order_import_duplicate",
				"channel_id", ch.ID,
				"external_id", canonical.ExternalID,
				"order_no", existing.OrderNo,
			)
			return &ImportResult{Order: existing, Created: false}, nil
		}
	}

	startedAt := time.Now()
	result := &ImportResult{Created: true}
	var order *models.Order

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		order, txErr = s.createOrderInTx(tx, ch, canonical, result)
		return txErr
	})
	if err != nil {
		s.writeImportLog(ch, canonical, constants.SyncLogStatusFailed, err.Error(), len(canonical.Items), 0, len(canonical.Items), &startedAt)
		return nil, err
	}
	result.Order = order
	// 规则的渠道类型条件要读 Channel 关联
	order.Channel = ch

	// 事务提交后才执行自动化与同步，规则失败不影响已落库的订单
	if s.automation != nil {
		if _, err := s.automation.ApplyOrderPlaced(order); err != nil {
			logger.Warnw("order_import_automation_failed", "order_no", order.OrderNo, "error", err)
		}
	}

	status := constants.SyncLogStatusSuccess
	if result.Backorder > 0 || result.Unmapped > 0 {
		status = constants.SyncLogStatusPartial
	}
	s.writeImportLog(ch, canonical, status,
		fmt.Sprintf("reserved=%d backorder=%d unmapped=%d", result.Reserved, result.Backorder, result.Unmapped),
		len(canonical.Items), result.Reserved, result.Backorder+result.Unmapped, &startedAt)

	if s.queueClient != nil && result.Reserved > 0 {
		if err := s.queueClient.EnqueueChannelStockSync(queue.ChannelStockSyncPayload{ChannelID: ch.ID}); err != nil {
			logger.Warnw("order_import_sync_enqueue_failed", "channel_id", ch.ID, "error", err)
		}
	}

	logger.Infow("order_import_done",
		"channel_id", ch.ID,
		"order_no", order.OrderNo,
		"items", len(canonical.Items),
		"reserved", result.Reserved,
		"backorder", result.Backorder,
		"unmapped", result.Unmapped,
	)
	return result, nil
}

// createOrderInTx 在单事务内落库订单与订单行并逐行预留。
// 任何基础设施错误整单回滚；缺货与未映射是正常业务结果，不触发回滚。
func (s *ImportService) createOrderInTx(tx *gorm.DB, ch *models.Channel, canonical *channel.CanonicalOrder, result *ImportResult) (*models.Order, error) {
	order := buildOrder(ch, canonical)
	items := buildOrderItems(canonical)
	if len(items) == 0 {
		logger.Warnw("order_import_empty_items", "channel_id", ch.ID, "external_id", canonical.ExternalID)
	}

	orderRepo := s.orderRepo.WithTx(tx)
	if err := orderRepo.Create(order, items); err != nil {
		return nil, err
	}

	for i := range items {
		item := &items[i]
		if err := s.processItemInTx(tx, ch, order, item, result); err != nil {
			return nil, err
		}
		if err := orderRepo.UpdateItem(item); err != nil {
			return nil, err
		}
	}
	order.Items = items
	return order, nil
}

// processItemInTx 解析并预留单条订单行，行状态就地更新
func (s *ImportService) processItemInTx(tx *gorm.DB, ch *models.Channel, order *models.Order, item *models.OrderItem, result *ImportResult) error {
	target, err := s.resolver.ResolveInTx(tx, ch, item.ChannelSKU)
	if err != nil {
		return err
	}
	if !target.IsResolved() {
		item.Status = constants.ItemStatusUnmapped
		result.Unmapped++
		logger.Warnw("order_import_sku_unmapped",
			"channel_id", ch.ID,
			"order_no", order.OrderNo,
			"channel_sku", item.ChannelSKU,
		)
		return nil
	}

	switch target.Type {
	case constants.ResolutionProduct:
		item.ProductID = &target.Product.ID
		outcome, err := s.reservations.ReserveInTx(tx, ReserveInput{
			ProductID:          target.Product.ID,
			Quantity:           item.Quantity,
			TenantID:           ch.TenantID,
			PreferredWarehouse: order.AssignedWarehouseID,
			ChannelDefault:     ch.DefaultWarehouseID,
			OrderItemID:        &item.ID,
			Reference:          order.OrderNo,
		})
		if err != nil {
			return err
		}
		if outcome.Backorder {
			item.Status = constants.ItemStatusBackorder
			result.Backorder++
			return nil
		}
		item.Status = constants.ItemStatusReserved
		item.ReservationID = &outcome.Reservation.ID
		result.Reserved++
	case constants.ResolutionBundle:
		item.BundleID = &target.Bundle.ID
		outcome, err := s.bundles.ReserveBundleInTx(tx, ReserveBundleInput{
			BundleID:           target.Bundle.ID,
			Quantity:           item.Quantity,
			TenantID:           ch.TenantID,
			PreferredWarehouse: order.AssignedWarehouseID,
			ChannelDefault:     ch.DefaultWarehouseID,
			OrderItemID:        &item.ID,
			Reference:          order.OrderNo,
		})
		if err != nil {
			return err
		}
		if outcome.Backorder {
			item.Status = constants.ItemStatusBackorder
			result.Backorder++
			return nil
		}
		item.Status = constants.ItemStatusReserved
		result.Reserved++
	default:
		item.Status = constants.ItemStatusUnmapped
		result.Unmapped++
	}
	return nil
}

func (s *ImportService) writeImportLog(ch *models.Channel, canonical *channel.CanonicalOrder, status, message string, processed, succeeded, failed int, startedAt *time.Time) {
	entry := &models.ChannelSyncLog{
		TenantID:         ch.TenantID,
		ChannelID:        ch.ID,
		SyncType:         constants.SyncTypeOrderImport,
		Status:           status,
		RecordsProcessed: processed,
		RecordsSucceeded: succeeded,
		RecordsFailed:    failed,
		Message:          message,
	}
	if canonical != nil {
		entry.Reference = canonical.ExternalID
	}
	if startedAt != nil {
		entry.StartedAt = *startedAt
		entry.DurationMS = time.Since(*startedAt).Milliseconds()
	} else {
		entry.StartedAt = time.Now()
	}
	if err := s.syncLogRepo.Create(entry); err != nil {
		logger.Warnw("order_import_log_write_failed", "channel_id", ch.ID, "error", err)
	}
}

// BatchImport 批量导入标准化订单，单笔失败不影响其余订单
func (s *ImportService) BatchImport(channelID uint, orders []channel.CanonicalOrder) (*BatchImportReport, error) {
	ch, err := s.channelRepo.GetByID(channelID)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelNotFound
	}

	report := &BatchImportReport{Total: len(orders)}
	for i := range orders {
		result, err := s.importForChannel(ch, &orders[i])
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("external_id=%s: %s", orders[i].ExternalID, err.Error()))
			continue
		}
		if result.Created {
			report.Created++
		} else {
			report.Duplicates++
		}
	}
	logger.Infow("order_batch_import_done",
		"channel_id", channelID,
		"total", report.Total,
		"created", report.Created,
		"duplicates", report.Duplicates,
		"failed", report.Failed,
	)
	return report, nil
}

// buildOrder 组装订单主记录
func buildOrder(ch *models.Channel, canonical *channel.CanonicalOrder) *models.Order {
	order := &models.Order{
		TenantID:            ch.TenantID,
		OrderNo:             generateOrderNo(),
		ChannelID:           ch.ID,
		Status:              constants.OrderStatusPending,
		PaymentStatus:       constants.PaymentStatusPending,
		Currency:            canonical.Currency,
		TotalAmount:         canonical.TotalAmount,
		CustomerName:        canonical.CustomerName,
		CustomerEmail:       canonical.CustomerEmail,
		CustomerPhone:       canonical.CustomerPhone,
		ShippingAddressJSON: canonical.ShippingAddress,
		RawPayloadJSON:      canonical.Raw,
		OrderedAt:           canonical.OrderedAt,
		AssignedWarehouseID: ch.DefaultWarehouseID,
	}
	if canonical.ExternalID != "" {
		externalID := canonical.ExternalID
		order.ExternalID = &externalID
	}
	if order.Currency == "" {
		order.Currency = "USD"
	}

	var subtotal models.Money
	for _, item := range canonical.Items {
		subtotal = models.NewMoneyFromDecimal(subtotal.Decimal.Add(item.UnitPrice.Decimal.Mul(intToDecimal(item.Quantity))))
	}
	order.Subtotal = subtotal
	if order.TotalAmount.Decimal.IsZero() {
		order.TotalAmount = subtotal
	}
	return order
}

// buildOrderItems 组装订单行，初始状态 pending
func buildOrderItems(canonical *channel.CanonicalOrder) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(canonical.Items))
	for _, line := range canonical.Items {
		quantity := line.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = append(items, models.OrderItem{
			ChannelSKU: strings.TrimSpace(line.SKU),
			Title:      line.Title,
			Quantity:   quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: models.NewMoneyFromDecimal(line.UnitPrice.Decimal.Mul(intToDecimal(quantity))),
			Status:     constants.ItemStatusPending,
		})
	}
	return items
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("OO%s%s", now, randNumeric(6))
}

func intToDecimal(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
