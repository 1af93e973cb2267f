package service

import (
	"time"

	"github.com/omniorder/internal/constants"
	"github.com/omniorder/internal/logger"
	"github.com/omniorder/internal/models"
	"github.com/omniorder/internal/repository"
)

// OrderService 订单履约服务：状态流转、取消、拣货打包发货
type OrderService struct {
	orderRepo    repository.OrderRepository
	reservations *ReservationService
	ledger       *StockLedgerService
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, reservations *ReservationService, ledger *StockLedgerService) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		reservations: reservations,
		ledger:       ledger,
	}
}

var allowedOrderTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed:  true,
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCanceled:   true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCanceled:   true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:  true,
		constants.OrderStatusCanceled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusReturned:  true,
	},
	constants.OrderStatusDelivered: {
		constants.OrderStatusReturned: true,
	},
}

var allowedItemTransitions = map[string]map[string]bool{
	constants.ItemStatusPending: {
		constants.ItemStatusReserved:  true,
		constants.ItemStatusBackorder: true,
		constants.ItemStatusUnmapped:  true,
		constants.ItemStatusCanceled:  true,
	},
	constants.ItemStatusReserved: {
		constants.ItemStatusAllocated: true,
		constants.ItemStatusCanceled:  true,
	},
	constants.ItemStatusBackorder: {
		constants.ItemStatusReserved: true,
		constants.ItemStatusCanceled: true,
	},
	constants.ItemStatusUnmapped: {
		constants.ItemStatusReserved: true,
		constants.ItemStatusCanceled: true,
	},
	constants.ItemStatusAllocated: {
		constants.ItemStatusPicked:   true,
		constants.ItemStatusCanceled: true,
	},
	constants.ItemStatusPicked: {
		constants.ItemStatusPacked: true,
	},
	constants.ItemStatusPacked: {
		constants.ItemStatusShipped: true,
	},
}

func isOrderTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedOrderTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

func isItemTransitionAllowed(current, target string) bool {
	if current == target {
		return true
	}
	nexts, ok := allowedItemTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// GetByID 查询订单
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByOrderNo 按订单号查询
func (s *OrderService) GetByOrderNo(orderNo string) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// List 订单列表
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// UpdateStatus 订单状态流转，非法流转返回 ErrInvalidOrderStatus
func (s *OrderService) UpdateStatus(orderID uint, target string) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == target {
		return order, nil
	}
	if !isOrderTransitionAllowed(order.Status, target) {
		return nil, ErrInvalidOrderStatus
	}
	if target == constants.OrderStatusCanceled {
		return s.CancelOrder(orderID, "")
	}

	updates := map[string]interface{}{}
	if target == constants.OrderStatusShipped && order.ShippedAt == nil {
		now := time.Now()
		updates["shipped_at"] = &now
	}
	if err := s.orderRepo.UpdateStatus(order.ID, target, updates); err != nil {
		return nil, err
	}
	logger.Infow("order_status_changed", "order_no", order.OrderNo, "from", order.Status, "to", target)
	return s.GetByID(orderID)
}

// MarkPaid 标记支付完成，待处理订单同时推进到已确认
func (s *OrderService) MarkPaid(orderID uint) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == constants.PaymentStatusPaid {
		return order, nil
	}
	updates := map[string]interface{}{"payment_status": constants.PaymentStatusPaid}
	status := order.Status
	if order.Status == constants.OrderStatusPending {
		status = constants.OrderStatusConfirmed
	}
	if err := s.orderRepo.UpdateStatus(order.ID, status, updates); err != nil {
		return nil, err
	}
	return s.GetByID(orderID)
}

// CancelOrder 取消订单：释放名下全部活跃预留并终结未发货订单行。
// 已取消订单重复取消是幂等空操作。
func (s *OrderService) CancelOrder(orderID uint, reason string) (*models.Order, error) {
	order, err := s.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == constants.OrderStatusCanceled {
		return order, nil
	}
	if !isOrderTransitionAllowed(order.Status, constants.OrderStatusCanceled) {
		return nil, ErrInvalidOrderStatus
	}

	released, err := s.reservations.ReleaseByReference(order.OrderNo, reason)
	if err != nil {
		return nil, err
	}

	items, err := s.orderRepo.ListItemsByOrder(order.ID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		item := &items[i]
		if item.Status == constants.ItemStatusShipped || item.Status == constants.ItemStatusCanceled {
			continue
		}
		if err := s.orderRepo.UpdateItemStatus(item.ID, constants.ItemStatusCanceled); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	updates := map[string]interface{}{"canceled_at": &now}
	if reason != "" {
		updates["notes"] = reason
	}
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusCanceled, updates); err != nil {
		return nil, err
	}
	logger.Infow("order_canceled",
		"order_no", order.OrderNo,
		"released_reservations", released,
		"reason", reason,
	)
	return s.GetByID(orderID)
}

// AllocateItem 把已预留订单行推进为已分配（预留转 fulfilled，库存 reserved 转 allocated）。
// 套装行没有行级 ReservationID，履约名下全部组件预留。
func (s *OrderService) AllocateItem(itemID uint) (*models.OrderItem, error) {
	item, err := s.getItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == constants.ItemStatusAllocated {
		return item, nil
	}
	if !isItemTransitionAllowed(item.Status, constants.ItemStatusAllocated) {
		return nil, ErrInvalidItemStatus
	}
	if item.ReservationID != nil {
		if err := s.reservations.Fulfill(*item.ReservationID); err != nil {
			return nil, err
		}
		return s.getItem(itemID)
	}

	reservations, err := s.reservations.ListByOrderItem(item.ID, constants.ReservationStatusActive)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, ErrReservationNotFound
	}
	for i := range reservations {
		if err := s.reservations.Fulfill(reservations[i].ID); err != nil {
			return nil, err
		}
	}
	return s.getItem(itemID)
}

// PickItem 拣货
func (s *OrderService) PickItem(itemID uint) (*models.OrderItem, error) {
	return s.transitionItem(itemID, constants.ItemStatusPicked)
}

// PackItem 打包
func (s *OrderService) PackItem(itemID uint) (*models.OrderItem, error) {
	return s.transitionItem(itemID, constants.ItemStatusPacked)
}

// ShipItem 发货：行名下每笔预留的已分配库存出库，行转 shipped；
// 全部行终结后订单自动推进为 shipped
func (s *OrderService) ShipItem(itemID uint) (*models.OrderItem, error) {
	item, err := s.getItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == constants.ItemStatusShipped {
		return item, nil
	}
	if !isItemTransitionAllowed(item.Status, constants.ItemStatusShipped) {
		return nil, ErrInvalidItemStatus
	}
	reservations, err := s.shippableReservations(item)
	if err != nil {
		return nil, err
	}

	order, err := s.GetByID(item.OrderID)
	if err != nil {
		return nil, err
	}

	for i := range reservations {
		reservation := &reservations[i]
		_, err = s.ledger.Adjust(AdjustStockInput{
			ProductID:    reservation.ProductID,
			WarehouseID:  reservation.WarehouseID,
			Deltas:       repository.StockDeltas{Allocated: -reservation.Quantity},
			MovementType: constants.MovementTypeOut,
			Reason:       "shipment",
			Reference:    order.OrderNo,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.UpdateItemStatus(item.ID, constants.ItemStatusShipped); err != nil {
		return nil, err
	}

	if err := s.advanceOrderAfterShipment(order); err != nil {
		return nil, err
	}
	return s.getItem(itemID)
}

// shippableReservations 发货要出库的预留：单品行用行上的 ReservationID，
// 套装行取名下全部已履约的组件预留
func (s *OrderService) shippableReservations(item *models.OrderItem) ([]models.StockReservation, error) {
	if item.ReservationID != nil {
		reservation, err := s.reservations.GetByID(*item.ReservationID)
		if err != nil {
			return nil, err
		}
		return []models.StockReservation{*reservation}, nil
	}
	reservations, err := s.reservations.ListByOrderItem(item.ID, constants.ReservationStatusFulfilled)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, ErrReservationNotFound
	}
	return reservations, nil
}

// advanceOrderAfterShipment 所有行都已发货或终结时，订单推进为 shipped
func (s *OrderService) advanceOrderAfterShipment(order *models.Order) error {
	items, err := s.orderRepo.ListItemsByOrder(order.ID)
	if err != nil {
		return err
	}
	shipped := 0
	for i := range items {
		switch items[i].Status {
		case constants.ItemStatusShipped:
			shipped++
		case constants.ItemStatusUnmapped, constants.ItemStatusCanceled:
			// 不参与发货判定
		default:
			return nil
		}
	}
	if shipped == 0 {
		return nil
	}
	if !isOrderTransitionAllowed(order.Status, constants.OrderStatusShipped) {
		return nil
	}
	now := time.Now()
	if err := s.orderRepo.UpdateStatus(order.ID, constants.OrderStatusShipped, map[string]interface{}{"shipped_at": &now}); err != nil {
		return err
	}
	logger.Infow("order_shipped", "order_no", order.OrderNo)
	return nil
}

func (s *OrderService) transitionItem(itemID uint, target string) (*models.OrderItem, error) {
	item, err := s.getItem(itemID)
	if err != nil {
		return nil, err
	}
	if item.Status == target {
		return item, nil
	}
	if !isItemTransitionAllowed(item.Status, target) {
		return nil, ErrInvalidItemStatus
	}
	if err := s.orderRepo.UpdateItemStatus(item.ID, target); err != nil {
		return nil, err
	}
	return s.getItem(itemID)
}

func (s *OrderService) getItem(itemID uint) (*models.OrderItem, error) {
	item, err := s.orderRepo.GetItemByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrOrderItemNotFound
	}
	return item, nil
}
