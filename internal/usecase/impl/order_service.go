package impl

import (
	"context"
	"log/slog"
	"sort"

	deliverycontext "pharmahub/internal/delivery/context"
	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	"pharmahub/internal/domain/service"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager      repository.TransactionManager
	orderRepo      repository.OrderRepository
	productRepo    repository.ProductRepository
	pharmacyRepo   repository.PharmacyRepository
	eventPublisher service.EventPublisher
	notifier       service.NotificationService
	logger         *slog.Logger
}

// OrderServiceParams holds dependencies for orderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	OrderRepo      repository.OrderRepository
	ProductRepo    repository.ProductRepository
	PharmacyRepo   repository.PharmacyRepository
	EventPublisher service.EventPublisher
	Notifier       service.NotificationService
	Logger         *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager:      params.TxManager,
		orderRepo:      params.OrderRepo,
		productRepo:    params.ProductRepo,
		pharmacyRepo:   params.PharmacyRepo,
		eventPublisher: params.EventPublisher,
		notifier:       params.Notifier,
		logger:         params.Logger,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// checkoutLine pairs one cart line with the product it was resolved against.
type checkoutLine struct {
	productID uuid.UUID
	quantity  int
}

// Checkout places orders from a cart. The cart is partitioned by pharmacy and
// each partition becomes one order in its own transaction: a stock failure at
// one pharmacy never rolls back another pharmacy's order. The per-partition
// outcome is reported in the result slice.
func (srv *orderService) Checkout(ctx context.Context, customerID uuid.UUID, input usecase.CheckoutInput) ([]*usecase.CheckoutResult, error) {
	srv.log(ctx).Info("Starting checkout", slog.Any("customerID", customerID), slog.Int("items", len(input.Items)))

	if len(input.Items) == 0 {
		return nil, errors.Wrap(domainerrors.ErrEmptyCart, "cart has no items")
	}
	if input.DeliveryAddress == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "delivery address is required")
	}

	partitions, err := srv.partitionCart(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	// Deterministic partition order keeps logs and lock ordering stable.
	pharmacyIDs := make([]uuid.UUID, 0, len(partitions))
	for pharmacyID := range partitions {
		pharmacyIDs = append(pharmacyIDs, pharmacyID)
	}
	sort.Slice(pharmacyIDs, func(i, j int) bool {
		return pharmacyIDs[i].String() < pharmacyIDs[j].String()
	})

	results := make([]*usecase.CheckoutResult, 0, len(pharmacyIDs))
	for _, pharmacyID := range pharmacyIDs {
		order, err := srv.placePartitionOrder(ctx, customerID, pharmacyID, partitions[pharmacyID], input)
		if err != nil {
			srv.log(ctx).Warn("Checkout partition failed",
				slog.Any("pharmacyID", pharmacyID),
				slog.Any("error", err),
			)
			results = append(results, &usecase.CheckoutResult{PharmacyID: pharmacyID, Err: err})

			continue
		}

		srv.publishOrderEvent(ctx, service.EventOrderPlaced, order)
		results = append(results, &usecase.CheckoutResult{PharmacyID: pharmacyID, Order: order})
	}

	return results, nil
}

// partitionCart merges duplicate lines and groups them by the owning pharmacy.
// An unknown product fails the whole checkout: it cannot be attributed to any
// partition.
func (srv *orderService) partitionCart(ctx context.Context, items []usecase.CheckoutItemInput) (map[uuid.UUID][]checkoutLine, error) {
	merged := make(map[uuid.UUID]int, len(items))
	order := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, errors.Wrap(domainerrors.ErrValidationFailed, "item quantity must be positive")
		}
		if _, seen := merged[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		merged[item.ProductID] += item.Quantity
	}

	partitions := make(map[uuid.UUID][]checkoutLine)
	for _, productID := range order {
		product, err := srv.productRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return nil, errors.Wrap(domainerrors.ErrProductNotFound, "cart references an unknown product")
			}

			return nil, errors.Wrap(err, "failed to resolve cart product")
		}

		partitions[product.PharmacyID] = append(partitions[product.PharmacyID], checkoutLine{
			productID: productID,
			quantity:  merged[productID],
		})
	}

	return partitions, nil
}

// placePartitionOrder creates one pharmacy's order inside a single
// transaction. Products are re-read inside the transaction so the price
// snapshot and the active check see current data, and every stock decrement
// is guarded atomically: any failed line rolls back the whole partition.
func (srv *orderService) placePartitionOrder(
	ctx context.Context,
	customerID, pharmacyID uuid.UUID,
	lines []checkoutLine,
	input usecase.CheckoutInput,
) (*entity.Order, error) {
	var createdOrder *entity.Order

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.ProductRepo()

		orderItems := make([]*entity.OrderItem, 0, len(lines))
		var totalCents int64
		for _, line := range lines {
			product, err := productRepo.FindByID(ctx, line.productID)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return errors.Wrap(domainerrors.ErrProductNotFound, "product disappeared during checkout")
				}

				return errors.Wrap(err, "failed to load product during checkout")
			}
			if product.PharmacyID != pharmacyID {
				return errors.Wrap(domainerrors.ErrOwnershipViolation, "product belongs to another pharmacy")
			}
			if !product.IsActive {
				return errors.Wrap(domainerrors.ErrProductInactive, "product is no longer for sale")
			}

			if err := productRepo.DecrementStock(ctx, product.ID, line.quantity); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return errors.Wrap(domainerrors.ErrInsufficientStock, "not enough stock for "+product.Name)
				}

				return errors.Wrap(err, "failed to decrement stock")
			}

			lineTotal := int64(line.quantity) * product.PriceCents
			orderItems = append(orderItems, &entity.OrderItem{
				ProductID:      product.ID,
				ProductName:    product.Name,
				Quantity:       line.quantity,
				UnitPriceCents: product.PriceCents,
				TotalCents:     lineTotal,
			})
			totalCents += lineTotal
		}

		newOrder := &entity.Order{
			CustomerID:      customerID,
			PharmacyID:      pharmacyID,
			Status:          entity.OrderPending,
			TotalCents:      totalCents,
			DeliveryAddress: input.DeliveryAddress,
			Notes:           input.Notes,
			Items:           orderItems,
		}
		if err := repoFactory.OrderRepo().Create(ctx, newOrder); err != nil {
			return errors.Wrap(err, "failed to create order")
		}
		createdOrder = newOrder

		return nil
	})
	if err != nil {
		return nil, err
	}

	return createdOrder, nil
}

// GetOrder returns one order after an ownership check.
func (srv *orderService) GetOrder(ctx context.Context, callerID uuid.UUID, callerRoles entity.Roles, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	if callerRoles.Contains(entity.RoleAdmin) || order.CustomerID == callerID {
		return order, nil
	}

	if callerRoles.Contains(entity.RolePharmacy) {
		pharmacy, err := srv.pharmacyRepo.FindByOwner(ctx, callerID)
		if err == nil && pharmacy.ID == order.PharmacyID {
			return order, nil
		}
	}

	return nil, errors.Wrap(domainerrors.ErrOwnershipViolation, "order belongs to another party")
}

// ListMyOrders lists the calling customer's orders.
func (srv *orderService) ListMyOrders(ctx context.Context, customerID uuid.UUID) ([]*entity.Order, error) {
	orders, err := srv.orderRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list customer orders")
	}

	return orders, nil
}

// ListPharmacyOrders lists the orders placed against the caller's pharmacy.
func (srv *orderService) ListPharmacyOrders(ctx context.Context, ownerUserID uuid.UUID) ([]*entity.Order, error) {
	pharmacy, err := srv.pharmacyRepo.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrPharmacyNotFound) {
			return nil, errors.Wrap(domainerrors.ErrPharmacyNotFound, "no pharmacy registered for this account")
		}

		return nil, errors.Wrap(err, "failed to find pharmacy by owner")
	}

	orders, err := srv.orderRepo.FindByPharmacy(ctx, pharmacy.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list pharmacy orders")
	}

	return orders, nil
}

// ListAllOrders lists every order. The router restricts this to admins.
func (srv *orderService) ListAllOrders(ctx context.Context) ([]*entity.Order, error) {
	orders, err := srv.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return orders, nil
}

// UpdateOrderStatus applies a status transition. The transition table is the
// single authority on what each actor may do; a pharmacy additionally has to
// own the order it is moving.
func (srv *orderService) UpdateOrderStatus(ctx context.Context, callerID uuid.UUID, actor entity.Role, input usecase.UpdateOrderStatusInput) (*entity.Order, error) {
	srv.log(ctx).Info("Updating order status",
		slog.Any("orderID", input.OrderID),
		slog.String("target", input.Status.String()),
		slog.String("actor", actor.String()),
	)

	var updated *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		order, err := orderRepo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
			}

			return errors.Wrap(err, "failed to find order")
		}

		if actor == entity.RolePharmacy {
			pharmacy, err := repoFactory.PharmacyRepo().FindByOwner(ctx, callerID)
			if err != nil {
				if errors.Is(err, repository.ErrPharmacyNotFound) {
					return errors.Wrap(domainerrors.ErrPharmacyNotFound, "no pharmacy registered for this account")
				}

				return errors.Wrap(err, "failed to find pharmacy by owner")
			}
			if pharmacy.ID != order.PharmacyID {
				return errors.Wrap(domainerrors.ErrOwnershipViolation, "order belongs to another pharmacy")
			}
		}

		if !order.Status.CanTransition(input.Status, actor) {
			return errors.Wrap(domainerrors.ErrInvalidStatusChange,
				order.Status.String()+" -> "+input.Status.String()+" is not allowed for "+actor.String())
		}

		if err := orderRepo.UpdateStatus(ctx, order.ID, input.Status); err != nil {
			return errors.Wrap(err, "failed to update order status")
		}
		order.Status = input.Status
		updated = order

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Order status update failed", slog.Any("orderID", input.OrderID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute order status transaction")
	}

	srv.publishOrderEvent(ctx, service.EventOrderStatusChanged, updated)
	srv.notifyCustomer(ctx, updated)

	return updated, nil
}

// publishOrderEvent publishes an order lifecycle event. Publishing is
// best-effort: a broker outage must not fail the customer-facing mutation.
func (srv *orderService) publishOrderEvent(ctx context.Context, eventType string, order *entity.Order) {
	if srv.eventPublisher == nil {
		return
	}

	event := &service.OrderEvent{
		RequestID:   deliverycontext.GetRequestIDFromContext(ctx),
		EventType:   eventType,
		OrderID:     order.ID.String(),
		PharmacyID:  order.PharmacyID.String(),
		CustomerID:  order.CustomerID.String(),
		OrderStatus: order.Status.String(),
	}
	if err := srv.eventPublisher.PublishOrderEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish order event",
			slog.String("eventType", eventType),
			slog.Any("orderID", order.ID),
			slog.Any("error", err),
		)
	}
}

// notifyCustomer pushes a status update to the customer's order topic.
// Fire-and-forget: a failed push is logged and swallowed.
func (srv *orderService) notifyCustomer(ctx context.Context, order *entity.Order) {
	if srv.notifier == nil {
		return
	}

	topic := "orders." + order.CustomerID.String()
	data := map[string]string{
		"order_id": order.ID.String(),
		"status":   order.Status.String(),
	}
	if err := srv.notifier.SendTopicNotification(ctx, topic, "訂單狀態更新", "您的訂單狀態已更新為 "+order.Status.String(), data); err != nil {
		srv.log(ctx).Warn("Failed to send order notification", slog.Any("orderID", order.ID), slog.Any("error", err))
	}
}
