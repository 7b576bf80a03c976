package impl

import (
	"context"
	"log/slog"
	"time"

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

// deliveryService implements the DeliveryUsecase interface.
type deliveryService struct {
	txManager      repository.TransactionManager
	deliveryRepo   repository.DeliveryRepository
	orderRepo      repository.OrderRepository
	pharmacyRepo   repository.PharmacyRepository
	roleRepo       repository.RoleRepository
	qrService      service.QRCodeService
	eventPublisher service.EventPublisher
	logger         *slog.Logger
}

// DeliveryServiceParams holds dependencies for deliveryService, injected by Fx.
type DeliveryServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	DeliveryRepo   repository.DeliveryRepository
	OrderRepo      repository.OrderRepository
	PharmacyRepo   repository.PharmacyRepository
	RoleRepo       repository.RoleRepository
	QRService      service.QRCodeService
	EventPublisher service.EventPublisher
	Logger         *slog.Logger
}

// NewDeliveryService is the constructor for deliveryService.
func NewDeliveryService(params DeliveryServiceParams) usecase.DeliveryUsecase {
	return &deliveryService{
		txManager:      params.TxManager,
		deliveryRepo:   params.DeliveryRepo,
		orderRepo:      params.OrderRepo,
		pharmacyRepo:   params.PharmacyRepo,
		roleRepo:       params.RoleRepo,
		qrService:      params.QRService,
		eventPublisher: params.EventPublisher,
		logger:         params.Logger,
	}
}

func (srv *deliveryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateDelivery arranges dispatch for an order. The order must exist; the
// delivery starts pending and unassigned.
func (srv *deliveryService) CreateDelivery(ctx context.Context, orderID uuid.UUID) (*entity.Delivery, error) {
	srv.log(ctx).Info("Creating delivery", slog.Any("orderID", orderID))

	var created *entity.Delivery
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.OrderRepo().FindByID(ctx, orderID); err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
			}

			return errors.Wrap(err, "failed to find order")
		}

		newDelivery := &entity.Delivery{
			OrderID: orderID,
			Status:  entity.DeliveryPending,
		}
		if err := repoFactory.DeliveryRepo().Create(ctx, newDelivery); err != nil {
			if errors.Is(err, repository.ErrDuplicateDelivery) {
				return errors.Wrap(domainerrors.ErrDeliveryAlreadyExists, "order already has a delivery")
			}

			return errors.Wrap(err, "failed to create delivery")
		}
		created = newDelivery

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Delivery creation failed", slog.Any("orderID", orderID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute delivery creation transaction")
	}

	srv.publishDeliveryEvent(ctx, service.EventDeliveryCreated, created)

	return created, nil
}

// AssignAgent sets the delivery agent after verifying the target user holds
// the delivery_agent role.
func (srv *deliveryService) AssignAgent(ctx context.Context, deliveryID, agentUserID uuid.UUID) (*entity.Delivery, error) {
	srv.log(ctx).Info("Assigning delivery agent",
		slog.Any("deliveryID", deliveryID),
		slog.Any("agentUserID", agentUserID),
	)

	roles, err := srv.roleRepo.FindRolesByUser(ctx, agentUserID)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRoleResolutionFailed, "failed to resolve agent roles")
	}
	if !roles.Contains(entity.RoleDeliveryAgent) {
		return nil, errors.Wrap(domainerrors.ErrNotDeliveryAgent, "target user does not hold the delivery agent role")
	}

	var updated *entity.Delivery
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		deliveryRepo := repoFactory.DeliveryRepo()

		delivery, err := deliveryRepo.FindByID(ctx, deliveryID)
		if err != nil {
			if errors.Is(err, repository.ErrDeliveryNotFound) {
				return errors.Wrap(domainerrors.ErrDeliveryNotFound, "delivery not found")
			}

			return errors.Wrap(err, "failed to find delivery")
		}

		delivery.AgentID = &agentUserID
		if err := deliveryRepo.Update(ctx, delivery); err != nil {
			return errors.Wrap(err, "failed to assign delivery agent")
		}
		updated = delivery

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute agent assignment transaction")
	}

	return updated, nil
}

// GetDelivery returns one delivery record. Admins read any delivery; agents
// only the ones assigned to them.
func (srv *deliveryService) GetDelivery(ctx context.Context, callerID uuid.UUID, callerRoles entity.Roles, deliveryID uuid.UUID) (*entity.Delivery, error) {
	delivery, err := srv.findDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}

	if callerRoles.Contains(entity.RoleAdmin) || delivery.IsAssignedTo(callerID) {
		return delivery, nil
	}

	return nil, errors.Wrap(domainerrors.ErrAgentNotAssigned, "delivery is assigned to another agent")
}

// GetDeliveryByOrder returns the delivery tracking an order, if any. The
// order's ownership rules gate the read: an admin, the customer who placed
// the order, or the owner of the pharmacy it was placed against.
func (srv *deliveryService) GetDeliveryByOrder(ctx context.Context, callerID uuid.UUID, callerRoles entity.Roles, orderID uuid.UUID) (*entity.Delivery, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	if err := srv.authorizeOrderRead(ctx, callerID, callerRoles, order); err != nil {
		return nil, err
	}

	delivery, err := srv.deliveryRepo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrDeliveryNotFound) {
			return nil, errors.Wrap(domainerrors.ErrDeliveryNotFound, "order has no delivery")
		}

		return nil, errors.Wrap(err, "failed to find delivery by order")
	}

	return delivery, nil
}

func (srv *deliveryService) findDelivery(ctx context.Context, deliveryID uuid.UUID) (*entity.Delivery, error) {
	delivery, err := srv.deliveryRepo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, repository.ErrDeliveryNotFound) {
			return nil, errors.Wrap(domainerrors.ErrDeliveryNotFound, "delivery not found")
		}

		return nil, errors.Wrap(err, "failed to find delivery")
	}

	return delivery, nil
}

// authorizeOrderRead applies the same ownership rules the order read path
// uses: admin, the customer who placed the order, or the pharmacy owner.
func (srv *deliveryService) authorizeOrderRead(ctx context.Context, callerID uuid.UUID, callerRoles entity.Roles, order *entity.Order) error {
	if callerRoles.Contains(entity.RoleAdmin) || order.CustomerID == callerID {
		return nil
	}

	if callerRoles.Contains(entity.RolePharmacy) {
		pharmacy, err := srv.pharmacyRepo.FindByOwner(ctx, callerID)
		if err == nil && pharmacy.ID == order.PharmacyID {
			return nil
		}
	}

	return errors.Wrap(domainerrors.ErrOwnershipViolation, "order belongs to another party")
}

// ListMyDeliveries lists the deliveries assigned to the calling agent.
func (srv *deliveryService) ListMyDeliveries(ctx context.Context, agentUserID uuid.UUID) ([]*entity.Delivery, error) {
	deliveries, err := srv.deliveryRepo.FindByAgent(ctx, agentUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list agent deliveries")
	}

	return deliveries, nil
}

// AdvanceDelivery moves the delivery one step along the linear progression.
// Only the assigned agent may advance; reaching delivered stamps DeliveredAt.
func (srv *deliveryService) AdvanceDelivery(ctx context.Context, agentUserID, deliveryID uuid.UUID, target entity.DeliveryStatus) (*entity.Delivery, error) {
	srv.log(ctx).Info("Advancing delivery",
		slog.Any("deliveryID", deliveryID),
		slog.String("target", target.String()),
	)

	updated, err := srv.transitionDelivery(ctx, deliveryID, target, func(delivery *entity.Delivery) error {
		if !delivery.IsAssignedTo(agentUserID) {
			return errors.Wrap(domainerrors.ErrAgentNotAssigned, "caller is not the assigned agent")
		}
		if !delivery.Status.CanTransition(target, entity.RoleDeliveryAgent) {
			return errors.Wrap(domainerrors.ErrInvalidStatusChange,
				delivery.Status.String()+" -> "+target.String()+" is not allowed for delivery_agent")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.publishDeliveryEvent(ctx, service.EventDeliveryStatusChanged, updated)

	return updated, nil
}

// SetDeliveryStatus force-sets the status. Admin only; the router enforces
// the role, this method enforces the status invariants.
func (srv *deliveryService) SetDeliveryStatus(ctx context.Context, deliveryID uuid.UUID, target entity.DeliveryStatus) (*entity.Delivery, error) {
	srv.log(ctx).Info("Force-setting delivery status",
		slog.Any("deliveryID", deliveryID),
		slog.String("target", target.String()),
	)

	updated, err := srv.transitionDelivery(ctx, deliveryID, target, func(delivery *entity.Delivery) error {
		if !delivery.Status.CanTransition(target, entity.RoleAdmin) {
			return errors.Wrap(domainerrors.ErrInvalidStatusChange,
				delivery.Status.String()+" -> "+target.String()+" is not allowed")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.publishDeliveryEvent(ctx, service.EventDeliveryStatusChanged, updated)

	return updated, nil
}

// transitionDelivery loads the delivery, runs the authorization check and
// writes the new status. DeliveredAt is stamped when the target is delivered
// and cleared on any move away from it, keeping the timestamp in lockstep
// with the status.
func (srv *deliveryService) transitionDelivery(
	ctx context.Context,
	deliveryID uuid.UUID,
	target entity.DeliveryStatus,
	authorize func(*entity.Delivery) error,
) (*entity.Delivery, error) {
	var updated *entity.Delivery

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		deliveryRepo := repoFactory.DeliveryRepo()

		delivery, err := deliveryRepo.FindByID(ctx, deliveryID)
		if err != nil {
			if errors.Is(err, repository.ErrDeliveryNotFound) {
				return errors.Wrap(domainerrors.ErrDeliveryNotFound, "delivery not found")
			}

			return errors.Wrap(err, "failed to find delivery")
		}

		if err := authorize(delivery); err != nil {
			return err
		}

		delivery.Status = target
		if target == entity.DeliveryDelivered {
			now := time.Now()
			delivery.DeliveredAt = &now
		} else {
			delivery.DeliveredAt = nil
		}

		if err := deliveryRepo.Update(ctx, delivery); err != nil {
			return errors.Wrap(err, "failed to update delivery status")
		}
		updated = delivery

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Delivery transition failed", slog.Any("deliveryID", deliveryID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute delivery transition")
	}

	return updated, nil
}

// ConfirmByAdmin sets the admin confirmation flag. The flag is advisory and
// one-way; confirming twice is a no-op.
func (srv *deliveryService) ConfirmByAdmin(ctx context.Context, deliveryID uuid.UUID) (*entity.Delivery, error) {
	return srv.confirm(ctx, deliveryID, func(delivery *entity.Delivery) error {
		delivery.ConfirmedByAdmin = true

		return nil
	})
}

// ConfirmByPharmacy sets the pharmacy confirmation flag after checking the
// caller owns the order's pharmacy.
func (srv *deliveryService) ConfirmByPharmacy(ctx context.Context, ownerUserID, deliveryID uuid.UUID) (*entity.Delivery, error) {
	pharmacy, err := srv.pharmacyRepo.FindByOwner(ctx, ownerUserID)
	if err != nil {
		if errors.Is(err, repository.ErrPharmacyNotFound) {
			return nil, errors.Wrap(domainerrors.ErrPharmacyNotFound, "no pharmacy registered for this account")
		}

		return nil, errors.Wrap(err, "failed to find pharmacy by owner")
	}

	return srv.confirm(ctx, deliveryID, func(delivery *entity.Delivery) error {
		order, err := srv.orderRepo.FindByID(ctx, delivery.OrderID)
		if err != nil {
			return errors.Wrap(err, "failed to find delivery order")
		}
		if order.PharmacyID != pharmacy.ID {
			return errors.Wrap(domainerrors.ErrOwnershipViolation, "delivery belongs to another pharmacy")
		}
		delivery.ConfirmedByPharmacy = true

		return nil
	})
}

func (srv *deliveryService) confirm(ctx context.Context, deliveryID uuid.UUID, mark func(*entity.Delivery) error) (*entity.Delivery, error) {
	var updated *entity.Delivery

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		deliveryRepo := repoFactory.DeliveryRepo()

		delivery, err := deliveryRepo.FindByID(ctx, deliveryID)
		if err != nil {
			if errors.Is(err, repository.ErrDeliveryNotFound) {
				return errors.Wrap(domainerrors.ErrDeliveryNotFound, "delivery not found")
			}

			return errors.Wrap(err, "failed to find delivery")
		}

		if err := mark(delivery); err != nil {
			return err
		}

		if err := deliveryRepo.Update(ctx, delivery); err != nil {
			return errors.Wrap(err, "failed to update delivery confirmation")
		}
		updated = delivery

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Delivery confirmation failed", slog.Any("deliveryID", deliveryID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute delivery confirmation")
	}

	return updated, nil
}

// HandoffQR returns a PNG QR code identifying the delivery handoff. Only the
// assigned agent may mint it.
func (srv *deliveryService) HandoffQR(ctx context.Context, agentUserID, deliveryID uuid.UUID) ([]byte, error) {
	delivery, err := srv.findDelivery(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if !delivery.IsAssignedTo(agentUserID) {
		return nil, errors.Wrap(domainerrors.ErrAgentNotAssigned, "delivery is assigned to another agent")
	}

	png, err := srv.qrService.GenerateHandoffQR(delivery.ID, delivery.OrderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate handoff QR code")
	}

	return png, nil
}

func (srv *deliveryService) publishDeliveryEvent(ctx context.Context, eventType string, delivery *entity.Delivery) {
	if srv.eventPublisher == nil {
		return
	}

	event := &service.OrderEvent{
		RequestID:      deliverycontext.GetRequestIDFromContext(ctx),
		EventType:      eventType,
		OrderID:        delivery.OrderID.String(),
		DeliveryStatus: delivery.Status.String(),
	}
	if err := srv.eventPublisher.PublishOrderEvent(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish delivery event",
			slog.String("eventType", eventType),
			slog.Any("deliveryID", delivery.ID),
			slog.Any("error", err),
		)
	}
}
