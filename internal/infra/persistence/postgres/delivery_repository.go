// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	"pharmahub/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// deliveryRepository implements the repository.DeliveryRepository interface.
type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository is the constructor for deliveryRepository.
func NewDeliveryRepository(db *gorm.DB) repository.DeliveryRepository {
	return &deliveryRepository{
		db: db,
	}
}

// Create persists a new delivery record. The unique constraint on order_id
// turns a second dispatch for the same order into ErrDuplicateDelivery.
func (repo *deliveryRepository) Create(ctx context.Context, delivery *entity.Delivery) error {
	deliveryM := fromDeliveryDomain(delivery)

	if err := repo.db.WithContext(ctx).Create(deliveryM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateDelivery
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrOrderNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create delivery")
	}

	// Update the entity with generated values
	delivery.ID = deliveryM.ID
	delivery.CreatedAt = deliveryM.CreatedAt
	delivery.UpdatedAt = deliveryM.UpdatedAt

	return nil
}

// FindByID retrieves a single delivery by its unique ID.
func (repo *deliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Delivery, error) {
	var deliveryM model.DeliveryModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&deliveryM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDeliveryNotFound
		}

		return nil, errors.Wrap(err, "failed to find delivery by id")
	}

	return toDeliveryDomain(&deliveryM), nil
}

// FindByOrder retrieves the delivery record of an order, if any.
func (repo *deliveryRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Delivery, error) {
	var deliveryM model.DeliveryModel

	if err := repo.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&deliveryM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDeliveryNotFound
		}

		return nil, errors.Wrap(err, "failed to find delivery by order")
	}

	return toDeliveryDomain(&deliveryM), nil
}

// FindByAgent lists the deliveries assigned to one agent, newest first.
func (repo *deliveryRepository) FindByAgent(ctx context.Context, agentID uuid.UUID) ([]*entity.Delivery, error) {
	var deliveryModels []*model.DeliveryModel

	if err := repo.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&deliveryModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find deliveries by agent")
	}

	deliveries := make([]*entity.Delivery, 0, len(deliveryModels))
	for _, deliveryM := range deliveryModels {
		deliveries = append(deliveries, toDeliveryDomain(deliveryM))
	}

	return deliveries, nil
}

// Update modifies an existing delivery record.
func (repo *deliveryRepository) Update(ctx context.Context, delivery *entity.Delivery) error {
	result := repo.db.WithContext(ctx).
		Model(&model.DeliveryModel{}).
		Where("id = ?", delivery.ID).
		Updates(map[string]any{
			"agent_id":              delivery.AgentID,
			"status":                delivery.Status.String(),
			"confirmed_by_admin":    delivery.ConfirmedByAdmin,
			"confirmed_by_pharmacy": delivery.ConfirmedByPharmacy,
			"delivered_at":          delivery.DeliveredAt,
		})

	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update delivery")
	}

	if result.RowsAffected == 0 {
		return repository.ErrDeliveryNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toDeliveryDomain converts a GORM DeliveryModel to a domain Delivery entity.
func toDeliveryDomain(data *model.DeliveryModel) *entity.Delivery {
	if data == nil {
		return nil
	}

	return &entity.Delivery{
		ID:                  data.ID,
		OrderID:             data.OrderID,
		Status:              entity.DeliveryStatus(data.Status),
		AgentID:             data.AgentID,
		ConfirmedByAdmin:    data.ConfirmedByAdmin,
		ConfirmedByPharmacy: data.ConfirmedByPharmacy,
		DeliveredAt:         data.DeliveredAt,
		CreatedAt:           data.CreatedAt,
		UpdatedAt:           data.UpdatedAt,
	}
}

// fromDeliveryDomain converts a domain Delivery entity to a GORM DeliveryModel.
func fromDeliveryDomain(data *entity.Delivery) *model.DeliveryModel {
	if data == nil {
		return nil
	}

	return &model.DeliveryModel{
		ID:                  data.ID,
		OrderID:             data.OrderID,
		Status:              data.Status.String(),
		AgentID:             data.AgentID,
		ConfirmedByAdmin:    data.ConfirmedByAdmin,
		ConfirmedByPharmacy: data.ConfirmedByPharmacy,
		DeliveredAt:         data.DeliveredAt,
	}
}
