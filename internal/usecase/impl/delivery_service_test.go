package impl

import (
	"context"
	"testing"
	"time"

	"pharmahub/internal/domain/entity"
	domainerrors "pharmahub/internal/domain/errors"
	"pharmahub/internal/domain/repository"
	mockRepo "pharmahub/internal/mocks/repository"
	mockSvc "pharmahub/internal/mocks/service"
	"pharmahub/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type deliveryServiceFixtures struct {
	service        usecase.DeliveryUsecase
	txManager      *mockRepo.MockTransactionManager
	deliveryRepo   *mockRepo.MockDeliveryRepository
	orderRepo      *mockRepo.MockOrderRepository
	pharmacyRepo   *mockRepo.MockPharmacyRepository
	roleRepo       *mockRepo.MockRoleRepository
	qrService      *mockSvc.MockQRCodeService
	eventPublisher *mockSvc.MockEventPublisher
}

func createTestDeliveryService(t *testing.T) deliveryServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	deliveryRepo := mockRepo.NewMockDeliveryRepository(t)
	orderRepo := mockRepo.NewMockOrderRepository(t)
	pharmacyRepo := mockRepo.NewMockPharmacyRepository(t)
	roleRepo := mockRepo.NewMockRoleRepository(t)
	qrService := mockSvc.NewMockQRCodeService(t)
	eventPublisher := mockSvc.NewMockEventPublisher(t)

	svc := NewDeliveryService(DeliveryServiceParams{
		TxManager:      txManager,
		DeliveryRepo:   deliveryRepo,
		OrderRepo:      orderRepo,
		PharmacyRepo:   pharmacyRepo,
		RoleRepo:       roleRepo,
		QRService:      qrService,
		EventPublisher: eventPublisher,
		Logger:         newDiscardLogger(),
	})

	return deliveryServiceFixtures{
		service:        svc,
		txManager:      txManager,
		deliveryRepo:   deliveryRepo,
		orderRepo:      orderRepo,
		pharmacyRepo:   pharmacyRepo,
		roleRepo:       roleRepo,
		qrService:      qrService,
		eventPublisher: eventPublisher,
	}
}

// expectDeliveryTx wires one transaction over the delivery repository with
// the given stored delivery; updates write through to the same pointer.
func expectDeliveryTx(t *testing.T, fx deliveryServiceFixtures, ctx context.Context, stored *entity.Delivery) {
	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockDeliveryRepo := mockRepo.NewMockDeliveryRepository(t)

			mockFactory.EXPECT().DeliveryRepo().Return(mockDeliveryRepo)
			mockDeliveryRepo.EXPECT().FindByID(ctx, stored.ID).Return(stored, nil)
			mockDeliveryRepo.EXPECT().
				Update(ctx, mock.AnythingOfType("*entity.Delivery")).
				Return(nil).
				Maybe()

			return fn(mockFactory)
		}).
		Once()
}

func TestDeliveryService_CreateDelivery_Success(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	orderID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockOrderRepo := mockRepo.NewMockOrderRepository(t)
			mockDeliveryRepo := mockRepo.NewMockDeliveryRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo)
			mockFactory.EXPECT().DeliveryRepo().Return(mockDeliveryRepo)

			mockOrderRepo.EXPECT().
				FindByID(ctx, orderID).
				Return(&entity.Order{ID: orderID, Status: entity.OrderApproved}, nil)
			mockDeliveryRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Delivery")).
				Run(func(ctx context.Context, delivery *entity.Delivery) {
					delivery.ID = uuid.New()
				}).
				Return(nil)

			return fn(mockFactory)
		})

	fx.eventPublisher.EXPECT().
		PublishOrderEvent(ctx, mock.AnythingOfType("*service.OrderEvent")).
		Return(nil)

	delivery, err := fx.service.CreateDelivery(ctx, orderID)

	require.NoError(t, err)
	assert.Equal(t, orderID, delivery.OrderID)
	assert.Equal(t, entity.DeliveryPending, delivery.Status)
	assert.Nil(t, delivery.AgentID)
	assert.Nil(t, delivery.DeliveredAt)
	assert.False(t, delivery.ConfirmedByAdmin)
	assert.False(t, delivery.ConfirmedByPharmacy)
}

func TestDeliveryService_CreateDelivery_Duplicate(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	orderID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockOrderRepo := mockRepo.NewMockOrderRepository(t)
			mockDeliveryRepo := mockRepo.NewMockDeliveryRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo)
			mockFactory.EXPECT().DeliveryRepo().Return(mockDeliveryRepo)

			mockOrderRepo.EXPECT().
				FindByID(ctx, orderID).
				Return(&entity.Order{ID: orderID}, nil)
			mockDeliveryRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Delivery")).
				Return(repository.ErrDuplicateDelivery)

			return fn(mockFactory)
		})

	delivery, err := fx.service.CreateDelivery(ctx, orderID)

	assert.Error(t, err)
	assert.Nil(t, delivery)
	assert.True(t, errors.Is(err, domainerrors.ErrDeliveryAlreadyExists))
}

func TestDeliveryService_AssignAgent_RequiresAgentRole(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	deliveryID := uuid.New()
	userID := uuid.New()

	fx.roleRepo.EXPECT().
		FindRolesByUser(ctx, userID).
		Return(entity.Roles{entity.RoleCustomer}, nil)

	delivery, err := fx.service.AssignAgent(ctx, deliveryID, userID)

	assert.Error(t, err)
	assert.Nil(t, delivery)
	assert.True(t, errors.Is(err, domainerrors.ErrNotDeliveryAgent))
}

func TestDeliveryService_AssignAgent_Success(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	agentID := uuid.New()
	stored := &entity.Delivery{ID: uuid.New(), OrderID: uuid.New(), Status: entity.DeliveryPending}

	fx.roleRepo.EXPECT().
		FindRolesByUser(ctx, agentID).
		Return(entity.Roles{entity.RoleCustomer, entity.RoleDeliveryAgent}, nil)
	expectDeliveryTx(t, fx, ctx, stored)

	delivery, err := fx.service.AssignAgent(ctx, stored.ID, agentID)

	require.NoError(t, err)
	require.NotNil(t, delivery.AgentID)
	assert.Equal(t, agentID, *delivery.AgentID)
}

func TestDeliveryService_AdvanceDelivery_StampsDeliveredAt(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	agentID := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  entity.DeliveryInTransit,
		AgentID: &agentID,
	}

	expectDeliveryTx(t, fx, ctx, stored)
	fx.eventPublisher.EXPECT().
		PublishOrderEvent(ctx, mock.AnythingOfType("*service.OrderEvent")).
		Return(nil)

	delivery, err := fx.service.AdvanceDelivery(ctx, agentID, stored.ID, entity.DeliveryDelivered)

	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryDelivered, delivery.Status)
	require.NotNil(t, delivery.DeliveredAt)
}

func TestDeliveryService_AdvanceDelivery_SkipAheadRejected(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	agentID := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  entity.DeliveryPending,
		AgentID: &agentID,
	}

	expectDeliveryTx(t, fx, ctx, stored)

	delivery, err := fx.service.AdvanceDelivery(ctx, agentID, stored.ID, entity.DeliveryDelivered)

	assert.Error(t, err)
	assert.Nil(t, delivery)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidStatusChange))
}

func TestDeliveryService_AdvanceDelivery_NotAssignedAgent(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	assigned := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  entity.DeliveryPending,
		AgentID: &assigned,
	}

	expectDeliveryTx(t, fx, ctx, stored)

	delivery, err := fx.service.AdvanceDelivery(ctx, uuid.New(), stored.ID, entity.DeliveryInTransit)

	assert.Error(t, err)
	assert.Nil(t, delivery)
	assert.True(t, errors.Is(err, domainerrors.ErrAgentNotAssigned))
}

func TestDeliveryService_SetDeliveryStatus_ClearsDeliveredAt(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	deliveredAt := time.Now()
	stored := &entity.Delivery{
		ID:          uuid.New(),
		OrderID:     uuid.New(),
		Status:      entity.DeliveryDelivered,
		DeliveredAt: &deliveredAt,
	}

	expectDeliveryTx(t, fx, ctx, stored)
	fx.eventPublisher.EXPECT().
		PublishOrderEvent(ctx, mock.AnythingOfType("*service.OrderEvent")).
		Return(nil)

	delivery, err := fx.service.SetDeliveryStatus(ctx, stored.ID, entity.DeliveryInTransit)

	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryInTransit, delivery.Status)
	// Moving away from delivered clears the timestamp.
	assert.Nil(t, delivery.DeliveredAt)
}

func TestDeliveryService_ConfirmFlags_AreIndependent(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	pharmacyID := uuid.New()
	orderID := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: orderID,
		Status:  entity.DeliveryInTransit,
	}

	expectDeliveryTx(t, fx, ctx, stored)

	delivery, err := fx.service.ConfirmByAdmin(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, delivery.ConfirmedByAdmin)
	assert.False(t, delivery.ConfirmedByPharmacy)

	fx.pharmacyRepo.EXPECT().
		FindByOwner(ctx, ownerID).
		Return(&entity.Pharmacy{ID: pharmacyID, OwnerUserID: ownerID}, nil)
	fx.orderRepo.EXPECT().
		FindByID(ctx, orderID).
		Return(&entity.Order{ID: orderID, PharmacyID: pharmacyID}, nil)
	expectDeliveryTx(t, fx, ctx, stored)

	delivery, err = fx.service.ConfirmByPharmacy(ctx, ownerID, stored.ID)
	require.NoError(t, err)
	assert.True(t, delivery.ConfirmedByAdmin)
	assert.True(t, delivery.ConfirmedByPharmacy)
	// Confirmation never moves the status machine.
	assert.Equal(t, entity.DeliveryInTransit, delivery.Status)
}

func TestDeliveryService_ConfirmByPharmacy_ForeignPharmacyRejected(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	orderID := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: orderID,
		Status:  entity.DeliveryInTransit,
	}

	fx.pharmacyRepo.EXPECT().
		FindByOwner(ctx, ownerID).
		Return(&entity.Pharmacy{ID: uuid.New(), OwnerUserID: ownerID}, nil)
	fx.orderRepo.EXPECT().
		FindByID(ctx, orderID).
		Return(&entity.Order{ID: orderID, PharmacyID: uuid.New()}, nil)
	expectDeliveryTx(t, fx, ctx, stored)

	delivery, err := fx.service.ConfirmByPharmacy(ctx, ownerID, stored.ID)

	assert.Error(t, err)
	assert.Nil(t, delivery)
	assert.True(t, errors.Is(err, domainerrors.ErrOwnershipViolation))
}

func TestDeliveryService_GetDelivery_AssignedAgentReadsIt(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	agentID := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  entity.DeliveryInTransit,
		AgentID: &agentID,
	}

	fx.deliveryRepo.EXPECT().FindByID(ctx, stored.ID).Return(stored, nil)

	delivery, err := fx.service.GetDelivery(ctx, agentID, entity.Roles{entity.RoleDeliveryAgent}, stored.ID)

	require.NoError(t, err)
	assert.Equal(t, stored.ID, delivery.ID)
}

func TestDeliveryService_GetDelivery_ForeignAgentRejected(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	assigned := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  entity.DeliveryInTransit,
		AgentID: &assigned,
	}

	fx.deliveryRepo.EXPECT().FindByID(ctx, stored.ID).Return(stored, nil)

	delivery, err := fx.service.GetDelivery(ctx, uuid.New(), entity.Roles{entity.RoleDeliveryAgent}, stored.ID)

	assert.Error(t, err)
	assert.Nil(t, delivery)
	assert.True(t, errors.Is(err, domainerrors.ErrAgentNotAssigned))
}

func TestDeliveryService_GetDelivery_AdminReadsAny(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	assigned := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  entity.DeliveryPending,
		AgentID: &assigned,
	}

	fx.deliveryRepo.EXPECT().FindByID(ctx, stored.ID).Return(stored, nil)

	delivery, err := fx.service.GetDelivery(ctx, uuid.New(), entity.Roles{entity.RoleAdmin}, stored.ID)

	require.NoError(t, err)
	assert.Equal(t, stored.ID, delivery.ID)
}

func TestDeliveryService_GetDeliveryByOrder_CustomerReadsOwn(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	customerID := uuid.New()
	orderID := uuid.New()
	stored := &entity.Delivery{ID: uuid.New(), OrderID: orderID, Status: entity.DeliveryInTransit}

	fx.orderRepo.EXPECT().
		FindByID(ctx, orderID).
		Return(&entity.Order{ID: orderID, CustomerID: customerID, PharmacyID: uuid.New()}, nil)
	fx.deliveryRepo.EXPECT().FindByOrder(ctx, orderID).Return(stored, nil)

	delivery, err := fx.service.GetDeliveryByOrder(ctx, customerID, entity.Roles{entity.RoleCustomer}, orderID)

	require.NoError(t, err)
	assert.Equal(t, stored.ID, delivery.ID)
}

func TestDeliveryService_GetDeliveryByOrder_StrangerRejected(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	orderID := uuid.New()

	fx.orderRepo.EXPECT().
		FindByID(ctx, orderID).
		Return(&entity.Order{ID: orderID, CustomerID: uuid.New(), PharmacyID: uuid.New()}, nil)

	delivery, err := fx.service.GetDeliveryByOrder(ctx, uuid.New(), entity.Roles{entity.RoleCustomer}, orderID)

	assert.Error(t, err)
	assert.Nil(t, delivery)
	assert.True(t, errors.Is(err, domainerrors.ErrOwnershipViolation))
}

func TestDeliveryService_GetDeliveryByOrder_PharmacyOwnerReadsIt(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	pharmacyID := uuid.New()
	orderID := uuid.New()
	stored := &entity.Delivery{ID: uuid.New(), OrderID: orderID, Status: entity.DeliveryPending}

	fx.orderRepo.EXPECT().
		FindByID(ctx, orderID).
		Return(&entity.Order{ID: orderID, CustomerID: uuid.New(), PharmacyID: pharmacyID}, nil)
	fx.pharmacyRepo.EXPECT().
		FindByOwner(ctx, ownerID).
		Return(&entity.Pharmacy{ID: pharmacyID, OwnerUserID: ownerID}, nil)
	fx.deliveryRepo.EXPECT().FindByOrder(ctx, orderID).Return(stored, nil)

	delivery, err := fx.service.GetDeliveryByOrder(ctx, ownerID, entity.Roles{entity.RolePharmacy}, orderID)

	require.NoError(t, err)
	assert.Equal(t, stored.ID, delivery.ID)
}

func TestDeliveryService_HandoffQR(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	agentID := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  entity.DeliveryInTransit,
		AgentID: &agentID,
	}

	fx.deliveryRepo.EXPECT().FindByID(ctx, stored.ID).Return(stored, nil)
	fx.qrService.EXPECT().
		GenerateHandoffQR(stored.ID, stored.OrderID).
		Return([]byte("png-bytes"), nil)

	png, err := fx.service.HandoffQR(ctx, agentID, stored.ID)

	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), png)
}

func TestDeliveryService_HandoffQR_ForeignAgentRejected(t *testing.T) {
	fx := createTestDeliveryService(t)

	ctx := context.Background()
	assigned := uuid.New()
	stored := &entity.Delivery{
		ID:      uuid.New(),
		OrderID: uuid.New(),
		Status:  entity.DeliveryInTransit,
		AgentID: &assigned,
	}

	fx.deliveryRepo.EXPECT().FindByID(ctx, stored.ID).Return(stored, nil)

	png, err := fx.service.HandoffQR(ctx, uuid.New(), stored.ID)

	assert.Error(t, err)
	assert.Nil(t, png)
	assert.True(t, errors.Is(err, domainerrors.ErrAgentNotAssigned))
}
