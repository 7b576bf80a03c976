package impl

import (
	"context"
	"testing"

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

type orderServiceFixtures struct {
	service        usecase.OrderUsecase
	txManager      *mockRepo.MockTransactionManager
	orderRepo      *mockRepo.MockOrderRepository
	productRepo    *mockRepo.MockProductRepository
	pharmacyRepo   *mockRepo.MockPharmacyRepository
	eventPublisher *mockSvc.MockEventPublisher
	notifier       *mockSvc.MockNotificationService
}

func createTestOrderService(t *testing.T) orderServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	orderRepo := mockRepo.NewMockOrderRepository(t)
	productRepo := mockRepo.NewMockProductRepository(t)
	pharmacyRepo := mockRepo.NewMockPharmacyRepository(t)
	eventPublisher := mockSvc.NewMockEventPublisher(t)
	notifier := mockSvc.NewMockNotificationService(t)

	svc := NewOrderService(OrderServiceParams{
		TxManager:      txManager,
		OrderRepo:      orderRepo,
		ProductRepo:    productRepo,
		PharmacyRepo:   pharmacyRepo,
		EventPublisher: eventPublisher,
		Notifier:       notifier,
		Logger:         newDiscardLogger(),
	})

	return orderServiceFixtures{
		service:        svc,
		txManager:      txManager,
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		pharmacyRepo:   pharmacyRepo,
		eventPublisher: eventPublisher,
		notifier:       notifier,
	}
}

func testProduct(pharmacyID uuid.UUID, priceCents int64, stock int) *entity.Product {
	return &entity.Product{
		ID:            uuid.New(),
		PharmacyID:    pharmacyID,
		Name:          "Product",
		Category:      entity.CategoryOTC,
		PriceCents:    priceCents,
		StockQuantity: stock,
		IsActive:      true,
	}
}

// expectPartitionTx wires one checkout partition transaction against the
// given products, decrementing stock and creating the order.
func expectPartitionTx(t *testing.T, fx orderServiceFixtures, ctx context.Context, products map[uuid.UUID]*entity.Product, failStockFor uuid.UUID) {
	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockProductRepo := mockRepo.NewMockProductRepository(t)
			mockOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().ProductRepo().Return(mockProductRepo).Maybe()
			mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo).Maybe()

			for id, product := range products {
				mockProductRepo.EXPECT().FindByID(ctx, id).Return(product, nil).Maybe()
				if id == failStockFor {
					mockProductRepo.EXPECT().
						DecrementStock(ctx, id, mock.AnythingOfType("int")).
						Return(repository.ErrInsufficientStock).
						Maybe()
				} else {
					mockProductRepo.EXPECT().
						DecrementStock(ctx, id, mock.AnythingOfType("int")).
						Return(nil).
						Maybe()
				}
			}

			mockOrderRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Order")).
				Run(func(ctx context.Context, order *entity.Order) {
					order.ID = uuid.New()
				}).
				Return(nil).
				Maybe()

			return fn(mockFactory)
		}).
		Once()
}

func TestOrderService_Checkout_SplitsByPharmacy(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	customerID := uuid.New()
	pharmacyA := uuid.New()
	pharmacyB := uuid.New()

	productA1 := testProduct(pharmacyA, 500, 10) // 2 x 500
	productA2 := testProduct(pharmacyA, 300, 10) // 1 x 300
	productB1 := testProduct(pharmacyB, 1000, 5) // 3 x 1000

	// Partition resolution reads.
	fx.productRepo.EXPECT().FindByID(ctx, productA1.ID).Return(productA1, nil)
	fx.productRepo.EXPECT().FindByID(ctx, productA2.ID).Return(productA2, nil)
	fx.productRepo.EXPECT().FindByID(ctx, productB1.ID).Return(productB1, nil)

	all := map[uuid.UUID]*entity.Product{
		productA1.ID: productA1,
		productA2.ID: productA2,
		productB1.ID: productB1,
	}
	expectPartitionTx(t, fx, ctx, all, uuid.Nil)
	expectPartitionTx(t, fx, ctx, all, uuid.Nil)

	fx.eventPublisher.EXPECT().
		PublishOrderEvent(ctx, mock.AnythingOfType("*service.OrderEvent")).
		Return(nil).
		Times(2)

	results, err := fx.service.Checkout(ctx, customerID, usecase.CheckoutInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: productA1.ID, Quantity: 2},
			{ProductID: productA2.ID, Quantity: 1},
			{ProductID: productB1.ID, Quantity: 3},
		},
		DeliveryAddress: "1 Main Street",
	})

	require.NoError(t, err)
	require.Len(t, results, 2)

	byPharmacy := make(map[uuid.UUID]*usecase.CheckoutResult)
	for _, result := range results {
		byPharmacy[result.PharmacyID] = result
	}

	orderA := byPharmacy[pharmacyA]
	require.NotNil(t, orderA)
	require.NoError(t, orderA.Err)
	require.NotNil(t, orderA.Order)
	assert.Equal(t, entity.OrderPending, orderA.Order.Status)
	assert.Equal(t, int64(2*500+1*300), orderA.Order.TotalCents)
	assert.Len(t, orderA.Order.Items, 2)

	orderB := byPharmacy[pharmacyB]
	require.NotNil(t, orderB)
	require.NoError(t, orderB.Err)
	assert.Equal(t, int64(3*1000), orderB.Order.TotalCents)

	// Every order total equals the sum of its line totals.
	for _, result := range results {
		var sum int64
		for _, item := range result.Order.Items {
			assert.Equal(t, int64(item.Quantity)*item.UnitPriceCents, item.TotalCents)
			sum += item.TotalCents
		}
		assert.Equal(t, sum, result.Order.TotalCents)
	}
}

func TestOrderService_Checkout_PartitionFailureIsIndependent(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	customerID := uuid.New()
	pharmacyA := uuid.New()
	pharmacyB := uuid.New()

	productA := testProduct(pharmacyA, 500, 10)
	productB := testProduct(pharmacyB, 1000, 1) // stock will run out

	fx.productRepo.EXPECT().FindByID(ctx, productA.ID).Return(productA, nil)
	fx.productRepo.EXPECT().FindByID(ctx, productB.ID).Return(productB, nil)

	all := map[uuid.UUID]*entity.Product{productA.ID: productA, productB.ID: productB}
	expectPartitionTx(t, fx, ctx, all, productB.ID)
	expectPartitionTx(t, fx, ctx, all, productB.ID)

	fx.eventPublisher.EXPECT().
		PublishOrderEvent(ctx, mock.AnythingOfType("*service.OrderEvent")).
		Return(nil).
		Once()

	results, err := fx.service.Checkout(ctx, customerID, usecase.CheckoutInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: productA.ID, Quantity: 1},
			{ProductID: productB.ID, Quantity: 5},
		},
		DeliveryAddress: "1 Main Street",
	})

	require.NoError(t, err)
	require.Len(t, results, 2)

	var succeeded, failed *usecase.CheckoutResult
	for _, result := range results {
		if result.Err != nil {
			failed = result
		} else {
			succeeded = result
		}
	}

	require.NotNil(t, succeeded)
	assert.Equal(t, pharmacyA, succeeded.PharmacyID)
	require.NotNil(t, succeeded.Order)

	require.NotNil(t, failed)
	assert.Equal(t, pharmacyB, failed.PharmacyID)
	assert.Nil(t, failed.Order)
	assert.True(t, errors.Is(failed.Err, domainerrors.ErrInsufficientStock))
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	fx := createTestOrderService(t)

	results, err := fx.service.Checkout(context.Background(), uuid.New(), usecase.CheckoutInput{
		DeliveryAddress: "1 Main Street",
	})

	assert.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, errors.Is(err, domainerrors.ErrEmptyCart))
}

func TestOrderService_Checkout_MissingAddress(t *testing.T) {
	fx := createTestOrderService(t)

	results, err := fx.service.Checkout(context.Background(), uuid.New(), usecase.CheckoutInput{
		Items: []usecase.CheckoutItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})

	assert.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestOrderService_Checkout_MergesDuplicateLines(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	customerID := uuid.New()
	pharmacyID := uuid.New()
	product := testProduct(pharmacyID, 500, 10)

	fx.productRepo.EXPECT().FindByID(ctx, product.ID).Return(product, nil).Once()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockProductRepo := mockRepo.NewMockProductRepository(t)
			mockOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().ProductRepo().Return(mockProductRepo)
			mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo)

			mockProductRepo.EXPECT().FindByID(ctx, product.ID).Return(product, nil)
			// Two cart lines for the same product decrement once with the
			// combined quantity.
			mockProductRepo.EXPECT().DecrementStock(ctx, product.ID, 3).Return(nil)
			mockOrderRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.Order")).
				Return(nil)

			return fn(mockFactory)
		})

	fx.eventPublisher.EXPECT().
		PublishOrderEvent(ctx, mock.AnythingOfType("*service.OrderEvent")).
		Return(nil)

	results, err := fx.service.Checkout(ctx, customerID, usecase.CheckoutInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 1},
		},
		DeliveryAddress: "1 Main Street",
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, int64(3*500), results[0].Order.TotalCents)
	require.Len(t, results[0].Order.Items, 1)
	assert.Equal(t, 3, results[0].Order.Items[0].Quantity)
}

func TestOrderService_Checkout_ReassignedProductRejected(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	customerID := uuid.New()
	pharmacyA := uuid.New()
	product := testProduct(pharmacyA, 500, 10)

	// Partition resolution sees the product at pharmacy A.
	fx.productRepo.EXPECT().FindByID(ctx, product.ID).Return(product, nil)

	// By the time the transaction re-reads it the product belongs to a
	// different pharmacy; the in-transaction guard must fail the partition.
	moved := *product
	moved.PharmacyID = uuid.New()
	expectPartitionTx(t, fx, ctx, map[uuid.UUID]*entity.Product{product.ID: &moved}, uuid.Nil)

	results, err := fx.service.Checkout(ctx, customerID, usecase.CheckoutInput{
		Items: []usecase.CheckoutItemInput{
			{ProductID: product.ID, Quantity: 1},
		},
		DeliveryAddress: "1 Main Street",
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].Order)
	assert.True(t, errors.Is(results[0].Err, domainerrors.ErrOwnershipViolation))
}

func TestOrderService_UpdateOrderStatus_PharmacyApproves(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	pharmacyID := uuid.New()
	orderID := uuid.New()
	customerID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockOrderRepo := mockRepo.NewMockOrderRepository(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo)
			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)

			mockOrderRepo.EXPECT().
				FindByID(ctx, orderID).
				Return(&entity.Order{
					ID:         orderID,
					CustomerID: customerID,
					PharmacyID: pharmacyID,
					Status:     entity.OrderPending,
				}, nil)
			mockPharmacyRepo.EXPECT().
				FindByOwner(ctx, ownerID).
				Return(&entity.Pharmacy{ID: pharmacyID, OwnerUserID: ownerID}, nil)
			mockOrderRepo.EXPECT().
				UpdateStatus(ctx, orderID, entity.OrderApproved).
				Return(nil)

			return fn(mockFactory)
		})

	fx.eventPublisher.EXPECT().
		PublishOrderEvent(ctx, mock.AnythingOfType("*service.OrderEvent")).
		Return(nil)
	fx.notifier.EXPECT().
		SendTopicNotification(ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).
		Return(nil)

	order, err := fx.service.UpdateOrderStatus(ctx, ownerID, entity.RolePharmacy, usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderApproved,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.OrderApproved, order.Status)
}

func TestOrderService_UpdateOrderStatus_InvalidTransition(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	pharmacyID := uuid.New()
	orderID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockOrderRepo := mockRepo.NewMockOrderRepository(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo)
			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)

			mockOrderRepo.EXPECT().
				FindByID(ctx, orderID).
				Return(&entity.Order{
					ID:         orderID,
					PharmacyID: pharmacyID,
					Status:     entity.OrderDelivered,
				}, nil)
			mockPharmacyRepo.EXPECT().
				FindByOwner(ctx, ownerID).
				Return(&entity.Pharmacy{ID: pharmacyID, OwnerUserID: ownerID}, nil)

			return fn(mockFactory)
		})

	order, err := fx.service.UpdateOrderStatus(ctx, ownerID, entity.RolePharmacy, usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderPending,
	})

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidStatusChange))
}

func TestOrderService_UpdateOrderStatus_ForeignPharmacyRejected(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	orderID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockOrderRepo := mockRepo.NewMockOrderRepository(t)
			mockPharmacyRepo := mockRepo.NewMockPharmacyRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo)
			mockFactory.EXPECT().PharmacyRepo().Return(mockPharmacyRepo)

			mockOrderRepo.EXPECT().
				FindByID(ctx, orderID).
				Return(&entity.Order{
					ID:         orderID,
					PharmacyID: uuid.New(), // another pharmacy's order
					Status:     entity.OrderPending,
				}, nil)
			mockPharmacyRepo.EXPECT().
				FindByOwner(ctx, ownerID).
				Return(&entity.Pharmacy{ID: uuid.New(), OwnerUserID: ownerID}, nil)

			return fn(mockFactory)
		})

	order, err := fx.service.UpdateOrderStatus(ctx, ownerID, entity.RolePharmacy, usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderApproved,
	})

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrOwnershipViolation))
}

func TestOrderService_UpdateOrderStatus_AdminForcesAnyChange(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	adminID := uuid.New()
	orderID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo)

			mockOrderRepo.EXPECT().
				FindByID(ctx, orderID).
				Return(&entity.Order{
					ID:     orderID,
					Status: entity.OrderCancelled,
				}, nil)
			mockOrderRepo.EXPECT().
				UpdateStatus(ctx, orderID, entity.OrderPending).
				Return(nil)

			return fn(mockFactory)
		})

	fx.eventPublisher.EXPECT().
		PublishOrderEvent(ctx, mock.AnythingOfType("*service.OrderEvent")).
		Return(nil)
	fx.notifier.EXPECT().
		SendTopicNotification(ctx, mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.Anything).
		Return(nil)

	order, err := fx.service.UpdateOrderStatus(ctx, adminID, entity.RoleAdmin, usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderPending,
	})

	require.NoError(t, err)
	assert.Equal(t, entity.OrderPending, order.Status)
}

func TestOrderService_GetOrder_CustomerOwnsIt(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	customerID := uuid.New()
	orderID := uuid.New()

	fx.orderRepo.EXPECT().
		FindByID(ctx, orderID).
		Return(&entity.Order{ID: orderID, CustomerID: customerID}, nil)

	order, err := fx.service.GetOrder(ctx, customerID, entity.Roles{entity.RoleCustomer}, orderID)

	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
}

func TestOrderService_GetOrder_StrangerRejected(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	orderID := uuid.New()

	fx.orderRepo.EXPECT().
		FindByID(ctx, orderID).
		Return(&entity.Order{ID: orderID, CustomerID: uuid.New()}, nil)

	order, err := fx.service.GetOrder(ctx, uuid.New(), entity.Roles{entity.RoleCustomer}, orderID)

	assert.Error(t, err)
	assert.Nil(t, order)
	assert.True(t, errors.Is(err, domainerrors.ErrOwnershipViolation))
}
