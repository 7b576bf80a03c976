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
	"gorm.io/gorm/clause"
)

// roleRepository implements the repository.RoleRepository interface.
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository is the constructor for roleRepository.
func NewRoleRepository(db *gorm.DB) repository.RoleRepository {
	return &roleRepository{
		db: db,
	}
}

// FindRolesByUser returns every role assigned to the user.
func (repo *roleRepository) FindRolesByUser(ctx context.Context, userID uuid.UUID) (entity.Roles, error) {
	var assignments []*model.RoleAssignmentModel

	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&assignments).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find roles by user")
	}

	roles := make(entity.Roles, 0, len(assignments))
	for _, assignment := range assignments {
		roles = roles.Add(entity.Role(assignment.Role))
	}

	return roles, nil
}

// GrantRole records a role assignment. The ON CONFLICT DO NOTHING clause makes
// a duplicate grant a no-op instead of a constraint violation, so concurrent
// grants of the same role cannot fail each other.
func (repo *roleRepository) GrantRole(ctx context.Context, userID uuid.UUID, role entity.Role) error {
	assignment := &model.RoleAssignmentModel{
		UserID: userID,
		Role:   role.String(),
	}

	if err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(assignment).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to grant role")
	}

	return nil
}

// RevokeRole removes a role assignment if present. Revoking an unheld role is a no-op.
func (repo *roleRepository) RevokeRole(ctx context.Context, userID uuid.UUID, role entity.Role) error {
	if err := repo.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role.String()).
		Delete(&model.RoleAssignmentModel{}).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to revoke role")
	}

	return nil
}
