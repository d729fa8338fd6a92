package implementation

import (
	"context"
	"errors"

	"uny-compass-be/internal/entity"
	"uny-compass-be/internal/mapper"
	"uny-compass-be/internal/model"
	"uny-compass-be/internal/pkg/apperror"
	"uny-compass-be/internal/repository/contract"
	"uny-compass-be/internal/repository/specification"

	"gorm.io/gorm"
)

const (
	userConflictMessage      = "Username or email already exists"
	invalidResetTokenMessage = "Invalid or expired reset token"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	modelUser := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(modelUser).Error; err != nil {
		return translateWriteError(err, userConflictMessage)
	}
	*user = *r.mapper.ToEntity(modelUser)
	return nil
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var modelUser model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&modelUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelUser), nil
}

func (r *UserRepositoryImpl) UpdateEmail(ctx context.Context, userId uint, email string) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userId).Update("email", email).Error
	return translateWriteError(err, "Email already in use")
}

func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userId uint, hash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userId).Update("password_hash", hash).Error
}

// Token Implementations

func (r *UserRepositoryImpl) CreatePasswordResetToken(ctx context.Context, token *entity.PasswordResetToken) error {
	m := r.mapper.PasswordResetTokenToModel(token)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.PasswordResetTokenToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindPasswordResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error) {
	var m model.PasswordResetToken
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PasswordResetTokenToEntity(&m), nil
}

// MarkTokenUsed consumes an unused token. A token that was already consumed,
// including by a concurrent reset, is rejected.
func (r *UserRepositoryImpl) MarkTokenUsed(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.PasswordResetToken{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.Validation(invalidResetTokenMessage)
	}
	return nil
}
