package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/dto"
	"warbler/internal/model"
	"warbler/internal/repository"
	"warbler/pkg/db"
	log "warbler/pkg/logger"
	"warbler/pkg/redis"
)

// ============================================================================
// UserService 接口
// ============================================================================

// UserService 用户与关注关系。
// 所有方法都在调用方传入的 q 上执行，写操作不会自行提交，由调用方决定提交或回滚。
type UserService interface {
	// Signup 注册，用户名或邮箱重复时返回的错误满足 errors.Is(err, repository.ErrUniqueViolation)
	Signup(ctx context.Context, q repository.Querier, signupDTO *dto.SignupDTO) (*model.User, error)

	// Authenticate 用户名不存在或密码错误时返回 (nil, nil)，两种情况不做区分
	Authenticate(ctx context.Context, q repository.Querier, username, password string) (*model.User, error)

	// IsFollowing 是否存在 userID -> otherID 的边
	IsFollowing(ctx context.Context, q repository.Querier, userID, otherID uint64) (bool, error)

	// IsFollowedBy 是否存在 otherID -> userID 的边
	IsFollowedBy(ctx context.Context, q repository.Querier, userID, otherID uint64) (bool, error)

	// Follow 建立 userID -> otherID 的边，重复和关注自己按 FollowPolicy 处理
	Follow(ctx context.Context, q repository.Querier, userID, otherID uint64) error

	// Unfollow 删除 userID -> otherID 的边
	Unfollow(ctx context.Context, q repository.Querier, userID, otherID uint64) error

	// Following 出边：userID 关注的用户
	Following(ctx context.Context, q repository.Querier, userID uint64) ([]*dto.UserProfileDTO, error)

	// Followers 入边：关注 userID 的用户
	Followers(ctx context.Context, q repository.Querier, userID uint64) ([]*dto.UserProfileDTO, error)

	// CountFollowers 粉丝数
	CountFollowers(ctx context.Context, q repository.Querier, userID uint64) (int, error)

	// CountFollowing 关注数
	CountFollowing(ctx context.Context, q repository.Querier, userID uint64) (int, error)

	// GetByID 获取公开资料（优先读缓存）
	GetByID(ctx context.Context, q repository.Querier, userID uint64) (*dto.UserProfileDTO, error)

	// GetByUsername 按用户名查询
	GetByUsername(ctx context.Context, q repository.Querier, username string) (*model.User, error)

	// UpdateProfile 校验密码后修改资料，空字段保持原值
	UpdateProfile(ctx context.Context, q repository.Querier, userID uint64, updateDTO *dto.UpdateProfileDTO) (*model.User, error)

	// Delete 删除用户，关注边和消息随之级联删除
	Delete(ctx context.Context, q repository.Querier, userID uint64) error

	// InvalidateProfile 删除资料缓存。UpdateProfile/Delete 所在事务提交之后由调用方调用，
	// 提交前删除会被并发读取回填旧数据
	InvalidateProfile(ctx context.Context, userID uint64)
}

// ============================================================================
// userService 实现
// ============================================================================

type userService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	idGen      db.IDGenerator
	cache      redis.UserCache // 可以为 nil，表示不使用缓存
	opts       Options
	now        func() time.Time

	// dummyHash 用户不存在时也做一次 bcrypt 比较，使两种失败耗时一致
	dummyHash []byte
}

// NewUserService 创建UserService实例
func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	idGen db.IDGenerator,
	cache redis.UserCache,
	opts Options,
) UserService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Policy == (FollowPolicy{}) {
		opts.Policy = DefaultFollowPolicy()
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("warbler-dummy-password"), opts.BcryptCost)
	if err != nil {
		log.Warn("生成占位哈希失败", zap.Error(err))
	}

	return &userService{
		userRepo:   userRepo,
		followRepo: followRepo,
		idGen:      idGen,
		cache:      cache,
		opts:       opts,
		now:        func() time.Time { return time.Now().UTC() },
		dummyHash:  dummyHash,
	}
}

// ============================================================================
// Signup 注册
// ============================================================================

func (s *userService) Signup(ctx context.Context, q repository.Querier, signupDTO *dto.SignupDTO) (*model.User, error) {
	// 1. 哈希密码（bcrypt 自带随机盐）
	hash, err := bcrypt.GenerateFromPassword([]byte(signupDTO.Password), s.opts.BcryptCost)
	if err != nil {
		log.Error("密码哈希失败", zap.Error(err), zap.String("username", signupDTO.Username))
		return nil, fmt.Errorf("%w: %v", ErrPasswordHashFailed, err)
	}

	// 2. 生成用户ID
	id, err := s.idGen.NextID()
	if err != nil {
		log.Error("生成用户ID失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrIDGenerateFailed, err)
	}

	// 3. 组装记录，未填写的图片使用默认值
	now := s.now()
	user := &model.User{
		ID:             id,
		Username:       signupDTO.Username,
		Email:          signupDTO.Email,
		PasswordHash:   string(hash),
		ImageURL:       orDefault(signupDTO.ImageURL, model.DefaultImageURL),
		HeaderImageURL: orDefault(signupDTO.HeaderImageURL, model.DefaultHeaderImageURL),
		Bio:            signupDTO.Bio,
		Location:       signupDTO.Location,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// 4. 写入，唯一性由数据库约束保证
	if err := s.userRepo.Create(ctx, q, user); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			log.Warn("用户名或邮箱已存在", zap.String("username", user.Username), zap.Error(err))
		} else {
			log.Error("创建用户失败", zap.Error(err), zap.String("username", user.Username))
		}
		return nil, err
	}

	log.Info("用户注册成功", zap.String("username", user.Username), zap.Uint64("user_id", user.ID))
	return user, nil
}

// ============================================================================
// Authenticate 认证
// ============================================================================

func (s *userService) Authenticate(ctx context.Context, q repository.Querier, username, password string) (*model.User, error) {
	// 1. 按用户名查询
	user, err := s.userRepo.GetByUsername(ctx, q, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("查询用户失败", zap.Error(err), zap.String("username", username))
			return nil, err
		}
		if s.dummyHash != nil {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		}
		log.Debug("认证失败", zap.String("username", username))
		return nil, nil
	}

	// 2. 校验密码
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Error("密码哈希格式异常", zap.Error(err), zap.Uint64("user_id", user.ID))
		}
		log.Debug("认证失败", zap.String("username", username))
		return nil, nil
	}

	return user, nil
}

// ============================================================================
// 关注关系
// ============================================================================

func (s *userService) IsFollowing(ctx context.Context, q repository.Querier, userID, otherID uint64) (bool, error) {
	return s.followRepo.Exists(ctx, q, userID, otherID)
}

func (s *userService) IsFollowedBy(ctx context.Context, q repository.Querier, userID, otherID uint64) (bool, error) {
	return s.followRepo.Exists(ctx, q, otherID, userID)
}

func (s *userService) Follow(ctx context.Context, q repository.Querier, userID, otherID uint64) error {
	// 1. 关注自己
	if userID == otherID {
		switch s.opts.Policy.SelfFollow {
		case SelfFollowReject:
			return ErrSelfFollow
		case SelfFollowIgnore:
			log.Debug("忽略关注自己", zap.Uint64("user_id", userID))
			return nil
		}
	}

	// 2. 双方都必须存在，已注销账号的残留会话也在这里被拦下
	for _, id := range []uint64{userID, otherID} {
		if _, err := s.userRepo.GetByID(ctx, q, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}
	}

	// 3. 已关注时按策略处理。先查询再插入，避免 PostgreSQL 事务因约束冲突而中止
	exists, err := s.followRepo.Exists(ctx, q, userID, otherID)
	if err != nil {
		return err
	}
	if exists {
		return s.duplicateFollow(userID, otherID)
	}

	// 4. 建立边；并发插入导致的冲突同样按重复处理
	if err := s.followRepo.Create(ctx, q, userID, otherID); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return s.duplicateFollow(userID, otherID)
		}
		log.Error("关注失败", zap.Error(err), zap.Uint64("user_id", userID), zap.Uint64("other_id", otherID))
		return err
	}

	log.Info("关注成功", zap.Uint64("user_id", userID), zap.Uint64("other_id", otherID))
	return nil
}

func (s *userService) duplicateFollow(userID, otherID uint64) error {
	if s.opts.Policy.Duplicate == DuplicateReject {
		return ErrAlreadyFollowing
	}
	log.Debug("重复关注，忽略", zap.Uint64("user_id", userID), zap.Uint64("other_id", otherID))
	return nil
}

func (s *userService) Unfollow(ctx context.Context, q repository.Querier, userID, otherID uint64) error {
	deleted, err := s.followRepo.Delete(ctx, q, userID, otherID)
	if err != nil {
		log.Error("取消关注失败", zap.Error(err), zap.Uint64("user_id", userID), zap.Uint64("other_id", otherID))
		return err
	}

	if !deleted {
		if s.opts.Policy.Duplicate == DuplicateReject {
			return ErrNotFollowing
		}
		log.Debug("未关注，忽略取消关注", zap.Uint64("user_id", userID), zap.Uint64("other_id", otherID))
		return nil
	}

	log.Info("取消关注成功", zap.Uint64("user_id", userID), zap.Uint64("other_id", otherID))
	return nil
}

func (s *userService) Following(ctx context.Context, q repository.Querier, userID uint64) ([]*dto.UserProfileDTO, error) {
	users, err := s.followRepo.ListFollowing(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return dto.FromModels(users), nil
}

func (s *userService) Followers(ctx context.Context, q repository.Querier, userID uint64) ([]*dto.UserProfileDTO, error) {
	users, err := s.followRepo.ListFollowers(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return dto.FromModels(users), nil
}

func (s *userService) CountFollowers(ctx context.Context, q repository.Querier, userID uint64) (int, error) {
	return s.followRepo.CountFollowers(ctx, q, userID)
}

func (s *userService) CountFollowing(ctx context.Context, q repository.Querier, userID uint64) (int, error) {
	return s.followRepo.CountFollowing(ctx, q, userID)
}

// ============================================================================
// 资料
// ============================================================================

func (s *userService) GetByID(ctx context.Context, q repository.Querier, userID uint64) (*dto.UserProfileDTO, error) {
	// 1. 读缓存，缓存故障时降级到数据库
	if s.cache != nil {
		profile, hit, err := s.cache.GetProfile(ctx, userID)
		if err != nil {
			log.Warn("读取用户缓存失败", zap.Error(err), zap.Uint64("user_id", userID))
		} else if hit {
			if profile == nil {
				return nil, ErrUserNotFound
			}
			return profile, nil
		}
	}

	// 2. 查数据库
	user, err := s.userRepo.GetByID(ctx, q, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.fillCache(ctx, userID, nil)
			return nil, ErrUserNotFound
		}
		log.Error("获取用户信息失败", zap.Error(err), zap.Uint64("user_id", userID))
		return nil, fmt.Errorf("获取用户信息失败: %w", err)
	}

	// 3. 回填缓存
	profile := dto.FromModel(user)
	s.fillCache(ctx, userID, profile)
	return profile, nil
}

func (s *userService) GetByUsername(ctx context.Context, q repository.Querier, username string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, q, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, q repository.Querier, userID uint64, updateDTO *dto.UpdateProfileDTO) (*model.User, error) {
	// 1. 查询当前用户
	user, err := s.userRepo.GetByID(ctx, q, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// 2. 重新认证
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(updateDTO.Password)); err != nil {
		log.Warn("修改资料时密码错误", zap.Uint64("user_id", userID))
		return nil, ErrInvalidCredentials
	}

	// 3. 合并字段
	user.ImageURL = orDefault(updateDTO.ImageURL, user.ImageURL)
	user.HeaderImageURL = orDefault(updateDTO.HeaderImageURL, user.HeaderImageURL)
	user.Bio = orDefault(updateDTO.Bio, user.Bio)
	user.Location = orDefault(updateDTO.Location, user.Location)
	user.UpdatedAt = s.now()

	if err := s.userRepo.UpdateProfile(ctx, q, user); err != nil {
		log.Error("更新资料失败", zap.Error(err), zap.Uint64("user_id", userID))
		return nil, err
	}

	log.Info("更新资料成功", zap.Uint64("user_id", userID))
	return user, nil
}

func (s *userService) Delete(ctx context.Context, q repository.Querier, userID uint64) error {
	if err := s.userRepo.Delete(ctx, q, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		log.Error("删除用户失败", zap.Error(err), zap.Uint64("user_id", userID))
		return err
	}

	log.Info("删除用户成功", zap.Uint64("user_id", userID))
	return nil
}

func (s *userService) InvalidateProfile(ctx context.Context, userID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		log.Warn("删除用户缓存失败", zap.Error(err), zap.Uint64("user_id", userID))
	}
}

// fillCache 回填缓存，profile 为 nil 时写入空值标记。失败只记录日志
func (s *userService) fillCache(ctx context.Context, userID uint64, profile *dto.UserProfileDTO) {
	if s.cache == nil {
		return
	}
	var err error
	if profile == nil {
		err = s.cache.SetMissing(ctx, userID)
	} else {
		err = s.cache.SetProfile(ctx, profile)
	}
	if err != nil {
		log.Warn("回填用户缓存失败", zap.Error(err), zap.Uint64("user_id", userID))
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
