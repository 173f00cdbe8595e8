package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/ecom-shop/internal/domain/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStorage описывает методы для работы с пользователями.
type UserStorage interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// EnsureUser создаёт пользователя с заданным id, если его ещё нет.
	// Повторный вызов — no-op, используется при старте для гостевого пользователя.
	EnsureUser(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserStorage {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, email, password, name, created_at FROM users WHERE id = $1", id)
	if err := row.Scan(&user.ID, &user.Email, &user.PassHash, &user.Name, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (email, password, name) VALUES ($1, $2, $3) RETURNING id",
		user.Email, user.PassHash, user.Name,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return user, nil
}

func (r *userRepository) EnsureUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, email, password, name)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.PassHash, user.Name); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	return nil
}
