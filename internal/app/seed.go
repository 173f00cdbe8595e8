package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/linemk/ecom-shop/internal/domain/models"
	"github.com/linemk/ecom-shop/internal/storage"
)

// Стартовый каталог. Вставка идемпотентна (ON CONFLICT по имени),
// повторный запуск сервера дубликатов не создаёт.
const seedCatalogQuery = `
	INSERT INTO products (name, description, price, image_url, stock, category)
	VALUES
		('Laptop HP Pavilion', 'Powerful laptop for work and study', 799.99, 'https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=500', 10, 'Electronics'),
		('iPhone 13', 'Latest generation smartphone', 999.99, 'https://images.unsplash.com/photo-1592286927505-b82c2456a41f?w=500', 15, 'Electronics'),
		('Sony Headphones', 'Noise cancelling headphones', 249.99, 'https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500', 20, 'Accessories'),
		('Logitech Mouse', 'Ergonomic wireless mouse', 49.99, 'https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=500', 30, 'Accessories'),
		('Mechanical Keyboard', 'RGB mechanical keyboard for gaming', 129.99, 'https://images.unsplash.com/photo-1587829741301-dc798b83add3?w=500', 25, 'Accessories'),
		('Samsung Monitor 27"', 'Full HD monitor for productivity', 299.99, 'https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=500', 12, 'Electronics'),
		('HD Webcam', '1080p webcam for video calls', 79.99, 'https://images.unsplash.com/photo-1587825140708-dfaf72ae4b04?w=500', 18, 'Accessories'),
		('SSD 1TB Samsung', 'High speed solid state drive', 149.99, 'https://images.unsplash.com/photo-1531492746076-161ca9bcad58?w=500', 22, 'Components')
	ON CONFLICT (name) DO NOTHING`

// Seed наполняет базу стартовыми данными: гостевой пользователь и каталог.
// Вызывается при каждом старте после миграций, повторные вызовы — no-op.
func (a *App) Seed(ctx context.Context) error {
	// колонка password NOT NULL, поэтому даже у гостя хранится настоящий хэш
	passHash, err := bcrypt.GenerateFromPassword([]byte(a.Config.DefaultUser.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default user password: %w", err)
	}

	userRepo := storage.NewUserRepository(a.DB)
	if err := userRepo.EnsureUser(ctx, &models.User{
		ID:       a.Config.DefaultUser.ID,
		Email:    a.Config.DefaultUser.Email,
		PassHash: passHash,
		Name:     a.Config.DefaultUser.Name,
	}); err != nil {
		return fmt.Errorf("failed to seed default user: %w", err)
	}

	// вставка с явным id не двигает sequence, выравниваем вручную,
	// иначе следующий INSERT без id упрется в занятый ключ
	if _, err := a.DB.ExecContext(ctx, "SELECT setval('users_id_seq', (SELECT MAX(id) FROM users))"); err != nil {
		return fmt.Errorf("failed to sync users sequence: %w", err)
	}

	res, err := a.DB.ExecContext(ctx, seedCatalogQuery)
	if err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}

	a.Logger.Info("database seeded", slog.Int64("productsInserted", inserted))
	return nil
}
