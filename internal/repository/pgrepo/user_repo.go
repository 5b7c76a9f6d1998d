package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, created_at, updated_at, username, email, phone, encrypted_password,
	role, business_name, address, balance`

type UserRepository struct {
	db uow.DBTX
}

func NewUserRepository(conn uow.DBTX) *UserRepository {
	return &UserRepository{db: conn}
}

// CreateUser создает юзера в базе данных. В случае конфликта юзернейма или email
// возвращает ошибку domain.ErrDuplicateKey, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) CreateUser(ctx context.Context, user repoargs.CreateUser) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		INSERT INTO users (username, email, phone, encrypted_password, role, business_name, address)
		VALUES ($1, $2, $3, $4, $5::user_role, $6, $7)
		RETURNING `+userColumns,
		user.Username, user.Email, user.Phone, user.Password, string(user.Role),
		user.BusinessName, user.Address,
	)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "creating user")
	}
	return dbUser, nil
}

// FindByID ищет юзера по id. Возвращает ошибку domain.ErrRecordNotFound если запись
// не найдена, во всех других случаях - domain.ErrUnknown.
func (u *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by id %d", id)
	}
	return dbUser, nil
}

func (u *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by username %s", username)
	}
	return dbUser, nil
}

func (u *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "finding user by email %s", email)
	}
	return dbUser, nil
}

// LockByIDs блокирует строки юзеров до конца текущей транзакции (FOR UPDATE).
// Порядок блокировки всегда по возрастанию id — это исключает дедлок двух встречных
// переводов. Если какая-либо из запрошенных строк не найдена, возвращает
// domain.ErrRecordNotFound.
func (u *UserRepository) LockByIDs(ctx context.Context, ids []int64) ([]domain.User, error) {
	rows, err := u.db.Query(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return nil, convertErr(err, "locking users %v", ids)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "locking users %v", ids)
		}
		users = append(users, *user)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "locking users %v", ids)
	}
	if len(users) != len(uniqueIDs(ids)) {
		return nil, convertErr(pgx.ErrNoRows, "locking users %v", ids)
	}
	return users, nil
}

// AddToBalance атомарно изменяет баланс на delta (может быть отрицательной).
// Вызывается только внутри транзакции, уже удерживающей блокировку строки.
// Уход баланса в минус отсекается check-ограничением и вернется как
// domain.ErrNotEnoughBalance.
func (u *UserRepository) AddToBalance(ctx context.Context, id int64, delta decimal.Decimal) (*domain.User, error) {
	row := u.db.QueryRow(ctx, `
		UPDATE users SET balance = balance + $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, delta)
	dbUser, err := scanUser(row)
	if err != nil {
		return nil, convertErr(err, "updating balance of user %d", id)
	}
	return dbUser, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(
		&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Username, &u.Email, &u.Phone,
		&u.EncryptedPassword, &role, &u.BusinessName, &u.Address, &u.Balance,
	); err != nil {
		return nil, err
	}
	u.Role = domain.RoleType(role)
	return &u, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	var res []int64
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}
