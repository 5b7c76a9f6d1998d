package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, created_at, kind, sender_id, receiver_id, points,
	description, voucher_code, qr_payload`

type TransactionRepository struct {
	db uow.DBTX
}

func NewTransactionRepository(conn uow.DBTX) *TransactionRepository {
	return &TransactionRepository{db: conn}
}

// Create добавляет запись в журнал. Журнал append-only: методов обновления или
// удаления у репозитория нет.
func (t *TransactionRepository) Create(
	ctx context.Context,
	transaction repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	row := t.db.QueryRow(ctx, `
		INSERT INTO transactions (kind, sender_id, receiver_id, points, description, voucher_code, qr_payload)
		VALUES ($1::transaction_kind, $2, $3, $4, $5, $6, $7)
		RETURNING `+transactionColumns,
		string(transaction.Kind), transaction.SenderID, transaction.ReceiverID,
		transaction.Points, transaction.Description, transaction.VoucherCode, transaction.QRPayload,
	)
	dbTrans, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "creating transaction")
	}
	return dbTrans, nil
}

// GetByUserID возвращает транзакции, где юзер отправитель либо получатель,
// отсортированные по дате создания по убыванию.
func (t *TransactionRepository) GetByUserID(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	rows, err := t.db.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, convertErr(err, "transactions of user %d", userID)
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		trans, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "transactions of user %d", userID)
		}
		transactions = append(transactions, *trans)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "transactions of user %d", userID)
	}
	return transactions, nil
}

// SumByUserID агрегирует журнал для сверки с текущим балансом. В зачисления попадают
// все записи, где юзер получатель; в списания — только переводы, где юзер отправитель
// (записи выпуска ваучеров/QR баланс мерчанта не меняют).
func (t *TransactionRepository) SumByUserID(ctx context.Context, userID int64) (*repoargs.BalanceAggregation, error) {
	var agr repoargs.BalanceAggregation
	err := t.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(points) FILTER (WHERE receiver_id = $1), 0),
			COALESCE(SUM(points) FILTER (WHERE sender_id = $1 AND kind = 'TRANSFER'), 0)
		FROM transactions
		WHERE sender_id = $1 OR receiver_id = $1`, userID).
		Scan(&agr.ReceivedAmount, &agr.SentAmount)
	if err != nil {
		return nil, convertErr(err, "summing transactions of user %d", userID)
	}
	return &agr, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var kind string
	if err := row.Scan(
		&t.ID, &t.CreatedAt, &kind, &t.SenderID, &t.ReceiverID, &t.Points,
		&t.Description, &t.VoucherCode, &t.QRPayload,
	); err != nil {
		return nil, err
	}
	t.Kind = domain.TransactionKind(kind)
	return &t, nil
}
