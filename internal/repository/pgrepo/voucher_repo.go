package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-points/internal/domain"
	"github.com/fsdevblog/groph-points/internal/repository/repoargs"
	"github.com/fsdevblog/groph-points/pkg/uow"
	"github.com/jackc/pgx/v5"
)

const voucherColumns = `id, created_at, code, merchant_id, points_value, redeemed, redeemed_by, redeemed_at`

type VoucherRepository struct {
	db uow.DBTX
}

func NewVoucherRepository(conn uow.DBTX) *VoucherRepository {
	return &VoucherRepository{db: conn}
}

// Create создает ваучер в состоянии unredeemed. Коллизия кода вернется как
// domain.ErrDuplicateKey — вызывающая сторона перегенерирует код.
func (v *VoucherRepository) Create(ctx context.Context, voucher repoargs.VoucherCreate) (*domain.Voucher, error) {
	row := v.db.QueryRow(ctx, `
		INSERT INTO vouchers (code, merchant_id, points_value)
		VALUES ($1, $2, $3)
		RETURNING `+voucherColumns,
		voucher.Code, voucher.MerchantID, voucher.PointsValue,
	)
	dbVoucher, err := scanVoucher(row)
	if err != nil {
		return nil, convertErr(err, "creating voucher")
	}
	return dbVoucher, nil
}

// FindByCodeForUpdate находит ваучер по коду и блокирует строку до конца текущей
// транзакции. Конкурентные погашения одного кода сериализуются на этой блокировке.
func (v *VoucherRepository) FindByCodeForUpdate(ctx context.Context, code string) (*domain.Voucher, error) {
	row := v.db.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE code = $1 FOR UPDATE`, code)
	dbVoucher, err := scanVoucher(row)
	if err != nil {
		return nil, convertErr(err, "finding voucher by code %s", code)
	}
	return dbVoucher, nil
}

// MarkRedeemed переводит ваучер в терминальное состояние redeemed.
func (v *VoucherRepository) MarkRedeemed(ctx context.Context, id int64, redeemedBy int64) (*domain.Voucher, error) {
	row := v.db.QueryRow(ctx, `
		UPDATE vouchers SET redeemed = TRUE, redeemed_by = $2, redeemed_at = now()
		WHERE id = $1
		RETURNING `+voucherColumns, id, redeemedBy)
	dbVoucher, err := scanVoucher(row)
	if err != nil {
		return nil, convertErr(err, "redeeming voucher %d", id)
	}
	return dbVoucher, nil
}

// GetByMerchantID возвращает ваучеры мерчанта, новые первыми.
func (v *VoucherRepository) GetByMerchantID(ctx context.Context, merchantID int64) ([]domain.Voucher, error) {
	rows, err := v.db.Query(ctx, `
		SELECT `+voucherColumns+` FROM vouchers WHERE merchant_id = $1
		ORDER BY created_at DESC, id DESC`, merchantID)
	if err != nil {
		return nil, convertErr(err, "vouchers of merchant %d", merchantID)
	}
	defer rows.Close()

	var vouchers []domain.Voucher
	for rows.Next() {
		voucher, scanErr := scanVoucher(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "vouchers of merchant %d", merchantID)
		}
		vouchers = append(vouchers, *voucher)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "vouchers of merchant %d", merchantID)
	}
	return vouchers, nil
}

func scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	var v domain.Voucher
	if err := row.Scan(
		&v.ID, &v.CreatedAt, &v.Code, &v.MerchantID, &v.PointsValue,
		&v.Redeemed, &v.RedeemedBy, &v.RedeemedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}
