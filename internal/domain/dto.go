package domain

type RoleType string

const (
	RoleMerchant RoleType = "MERCHANT"
	RoleCustomer RoleType = "CUSTOMER"
)

type TransactionKind string

const (
	KindVoucherIssue TransactionKind = "VOUCHER_ISSUE"
	KindQRIssue      TransactionKind = "QR_ISSUE"
	KindAirdrop      TransactionKind = "AIRDROP"
	KindTransfer     TransactionKind = "TRANSFER"
	KindRedemption   TransactionKind = "REDEMPTION"
)
