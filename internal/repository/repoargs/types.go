package repoargs

type RepositoryName string

const (
	UserRepoName        RepositoryName = "user"
	TransactionRepoName RepositoryName = "transaction"
	VoucherRepoName     RepositoryName = "voucher"
)
