package repoargs

type RepositoryName string

const (
	UserRepoName          RepositoryName = "user"
	WalletRepoName        RepositoryName = "wallet"
	HoldRepoName          RepositoryName = "escrow_hold"
	OrderRepoName         RepositoryName = "order"
	XPTransactionRepoName RepositoryName = "xp_transaction"
	ScoreRepoName         RepositoryName = "user_score"
	TierRepoName          RepositoryName = "elo_tier"
	PaymentEventRepoName  RepositoryName = "payment_event"
)
