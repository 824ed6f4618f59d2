package repoargs

import "github.com/savelyev-an/packmart/internal/domain"

type XPTransactionCreate struct {
	UserID        int64
	XPAmount      int64
	SourceOrderID *int64
	Kind          domain.XPTransactionKind
}

type ScoreUpsert struct {
	UserID  int64
	XP      int64
	TierKey string
}
