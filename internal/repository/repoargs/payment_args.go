package repoargs

type PaymentEventCreate struct {
	ExternalEventID string
	UserID          int64
	VPAmount        int64
	VBPAmount       int64
}
