package models

// Status is the approval state of a booking. WAITING is the initial
// state; the owner's decision moves it to APPROVED or REJECTED.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Bucket classifies bookings for filtered listing. CURRENT, PAST and
// FUTURE are evaluated against the clock at call time; WAITING and
// REJECTED filter by status.
type Bucket int

const (
	BucketAll Bucket = iota
	BucketCurrent
	BucketPast
	BucketFuture
	BucketWaiting
	BucketRejected
)

func (b Bucket) String() string {
	switch b {
	case BucketAll:
		return "ALL"
	case BucketCurrent:
		return "CURRENT"
	case BucketPast:
		return "PAST"
	case BucketFuture:
		return "FUTURE"
	case BucketWaiting:
		return "WAITING"
	case BucketRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}
