package hold

type Status string

const (
	StatusReserved  Status = "reserved"
	StatusPurchased Status = "purchased"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusReserved, StatusPurchased, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the status is a terminal lifecycle state.
func (s Status) IsFinal() bool {
	return s != StatusReserved
}
