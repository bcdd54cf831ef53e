package orders

type Status string

const (
	StatusPlaced     Status = "PLACED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusReturned   Status = "RETURNED"
	StatusCancelled  Status = "CANCELLED"
)

// Order placement only ever produces PLACED; the remaining transitions are
// driven by external shipping/payment workflows.
var validNext = map[Status]map[Status]bool{
	StatusPlaced:     {StatusInProgress: true},
	StatusInProgress: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true, StatusReturned: true},
	StatusDelivered:  {},
	StatusReturned:   {},
	StatusCancelled:  {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
