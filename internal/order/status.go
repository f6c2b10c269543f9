package order

import "strings"

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var allStatuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// InvalidStatusMessage lists the accepted values for clients that sent an unknown one.
var InvalidStatusMessage = "Invalid status. Must be one of: " + joinStatuses(allStatuses)

func joinStatuses(sts []Status) string {
	names := make([]string, len(sts))
	for i, st := range sts {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// ParseStatus matches s against the known statuses ignoring case.
func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range allStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// StockEffect reports how moving from one status to another changes inventory:
// +1 restores item quantities, -1 re-reserves them, 0 leaves stock alone.
func StockEffect(from, to Status) int {
	switch {
	case from != StatusCancelled && to == StatusCancelled:
		return 1
	case from == StatusCancelled && to != StatusCancelled:
		return -1
	default:
		return 0
	}
}
