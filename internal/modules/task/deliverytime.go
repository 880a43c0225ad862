package task

import (
	"fmt"
	"strconv"
	"strings"

	"cvstudio/internal/domain"
)

// The order form offers a fixed set of delivery-time labels. The map is the
// authoritative lookup; unknown labels fall back to parsing the leading hour
// count so a new label added to the form keeps working.
var deliveryHourLabels = map[string]int{
	"12 ساعة": 12,
	"24 ساعة": 24,
	"48 ساعة": 48,
	"72 ساعة": 72,
	"96 ساعة": 96,
}

// DeliveryHours maps a delivery-time label to its hour count.
func DeliveryHours(label string) (int, error) {
	label = strings.TrimSpace(label)
	if hours, ok := deliveryHourLabels[label]; ok {
		return hours, nil
	}

	fields := strings.Fields(label)
	if len(fields) > 0 {
		if hours, err := strconv.Atoi(fields[0]); err == nil && hours > 0 {
			return hours, nil
		}
	}

	return 0, fmt.Errorf("unrecognized delivery time label %q", label)
}

// maxDeliveryHours returns the longest committed delivery time across the
// requested services. The order is fulfilled only once every service is
// done, so the due date follows the slowest one.
func maxDeliveryHours(services []domain.ServiceItem) (int, error) {
	max := 0
	for _, svc := range services {
		hours, err := DeliveryHours(svc.DeliveryTime)
		if err != nil {
			return 0, err
		}
		if hours > max {
			max = hours
		}
	}
	return max, nil
}
