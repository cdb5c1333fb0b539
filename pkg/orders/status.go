package orders

// Status is a canonical order status as reported by the store API.
// The zero value is Unrecognized.
type Status string

const (
	Unrecognized Status = ""

	StatusPending           Status = "pending"
	StatusConnectionFailed1 Status = "Connection failed 1"
	StatusConnectionFailed2 Status = "Connection failed 2"
	StatusConnectionFailed3 Status = "Connection failed 3"
	StatusPostponed         Status = "Postponed"
	StatusConfirmed         Status = "confirmed"
	StatusReady             Status = "ready"
	StatusInCompany         Status = "in company"
	StatusShipped           Status = "shipped"
	StatusDelivered         Status = "delivered"
	StatusReturned          Status = "returned"
	StatusCancelled         Status = "cancelled"
)

// statusOrder is the display order of the summary table
var statusOrder = []Status{
	StatusPending,
	StatusConnectionFailed1,
	StatusConnectionFailed2,
	StatusConnectionFailed3,
	StatusPostponed,
	StatusConfirmed,
	StatusReady,
	StatusInCompany,
	StatusShipped,
	StatusDelivered,
	StatusReturned,
	StatusCancelled,
}

// StatusInfo is the presentation metadata of a status
type StatusInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusInfo = map[Status]StatusInfo{
	StatusPending:           {Label: "Pending", Color: "yellow"},
	StatusConnectionFailed1: {Label: "ConnectionFailed1", Color: "orange"},
	StatusConnectionFailed2: {Label: "ConnectionFailed2", Color: "orange"},
	StatusConnectionFailed3: {Label: "ConnectionFailed3", Color: "red"},
	StatusPostponed:         {Label: "Postponed", Color: "gray"},
	StatusConfirmed:         {Label: "Confirmed", Color: "green"},
	StatusReady:             {Label: "Ready", Color: "teal"},
	StatusInCompany:         {Label: "InCompany", Color: "blue"},
	StatusShipped:           {Label: "Shipped", Color: "indigo"},
	StatusDelivered:         {Label: "Delivered", Color: "emerald"},
	StatusReturned:          {Label: "Returned", Color: "rose"},
	StatusCancelled:         {Label: "Cancelled", Color: "slate"},
}

// AllStatuses returns every canonical status in display order
func AllStatuses() []Status {
	return append([]Status(nil), statusOrder...)
}

// ParseStatus maps a raw status string to its canonical Status. Matching is
// exact and case-sensitive; anything else, including padded strings, is
// Unrecognized.
func ParseStatus(raw string) Status {
	s := Status(raw)
	if _, ok := statusInfo[s]; ok {
		return s
	}
	return Unrecognized
}

// Known reports whether s is a canonical status
func (s Status) Known() bool {
	_, ok := statusInfo[s]
	return ok
}

// Info returns the presentation metadata of s
func (s Status) Info() StatusInfo {
	if info, ok := statusInfo[s]; ok {
		return info
	}
	return StatusInfo{Label: "Unknown", Color: "gray"}
}
