package address

import "time"

type Address struct {
	ID           int64
	UserID       int64
	ReceiverName string
	Phone        string
	AddressLine  string
	Ward         string
	District     string
	City         string
	IsDefault    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
