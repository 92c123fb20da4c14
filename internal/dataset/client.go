package dataset

import (
	"math"
	"time"
)

// Status is the derived license state. It is never persisted: the
// classification depends on the clock, so it is recomputed on every read.
type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
)

// ExpiringSoonWindow is how far ahead of now a license counts as expiring soon.
const ExpiringSoonWindow = 30 * 24 * time.Hour

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Client is the canonical record for one client+license pair after
// reconciliation. The JSON shape matches the persisted dataset slot.
type Client struct {
	ID             string    `json:"id"`
	RawLabel       string    `json:"client"`
	ClientName     string    `json:"clientName"`
	LicenseName    string    `json:"licenseName"`
	Product        string    `json:"product"`
	LicenseKey     string    `json:"licenseKey"`
	ActivationDate time.Time `json:"activationDate"`
	ExpiryDate     time.Time `json:"expiryDate"`
	Activations    int       `json:"activations"`
	HardwareIDs    []string  `json:"hardwareIds"`
	License        string    `json:"license"`
	Problems       []string  `json:"problems,omitempty"`
}

// Classify derives the license status from the expiry instant. The boundary
// is inclusive on the expired side: a license expiring exactly now is expired.
func Classify(expiryDate, now time.Time) Status {
	if !expiryDate.After(now) {
		return StatusExpired
	}
	if !expiryDate.After(now.Add(ExpiringSoonWindow)) {
		return StatusExpiringSoon
	}
	return StatusActive
}

// Status classifies the record against the supplied clock.
func (c Client) Status(now time.Time) Status {
	return Classify(c.ExpiryDate, now)
}

// DaysRemaining returns the whole days until expiry, rounded up.
// Negative values mean the license already expired.
func (c Client) DaysRemaining(now time.Time) int {
	return int(math.Ceil(c.ExpiryDate.Sub(now).Hours() / 24))
}

// DeviceCount returns the number of distinct hardware ids on the record.
func (c Client) DeviceCount() int {
	return len(c.HardwareIDs)
}

// HighValue reports whether the record qualifies as a high-value client:
// more than 5 activations or more than 3 registered devices.
func (c Client) HighValue() bool {
	return c.Activations > 5 || c.DeviceCount() > 3
}

// LowActivity reports whether the record shows little usage (0-1 activations).
func (c Client) LowActivity() bool {
	return c.Activations <= 1
}
