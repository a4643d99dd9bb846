package io

import (
	"slices"
)

// AlertChannel records the alerts sent to a channel.
type AlertChannel struct {
	Alerts []uint32
}

// Rewind forgets all recorded alerts.
func (ac *AlertChannel) Rewind() {
	ac.Alerts = nil
}

// Alert records the request.
func (ac *AlertChannel) Alert(request uint32) {
	ac.Alerts = append(ac.Alerts, request)
}

// Halted returns true once ALERT_HALT has been seen.
func (ac *AlertChannel) Halted() bool {
	return slices.Contains(ac.Alerts, ALERT_HALT)
}
