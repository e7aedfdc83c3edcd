package main

import (
	"testing"

	"github.com/kidaholy/Pharmacy-inventory-system-sub002/pkg/monitor"

	"github.com/stretchr/testify/assert"
)

func TestExpiryLine(t *testing.T) {
	days := 3
	line := expiryLine(monitor.AlertMedicine{Name: "Insulin", DaysUntilExpiry: &days})
	assert.Contains(t, line, "Insulin")
	assert.Contains(t, line, "3 day(s)")
}

func TestExpiryLine_MissingDays(t *testing.T) {
	line := expiryLine(monitor.AlertMedicine{Name: "Insulin"})
	assert.Contains(t, line, "Insulin")
	assert.NotContains(t, line, "day(s)")
}
