package services

import (
	"time"

	"github.com/dmitrijs2005/accessflow/internal/models"
)

// nextID returns the current time in milliseconds, or maxExisting+1 when
// that would not be greater than every id already handed out.
func nextID(now time.Time, maxExisting int64) int64 {
	id := now.UnixMilli()
	if id <= maxExisting {
		id = maxExisting + 1
	}
	return id
}

func maxAccountID(accounts []models.Account) int64 {
	var m int64
	for _, a := range accounts {
		m = max(m, a.ID)
	}
	return m
}

// maxOrderID scans every account so order ids stay unique directory wide.
func maxOrderID(accounts []models.Account) int64 {
	var m int64
	for _, a := range accounts {
		for _, o := range a.Orders {
			m = max(m, o.ID)
		}
	}
	return m
}
