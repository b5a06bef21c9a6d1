package businessflow

import (
	"github.com/amirphl/cereal-box/app/dto"
	"github.com/amirphl/cereal-box/models"
	"github.com/amirphl/cereal-box/utils"
)

// DatabaseStatus is the cached view of the gateway state reported to clients
type DatabaseStatus struct {
	Configured bool
	Connected  bool
}

// Label returns "connected" or "disconnected"
func (s DatabaseStatus) Label() string {
	if s.Connected {
		return utils.DatabaseConnected
	}
	return utils.DatabaseDisconnected
}

// URLLabel returns "configured" or "not configured"
func (s DatabaseStatus) URLLabel() string {
	if s.Configured {
		return utils.DatabaseConfigured
	}
	return utils.DatabaseNotConfigured
}

// Message describes the connection state for /db
func (s DatabaseStatus) Message() string {
	switch {
	case s.Connected:
		return "Database connection successful"
	case s.Configured:
		return "Database configured but not connected"
	default:
		return "DATABASE_URL not set"
	}
}

// ToVisitorSnapshot converts a counter row to the snapshot returned to callers
func ToVisitorSnapshot(row models.VisitorCounter) dto.VisitorSnapshot {
	return dto.VisitorSnapshot{
		Count:     row.Count,
		LastVisit: utils.FormatISO(row.LastVisit),
	}
}
