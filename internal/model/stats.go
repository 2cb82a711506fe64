package model

// Stats holds the aggregate counts served by the admin stats endpoint.
type Stats struct {
	TotalUsers   int64 `json:"total_users"`
	ActiveKeys   int64 `json:"active_keys"`
	InactiveKeys int64 `json:"inactive_keys"`
	TotalAdmins  int64 `json:"total_admins"`
}
