package background

// Badge colors match the level palette used across the UI surfaces.
const (
	badgeSafeColor    = "#28a745"
	badgeWarningColor = "#ffc107"
	badgeDangerColor  = "#dc3545"
)
