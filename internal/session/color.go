package session

var userColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
	"#FFEAA7", "#DDA0DD", "#98D8C8", "#F7DC6F",
	"#BB8FCE", "#85C1E9", "#F8B500", "#00CED1",
}

// UserColor derives a stable palette color from a username so the same name
// renders the same color across reconnects. The magnitude is taken in int64
// because negating math.MinInt32 in int32 wraps back to itself.
func UserColor(username string) string {
	var hash int32
	for _, r := range username {
		hash = r + ((hash << 5) - hash)
	}
	magnitude := int64(hash)
	if magnitude < 0 {
		magnitude = -magnitude
	}
	return userColors[magnitude%int64(len(userColors))]
}
