package strx

// Coalesce returns the first non-empty string, or "" when all are empty.
func Coalesce(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
