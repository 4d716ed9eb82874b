package parser

import (
	"testing"
)

// BenchmarkParse_Grant benchmarks parsing a role grant event.
func BenchmarkParse_Grant(b *testing.B) {
	line := "[2025.07.17-07.48.43:644][996]LogChat: joksulainen has become Moderator (granted by joksulainen)"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Parse(line)
	}
}

// BenchmarkParse_RevokeNotPresent benchmarks parsing a revoke from a disconnected player.
func BenchmarkParse_RevokeNotPresent(b *testing.B) {
	line := "[2025.07.17-07.48.46:779][179]LogChat: joksulainen (not present) is no longer Moderator (revoked by joksulainen)"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Parse(line)
	}
}

// BenchmarkParse_Manage benchmarks parsing a role management event.
func BenchmarkParse_Manage(b *testing.B) {
	line := "[2025.07.17-10.09.56:565][824]LogChat: joksulainen created the New Role 1 role."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Parse(line)
	}
}

// BenchmarkParse_Chat benchmarks a plain chat line, the most common LogChat line.
func BenchmarkParse_Chat(b *testing.B) {
	line := "[2025.07.17-10.09.56:565][824]LogChat: joksulainen: hello everyone"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Parse(line)
	}
}

// BenchmarkParse_NoTimestamp benchmarks parsing a line without a timestamp.
func BenchmarkParse_NoTimestamp(b *testing.B) {
	line := "This is not a server log line"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Parse(line)
	}
}
