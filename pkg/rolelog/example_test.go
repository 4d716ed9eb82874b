package rolelog_test

import (
	"context"
	"fmt"
	"log"

	"github.com/rolelog/rolelog-go/pkg/rolelog"
	"github.com/rolelog/rolelog-go/pkg/rolelog/roster"
)

// printAppender prints records instead of writing them to disk.
type printAppender struct{}

func (printAppender) Append(date, record string) error {
	fmt.Printf("%s: %s", date, record)
	return nil
}

func ExampleParseLine() {
	line := "[2025.07.17-07.48.46:779][179]LogChat: bob (not present) is no longer Moderator (revoked by alice)"
	ev := rolelog.ParseLine(line)
	if ev == nil {
		return
	}
	fmt.Println(ev.Kind, ev.Action, ev.Role)
	fmt.Println(ev.Target, ev.TargetPresent, ev.Actor)
	fmt.Println(ev.Timestamp.Date())
	// Output:
	// role_grant_revoke revoked Moderator
	// bob false alice
	// 2025.07.17
}

func ExampleFormat() {
	ev := rolelog.ParseLine("[2025.07.17-07.48.43:644][996]LogChat: bob has become Moderator (granted by alice)")
	names := rolelog.Names{Target: []string{"P2", "P3"}, Actor: []string{"P1"}}
	fmt.Print(rolelog.Format(*ev, names, rolelog.Emit))
	// Output:
	// [2025.07.17-07.48.43:644] bob [P2, P3] has become Moderator (granted by alice [P1])
}

func ExampleNewPipeline() {
	players := roster.Static{
		{ID: "P1", Name: "alice"},
		{ID: "P2", Name: "bob"},
	}
	p, err := rolelog.NewPipeline(
		rolelog.WithAppender(printAppender{}),
		rolelog.WithRoster(players),
		rolelog.WithIgnoreRoles("Builder"),
	)
	if err != nil {
		log.Fatal(err)
	}

	lines := []string{
		"[2025.07.17-07.48.43:644][996]LogChat: bob has become Moderator (granted by alice)",
		"[2025.07.17-07.49.00:000][997]LogChat: bob has become Builder (granted by alice)",
		"[2025.07.18-10.09.56:565][824]LogChat: Server created the Guest role.",
		"[2025.07.18-10.10.00:000][825]LogChat: bob: has become Admin (granted by alice)",
	}
	for _, line := range lines {
		if _, err := p.Process(context.Background(), line); err != nil {
			log.Print(err)
		}
	}
	// Output:
	// 2025.07.17: [2025.07.17-07.48.43:644] bob [P2] has become Moderator (granted by alice [P1])
	// 2025.07.18: [2025.07.18-10.09.56:565] Server [SERVER] created the Guest role
}
