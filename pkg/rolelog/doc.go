// Package rolelog records role administration events from Brickadia server logs.
//
// The server writes a line to its log whenever a role is granted or revoked,
// or a role definition is created, updated or removed:
//
//	[2025.07.17-07.48.43:644][996]LogChat: bob has become Moderator (granted by alice)
//	[2025.07.17-10.09.56:565][824]LogChat: alice created the New Role 1 role.
//
// Each such line is classified, filtered by role, its display names resolved
// against the connected players, and a record appended to one file per day:
//
//	logs/roles/2025.07.17.log:
//	[2025.07.17-07.48.43:644] bob [P2] has become Moderator (granted by alice [P1])
//
// # Basic Usage
//
// Follow the server log and record events as they happen:
//
//	p, err := rolelog.NewPipeline(
//	    rolelog.WithRoster(players),
//	    rolelog.WithIgnoreRoles("Builder"),
//	    rolelog.WithEmphasizeRoles("Admin"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w, err := rolelog.NewWatcher(p, rolelog.WithServerLogDir("data/Saved/Logs"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Close()
//
//	outcomes, errs, err := w.Watch(ctx)
//	// drain outcomes and errs until both close
//
// To classify a single line:
//
//	if ev := rolelog.ParseLine(line); ev != nil {
//	    fmt.Println(ev.Kind, ev.Role)
//	}
//
// # Identities
//
// Display names are not unique. Every connected player with a matching name
// is listed in the record, e.g. "[P1, P7]". An actor that matches nobody is
// written as [SERVER]. A target the server reports as "(not present)" is
// written by name only.
//
// # Filtering
//
// Roles in the emphasize list are written wrapped in ANSI emphasis markers,
// even when also ignored. Roles in the ignore list are dropped before any
// lookup or formatting. WithSuppressExpr adds a CEL expression that drops
// further events, e.g. `actor == "bot"`; emphasized roles are exempt.
// Everything else is written as is.
package rolelog
