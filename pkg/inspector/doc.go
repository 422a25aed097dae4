// Package inspector is the read side of a capture session.
//
// An Inspector answers queries over the captured traffic and can switch into
// live mode, where every newly captured message that matches the live filters
// is printed as it arrives.
//
//	insp := inspector.New(session, inspector.WithOutput(os.Stdout))
//	defer insp.Close()
//
//	// Last 20 inbound messages, projected to two columns.
//	res, err := insp.Logs(inspector.Query{
//	    Columns: []string{"timestamp", "payload"},
//	    Filters: filter.Set{"direction": filter.Exact("in")},
//	    Limit:   20,
//	})
//
//	// Everything so far, pretty printed with time deltas.
//	err = insp.Pretty(inspector.Query{})
//
//	// Stream outbound messages as they happen.
//	insp.Live(inspector.Query{Filters: filter.Set{"direction": filter.Exact("out")}})
//
// Every read path applies the same steps in the same order: snapshot the log,
// apply Transform to each payload, drop events failing Filters, then keep the
// last Limit events.
package inspector
