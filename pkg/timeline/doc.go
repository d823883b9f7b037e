// Package timeline renders vertical timeline charts from tables of dated
// events.
//
// Quick start:
//
//	tl := timeline.New(timeline.WithTitle("Company history"))
//	events, err := tl.Load(ctx, "events.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	f, _ := os.Create("history.png")
//	defer f.Close()
//	if err := tl.Render(f, "png", events); err != nil {
//	    log.Fatal(err)
//	}
//
// Events are placed top to bottom in input order, evenly spaced
// regardless of their dates, with labels alternating right and left of
// a central line. A Timeline holds only settings and is safe for
// concurrent use.
package timeline
