// Package explorer ties the call graph engine together behind one facade.
//
// # Overview
//
// An [Explorer] holds one loaded call graph at a time. Loading goes through
// graph validation, chain metrics and a fresh visibility engine; operations
// such as [Explorer.Collapse] or [Explorer.HideOthers] update what is visible;
// [Explorer.View] turns the visible subset into the output contract consumed
// by renderers: node positions grouped by package, collapse styles and the
// visible edges.
//
// # Usage
//
//	x := explorer.New(explorer.WithLogger(logger))
//	if err := x.Load(nodes, edges); err != nil {
//	    return err
//	}
//	x.CollapseAll()
//	x.Expand("main.main", visibility.Outgoing)
//	view := x.View()
//
// Operations can also be given as strings, as the CLI does:
//
//	op, err := explorer.ParseOperation("collapse:main.run:outgoing")
//	x.Apply(op)
//
// # Generations
//
// Every successful load gets a new random id, exposed as [Explorer.GraphID]
// and [View.GraphID]. A renderer holding a view whose id no longer matches
// must drop it. A failed load keeps the previous graph and id.
//
// # Concurrency
//
// An Explorer is single-threaded: every call runs to completion on the
// caller's goroutine. Front ends that reload graphs in the background must
// hand the decoded graph over to the goroutine that owns the Explorer.
package explorer
