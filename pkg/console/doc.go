/*
Package console is the interactive front end of both tools.

Each input line is split into words and executed against a fresh cobra
command tree. Commands never touch the session directly; they run on the
session goroutine through operation.Runner, the same queue the instance
listener posts hand-offs to.

	classify> add "~/Downloads/lease.pdf"
	classify> assign 1
	classify> undo

The classify tool offers the pending list, assign, undo and redo. The
checklist tool offers toggle for the monthly not-applicable marks. Both
share checklist, period, open and quit. A category is named by its
1-based checklist number or its exact key; pending files by their 0-based
list index.
*/
package console
