/*
Package status renders what the operator reads after every action.

	            +--------------+
	            |    Status    |
	            | (status line)|
	            +------+-------+
	                   |
	      +------------+------------+
	      |                         |
	+-----+------+           +------+------+
	| Formatter  |           |  Checklist  |
	| (zh / en)  |           |   (table)   |
	+------------+           +-------------+

🎯 Purpose:
- Formats short localized messages for classify, undo, redo and refresh
- Renders the checklist grouped by 【group】 with ✅ ⬜ ❎ marks
- Renders the numbered pending list

⚡ Marks:
	✅[n]  satisfied
	⬜[n]  unsatisfied
	❎[n]  marked not applicable this month

🔍 Example:

	f := status.NewFormatter(cfg.Locale)
	fmt.Println(f.Refreshed(ok, total))
	status.RenderChecklist(os.Stdout, rows, false)
*/
package status
