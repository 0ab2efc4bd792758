/*
Package operation runs the classification session.

	+-------------+        +-------------+
	|  Listener   |  Post  |   Runner    |
	| (instance)  +------->| (1 goroutine)|
	+-------------+        +------+------+
	                              |
	+-------------+        +------+------+
	|   Console   |   Do   |   Session   |
	|   (shell)   +------->|   (state)   |
	+-------------+        +------+------+
	                              |
	            +-----------------+-----------------+
	            |          |           |            |
	        pending     history      move       checklist

🎯 Purpose:
- Owns the config, period, pending files, history and override store
- Classifies a selection of pending files into one category
- Undoes and redoes one move at a time
- Composes the checklist with the not-applicable marks

⚡ Concurrency:
The Session is never locked. Every caller, including the loopback listener,
posts work to the Runner, which executes it on one goroutine.

🔍 Example:

	sess, err := operation.New(ctx, operation.Options{Config: cfg})
	runner := operation.NewRunner(16)
	go runner.Run(ctx)

	err = runner.Do(ctx, func(ctx context.Context) error {
		sum, err := sess.Assign(ctx, "【财务】水电费")
		...
	})
*/
package operation
