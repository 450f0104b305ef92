/*
Package batch drives many item operations under a concurrency budget.

	+---------------+
	|  Coordinator  |
	|  (one run)    |
	+-------+-------+
	        |  sequential batches of BatchSize
	+-------+-------+-------+
	| item  | item  | item  |   at most MaxParallelism at once
	+-------+-------+-------+
	        |
	  ProgressSink (per item) -> CompletionSink (once)

🎯 Purpose:
- Partitions the work list into consecutive batches and drains each batch
  before the next one starts
- Runs up to MaxParallelism items of a batch concurrently
- Aggregates success and failure counts without aborting on item failures
- Publishes one progress event per completed item and exactly one
  completion event per run
- Honors cooperative cancellation at batch and item admission

🔄 States:

	NotStarted -> Running -> Completed
	                      -> Canceled

A setup failure (the export directory cannot be created) ends the run in
Completed with Outcome.SetupErr set and zero processed items.

🔍 Example:

	coord, err := batch.New(batch.Options{
		Files:    status.NewManager(),
		Namer:    naming.FieldNamer(nil),
		Progress: []batch.ProgressSink{reporter},
	})
	outcome, err := coord.Run(ctx, items, batch.RunOptions{ExportPath: "/export"})
*/
package batch
