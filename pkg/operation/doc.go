/*
Package operation carries a single work item from pending to a terminal state.

	+-------------+
	|  Processor  |
	| (one item)  |
	+------+------+
	       |
	+------+------+------+------+
	|   Stamp     |   Rename    |
	| (optional)  | (move/copy) |
	+-------------+-------------+

🎯 Purpose:
- Verifies the source exists
- Stamps a metadata layer when the item carries a material (best-effort)
- Computes the destination name and resolves conflicts with "(N)" suffixes
- Moves or copies the payload into the export directory

⚡ Key Responsibilities:
- Every failure is recorded on the item (Status, ErrorMessage); nothing is
  returned or panics past Process
- A stamped copy is written beside the source and becomes the exported file,
  so copy mode never modifies the original
- Conflict check-and-claim is serialized per export directory by the
  naming.Reserver shared across one run

🔍 Example:

	p, err := operation.NewProcessor(operation.Options{
		Files:   status.NewManager(),
		Namer:   naming.FieldNamer(nil),
		Stamper: stamp.Noop{},
	})
	p.Process(ctx, item, operation.Job{ExportPath: "/export", Separator: "_"})
*/
package operation
