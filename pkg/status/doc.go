/*
Package status owns the filesystem side of a batch run and reports progress.

	            +-------------+
	            |   Status    |
	            |  (Storage)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +----+-----+
	|   Files   |           | Progress |
	| (Storage) |           | (Sinks)  |
	+-----------+           +----------+

🎯 Purpose:
- Moves and copies files for the item processor
- Tracks the terminal status of every item seen during a run
- Formats progress and summary messages for the logger

⚡ Key Responsibilities:
- FileManager: existence checks, directory creation, move (with cross-device
  fallback), no-clobber copy, delete
- Reporter: a progress and completion sink that mirrors item outcomes into
  zerolog using a FileFormatter

🔍 Example:

	fm := status.NewManager()
	rep := status.NewReporter(logger, status.NewDefaultFileFormatter())
	coord, _ := batch.New(batch.Options{Files: fm, Progress: []batch.ProgressSink{rep}})
*/
package status
