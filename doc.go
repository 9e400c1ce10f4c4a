// Package filestore provides a crash-tolerant staged-processing store on a
// plain filesystem.
//
// A Store is a named directory divided into areas (pending, error, done, ...).
// Independent stages claim files by processing an area and routing each file
// to another area according to the outcome, and hand finished files to the
// next stage's store with Flip. Every transfer is a rename within one
// volume, so a file is always wholly in one place.
//
// Basic usage:
//
//	in, _ := filestore.New("/var/spool", "ingest", []string{"pending", "error", "done"})
//
//	// Store content
//	in.Write("pending", "2024/mail-1.eml", data)
//
//	// Process every file; failures go to "error", successes to "done"
//	err := in.Process(ctx, "pending", func(ctx context.Context, file string) filestore.Outcome {
//	    data, err := in.Read("pending", file)
//	    if err != nil {
//	        return filestore.Fail(err)
//	    }
//	    if !ready(data) {
//	        return filestore.Leave() // try again later
//	    }
//	    return filestore.FromError(handle(data))
//	}, filestore.ErrorArea("error"), filestore.SuccessArea("done"))
//
//	// Or in batches of 100
//	n, err := in.ProcessBatch(ctx, 100, "pending", handleBatch)
//
//	// Hand the done files to the next stage: they appear in
//	// /var/spool/push/pending/ingest/
//	out, _ := filestore.New("/var/spool", "push", []string{"pending"})
//	in.Flip("done", out, "pending")
//
//	// Maintenance
//	in.Scrub("error")              // remove empty subdirectories
//	n, _ := in.Count("error")      // top-level entries
//	kb, _ := in.Size("error")      // disk usage, du -sk style
//
// Flip first parks the files in a uniquely named directory under the
// target's reserved tmp area, then moves everything found under tmp into
// place. A crash between the two steps leaves the files parked, and the
// next flip into that store, or Recover, completes the handoff.
package filestore
