// Package download orchestrates album download sessions.
//
// The Manager is the central coordinator: it fetches and parses the
// album page, then transfers covers and tracks sequentially into the
// output directory, reporting progress through callbacks.
//
// Typical usage:
//
//	client := http.NewClient(settings.Timeout())
//	mgr := download.NewManager(settings, client, onProgress, onTransfer)
//
//	album, err := mgr.Initialize(ctx, albumURL)
//	if err != nil {
//	    return err
//	}
//
//	elapsed, err := mgr.Run(ctx)
//
// Run validates the output directory and the start/end track window
// before touching the network; an invalid window costs zero requests.
// Covers complete before the first track. A track whose requested
// format is missing from its detail page is skipped with a warning,
// every other failure ends the session. The returned duration is the
// summed wall-clock time of all completed transfers.
package download
